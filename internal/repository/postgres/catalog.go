package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salonhq/salon-api/internal/model"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

const serviceColumns = `
	id, branch_id, name, description, category, price, duration_min,
	active, created_at, updated_at, deleted_at
`

func (r *catalogRepository) Create(ctx context.Context, svc *model.SalonService) error {
	query := `
		INSERT INTO services (
			id, branch_id, name, description, category, price, duration_min,
			active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		svc.ID,
		svc.BranchID,
		svc.Name,
		svc.Description,
		svc.Category,
		svc.Price,
		svc.DurationMin,
		svc.Active,
		svc.CreatedAt,
		svc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *catalogRepository) Get(ctx context.Context, id uuid.UUID) (*model.SalonService, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1 AND deleted_at IS NULL`

	var svc model.SalonService
	err := r.db.GetContext(ctx, &svc, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("service", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &svc, nil
}

func (r *catalogRepository) GetMany(ctx context.Context, ids []uuid.UUID) ([]*model.SalonService, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		`SELECT `+serviceColumns+` FROM services WHERE id IN (?) AND deleted_at IS NULL`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	query = r.db.Rebind(query)

	var services []*model.SalonService
	if err := r.db.SelectContext(ctx, &services, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get services: %w", err)
	}
	return services, nil
}

func (r *catalogRepository) Update(ctx context.Context, svc *model.SalonService) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, category = $3, price = $4,
			duration_min = $5, active = $6, updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL
	`
	svc.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		svc.Name,
		svc.Description,
		svc.Category,
		svc.Price,
		svc.DurationMin,
		svc.Active,
		svc.UpdatedAt,
		svc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("service", nil)
	}
	return nil
}

func (r *catalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE services SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("service", nil)
	}
	return nil
}

func (r *catalogRepository) ListByBranch(ctx context.Context, branchID uuid.UUID, activeOnly bool) ([]*model.SalonService, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE branch_id = $1 AND deleted_at IS NULL`
	if activeOnly {
		query += " AND active = true"
	}
	query += " ORDER BY category, name ASC"

	var services []*model.SalonService
	err := r.db.SelectContext(ctx, &services, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
