package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	query := `
		INSERT INTO staff (
			id, branch_id, name, email, phone, role, available,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		staff.ID,
		staff.BranchID,
		staff.Name,
		staff.Email,
		staff.Phone,
		staff.Role,
		staff.Available,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		return conflictIfUnique(err, "staff email already exists")
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	query := `
		SELECT id, branch_id, name, email, phone, role, available,
			   created_at, updated_at, deleted_at
		FROM staff
		WHERE id = $1 AND deleted_at IS NULL
	`
	var staff model.Staff
	err := r.db.GetContext(ctx, &staff, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("staff", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) Update(ctx context.Context, staff *model.Staff) error {
	query := `
		UPDATE staff
		SET name = $1, phone = $2, role = $3, available = $4, updated_at = $5
		WHERE id = $6 AND deleted_at IS NULL
	`
	staff.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		staff.Name,
		staff.Phone,
		staff.Role,
		staff.Available,
		staff.UpdatedAt,
		staff.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update staff: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("staff", nil)
	}
	return nil
}

func (r *staffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE staff SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete staff: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("staff", nil)
	}
	return nil
}

func (r *staffRepository) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*model.Staff, error) {
	query := `
		SELECT s.id, s.branch_id, s.name, s.email, s.phone, s.role, s.available,
			   s.created_at, s.updated_at, s.deleted_at
		FROM staff s
		LEFT JOIN staff_branches sb ON sb.staff_id = s.id
		WHERE (s.branch_id = $1 OR sb.branch_id = $1) AND s.deleted_at IS NULL
		GROUP BY s.id
		ORDER BY s.name ASC
	`
	var staff []*model.Staff
	err := r.db.SelectContext(ctx, &staff, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

func (r *staffRepository) AssignBranch(ctx context.Context, staffID, branchID uuid.UUID) error {
	query := `
		INSERT INTO staff_branches (staff_id, branch_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, staffID, branchID)
	if err != nil {
		return fmt.Errorf("failed to assign staff to branch: %w", err)
	}
	return nil
}

// ServesBranch reports whether the staff member works at the branch, either
// as their home branch or through an assignment.
func (r *staffRepository) ServesBranch(ctx context.Context, staffID, branchID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM staff s
			LEFT JOIN staff_branches sb ON sb.staff_id = s.id
			WHERE s.id = $1 AND (s.branch_id = $2 OR sb.branch_id = $2)
			AND s.deleted_at IS NULL
		)
	`
	var serves bool
	err := r.db.GetContext(ctx, &serves, query, staffID, branchID)
	if err != nil {
		return false, fmt.Errorf("failed to check staff branch: %w", err)
	}
	return serves, nil
}
