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

func (r *inventoryRepository) Create(ctx context.Context, item *model.Inventory) error {
	query := `
		INSERT INTO inventory (
			id, branch_id, name, sku, stock, threshold, unit_cost, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.BranchID,
		item.Name,
		item.SKU,
		item.Stock,
		item.Threshold,
		item.UnitCost,
		item.Status,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return nil
}

func (r *inventoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.Inventory, error) {
	query := `
		SELECT id, branch_id, name, sku, stock, threshold, unit_cost, status,
			   created_at, updated_at, deleted_at
		FROM inventory
		WHERE id = $1 AND deleted_at IS NULL
	`
	var item model.Inventory
	err := r.db.GetContext(ctx, &item, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("inventory item", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return &item, nil
}

func (r *inventoryRepository) Update(ctx context.Context, item *model.Inventory) error {
	query := `
		UPDATE inventory
		SET name = $1, sku = $2, stock = $3, threshold = $4,
			unit_cost = $5, status = $6, updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL
	`
	item.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		item.Name,
		item.SKU,
		item.Stock,
		item.Threshold,
		item.UnitCost,
		item.Status,
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update inventory item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("inventory item", nil)
	}
	return nil
}

func (r *inventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE inventory SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("inventory item", nil)
	}
	return nil
}

func (r *inventoryRepository) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*model.Inventory, error) {
	query := `
		SELECT id, branch_id, name, sku, stock, threshold, unit_cost, status,
			   created_at, updated_at, deleted_at
		FROM inventory
		WHERE branch_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC
	`
	var items []*model.Inventory
	err := r.db.SelectContext(ctx, &items, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}
