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

func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	query := `
		INSERT INTO coupons (
			id, code, discount_type, discount_value, min_purchase,
			max_discount, usage_limit, usage_per_customer, times_used,
			valid_from, valid_until, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.MinPurchase,
		coupon.MaxDiscount,
		coupon.UsageLimit,
		coupon.UsagePerCustomer,
		coupon.TimesUsed,
		coupon.ValidFrom,
		coupon.ValidUntil,
		coupon.Active,
		coupon.CreatedAt,
		coupon.UpdatedAt,
	)
	if err != nil {
		return conflictIfUnique(err, "coupon code already exists")
	}
	return nil
}

const couponColumns = `
	id, code, discount_type, discount_value, min_purchase,
	max_discount, usage_limit, usage_per_customer, times_used,
	valid_from, valid_until, active, created_at, updated_at, deleted_at
`

func (r *couponRepository) Get(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1 AND deleted_at IS NULL`

	var coupon model.Coupon
	err := r.db.GetContext(ctx, &coupon, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("coupon", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return &coupon, nil
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1 AND deleted_at IS NULL`

	var coupon model.Coupon
	err := r.db.GetContext(ctx, &coupon, query, code)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("coupon", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon by code: %w", err)
	}
	return &coupon, nil
}

func (r *couponRepository) Update(ctx context.Context, coupon *model.Coupon) error {
	query := `
		UPDATE coupons
		SET discount_type = $1, discount_value = $2, min_purchase = $3,
			max_discount = $4, usage_limit = $5, usage_per_customer = $6,
			valid_from = $7, valid_until = $8, active = $9, updated_at = $10
		WHERE id = $11 AND deleted_at IS NULL
	`
	coupon.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.MinPurchase,
		coupon.MaxDiscount,
		coupon.UsageLimit,
		coupon.UsagePerCustomer,
		coupon.ValidFrom,
		coupon.ValidUntil,
		coupon.Active,
		coupon.UpdatedAt,
		coupon.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update coupon: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("coupon", nil)
	}
	return nil
}

func (r *couponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("coupon", nil)
	}
	return nil
}

func (r *couponRepository) List(ctx context.Context, activeOnly bool, page model.Pagination) ([]*model.Coupon, int, error) {
	where := "WHERE deleted_at IS NULL"
	if activeOnly {
		where += " AND active = true"
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM coupons `+where); err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	query := `SELECT ` + couponColumns + ` FROM coupons ` + where +
		` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	var coupons []*model.Coupon
	if err := r.db.SelectContext(ctx, &coupons, query, page.PageSize, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, total, nil
}

func (r *couponRepository) CountUsageByUser(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2`

	var count int
	err := r.db.GetContext(ctx, &count, query, couponID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count coupon usage: %w", err)
	}
	return count, nil
}
