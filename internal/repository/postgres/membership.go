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

func (r *membershipRepository) CreatePlan(ctx context.Context, plan *model.MembershipPlan) error {
	query := `
		INSERT INTO membership_plans (
			id, name, price, duration_days, discount_percentage,
			free_services, priority_booking, free_extensions, active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		plan.ID,
		plan.Name,
		plan.Price,
		plan.DurationDays,
		plan.DiscountPercentage,
		plan.FreeServices,
		plan.PriorityBooking,
		plan.FreeExtensions,
		plan.Active,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create membership plan: %w", err)
	}
	return nil
}

func (r *membershipRepository) GetPlan(ctx context.Context, id uuid.UUID) (*model.MembershipPlan, error) {
	query := `
		SELECT id, name, price, duration_days, discount_percentage,
			   free_services, priority_booking, free_extensions, active,
			   created_at, updated_at, deleted_at
		FROM membership_plans
		WHERE id = $1 AND deleted_at IS NULL
	`
	var plan model.MembershipPlan
	err := r.db.GetContext(ctx, &plan, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("membership plan", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership plan: %w", err)
	}
	return &plan, nil
}

func (r *membershipRepository) UpdatePlan(ctx context.Context, plan *model.MembershipPlan) error {
	query := `
		UPDATE membership_plans
		SET name = $1, price = $2, duration_days = $3, discount_percentage = $4,
			free_services = $5, priority_booking = $6, free_extensions = $7,
			active = $8, updated_at = $9
		WHERE id = $10 AND deleted_at IS NULL
	`
	plan.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		plan.Name,
		plan.Price,
		plan.DurationDays,
		plan.DiscountPercentage,
		plan.FreeServices,
		plan.PriorityBooking,
		plan.FreeExtensions,
		plan.Active,
		plan.UpdatedAt,
		plan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership plan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("membership plan", nil)
	}
	return nil
}

func (r *membershipRepository) ListPlans(ctx context.Context, activeOnly bool) ([]*model.MembershipPlan, error) {
	query := `
		SELECT id, name, price, duration_days, discount_percentage,
			   free_services, priority_booking, free_extensions, active,
			   created_at, updated_at, deleted_at
		FROM membership_plans
		WHERE deleted_at IS NULL
	`
	if activeOnly {
		query += " AND active = true"
	}
	query += " ORDER BY price ASC"

	var plans []*model.MembershipPlan
	err := r.db.SelectContext(ctx, &plans, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list membership plans: %w", err)
	}
	return plans, nil
}

func (r *membershipRepository) CreateMembership(ctx context.Context, m *model.UserMembership) error {
	query := `
		INSERT INTO user_memberships (
			id, user_id, plan_id, status, started_at, expires_at,
			services_used, free_services_remaining, total_savings,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.UserID,
		m.PlanID,
		m.Status,
		m.StartedAt,
		m.ExpiresAt,
		m.ServicesUsed,
		m.FreeServicesRemaining,
		m.TotalSavings,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (r *membershipRepository) GetMembership(ctx context.Context, id uuid.UUID) (*model.UserMembership, error) {
	query := `
		SELECT id, user_id, plan_id, status, started_at, expires_at,
			   services_used, free_services_remaining, total_savings,
			   created_at, updated_at, deleted_at
		FROM user_memberships
		WHERE id = $1 AND deleted_at IS NULL
	`
	var m model.UserMembership
	err := r.db.GetContext(ctx, &m, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("membership", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &m, nil
}

// GetActiveMembership returns the user's current active membership, or nil
// when they have none.
func (r *membershipRepository) GetActiveMembership(ctx context.Context, userID uuid.UUID, now time.Time) (*model.UserMembership, error) {
	query := `
		SELECT id, user_id, plan_id, status, started_at, expires_at,
			   services_used, free_services_remaining, total_savings,
			   created_at, updated_at, deleted_at
		FROM user_memberships
		WHERE user_id = $1 AND status = 'active' AND expires_at > $2
		AND deleted_at IS NULL
		ORDER BY expires_at DESC
		LIMIT 1
	`
	var m model.UserMembership
	err := r.db.GetContext(ctx, &m, query, userID, now)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active membership: %w", err)
	}
	return &m, nil
}

func (r *membershipRepository) UpdateMembership(ctx context.Context, m *model.UserMembership) error {
	query := `
		UPDATE user_memberships
		SET status = $1, expires_at = $2, services_used = $3,
			free_services_remaining = $4, total_savings = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`
	m.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		m.Status,
		m.ExpiresAt,
		m.ServicesUsed,
		m.FreeServicesRemaining,
		m.TotalSavings,
		m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("membership", nil)
	}
	return nil
}
