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

func (r *branchRepository) Create(ctx context.Context, branch *model.Branch) error {
	query := `
		INSERT INTO branches (
			id, name, address, city, phone, latitude, longitude,
			active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		branch.ID,
		branch.Name,
		branch.Address,
		branch.City,
		branch.Phone,
		branch.Latitude,
		branch.Longitude,
		branch.Active,
		branch.CreatedAt,
		branch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}
	return nil
}

func (r *branchRepository) Get(ctx context.Context, id uuid.UUID) (*model.Branch, error) {
	query := `
		SELECT id, name, address, city, phone, latitude, longitude,
			   active, created_at, updated_at, deleted_at
		FROM branches
		WHERE id = $1 AND deleted_at IS NULL
	`
	var branch model.Branch
	err := r.db.GetContext(ctx, &branch, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("branch", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return &branch, nil
}

func (r *branchRepository) Update(ctx context.Context, branch *model.Branch) error {
	query := `
		UPDATE branches
		SET name = $1, address = $2, city = $3, phone = $4,
			latitude = $5, longitude = $6, active = $7, updated_at = $8
		WHERE id = $9 AND deleted_at IS NULL
	`
	branch.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		branch.Name,
		branch.Address,
		branch.City,
		branch.Phone,
		branch.Latitude,
		branch.Longitude,
		branch.Active,
		branch.UpdatedAt,
		branch.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update branch: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("branch", nil)
	}
	return nil
}

func (r *branchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE branches SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete branch: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("branch", nil)
	}
	return nil
}

func (r *branchRepository) List(ctx context.Context, activeOnly bool) ([]*model.Branch, error) {
	query := `
		SELECT id, name, address, city, phone, latitude, longitude,
			   active, created_at, updated_at, deleted_at
		FROM branches
		WHERE deleted_at IS NULL
	`
	if activeOnly {
		query += " AND active = true"
	}
	query += " ORDER BY name ASC"

	var branches []*model.Branch
	err := r.db.SelectContext(ctx, &branches, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return branches, nil
}

// UpsertBusinessHours keeps the at-most-one-row-per-weekday invariant with an
// ON CONFLICT update against the (branch_id, day_of_week) unique constraint.
func (r *branchRepository) UpsertBusinessHours(ctx context.Context, hours *model.BusinessHours) error {
	query := `
		INSERT INTO business_hours (
			id, branch_id, day_of_week, open_time, close_time,
			closed, lunch_start, lunch_end
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (branch_id, day_of_week) DO UPDATE
		SET open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			closed = EXCLUDED.closed,
			lunch_start = EXCLUDED.lunch_start,
			lunch_end = EXCLUDED.lunch_end
	`
	_, err := r.db.ExecContext(ctx, query,
		hours.ID,
		hours.BranchID,
		hours.DayOfWeek,
		hours.OpenTime,
		hours.CloseTime,
		hours.Closed,
		hours.LunchStart,
		hours.LunchEnd,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert business hours: %w", err)
	}
	return nil
}

func (r *branchRepository) GetBusinessHours(ctx context.Context, branchID uuid.UUID, dayOfWeek int) (*model.BusinessHours, error) {
	query := `
		SELECT id, branch_id, day_of_week, open_time, close_time,
			   closed, lunch_start, lunch_end
		FROM business_hours
		WHERE branch_id = $1 AND day_of_week = $2
	`
	var hours model.BusinessHours
	err := r.db.GetContext(ctx, &hours, query, branchID, dayOfWeek)
	if err == sql.ErrNoRows {
		// Absence means the branch never opens on that weekday; callers
		// treat nil as closed.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business hours: %w", err)
	}
	return &hours, nil
}

func (r *branchRepository) ListBusinessHours(ctx context.Context, branchID uuid.UUID) ([]*model.BusinessHours, error) {
	query := `
		SELECT id, branch_id, day_of_week, open_time, close_time,
			   closed, lunch_start, lunch_end
		FROM business_hours
		WHERE branch_id = $1
		ORDER BY day_of_week ASC
	`
	var hours []*model.BusinessHours
	err := r.db.SelectContext(ctx, &hours, query, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list business hours: %w", err)
	}
	return hours, nil
}

func (r *branchRepository) CreateHoliday(ctx context.Context, holiday *model.Holiday) error {
	query := `
		INSERT INTO holidays (id, branch_id, date, name, optional)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		holiday.ID,
		holiday.BranchID,
		holiday.Date,
		holiday.Name,
		holiday.Optional,
	)
	if err != nil {
		return conflictIfUnique(err, "holiday already exists for this date")
	}
	return nil
}

func (r *branchRepository) DeleteHoliday(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("holiday", nil)
	}
	return nil
}

func (r *branchRepository) ListHolidays(ctx context.Context, branchID uuid.UUID, from, to time.Time) ([]*model.Holiday, error) {
	query := `
		SELECT id, branch_id, date, name, optional
		FROM holidays
		WHERE branch_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	var holidays []*model.Holiday
	err := r.db.SelectContext(ctx, &holidays, query, branchID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return holidays, nil
}

func (r *branchRepository) GetHolidayByDate(ctx context.Context, branchID uuid.UUID, date time.Time) (*model.Holiday, error) {
	query := `
		SELECT id, branch_id, date, name, optional
		FROM holidays
		WHERE branch_id = $1 AND date = $2
	`
	var holiday model.Holiday
	err := r.db.GetContext(ctx, &holiday, query, branchID, date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holiday: %w", err)
	}
	return &holiday, nil
}
