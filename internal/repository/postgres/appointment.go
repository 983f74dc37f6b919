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

// CreateBooking persists the appointment aggregate in one transaction: the
// appointment row, its service lines and, when a coupon is redeemed, the
// usage row plus a conditional times_used increment. A partial unique index
// on (staff_id, scheduled_at) for non-cancelled rows backs the exact-slot
// invariant; violations come back as conflict errors.
func (r *appointmentRepository) CreateBooking(ctx context.Context, apt *model.Appointment, lines []*model.AppointmentLine, redemption *model.CouponUsage) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO appointments (
				id, user_id, branch_id, staff_id, scheduled_at,
				status, payment_status, subtotal, discount, total_price,
				coupon_code, notes, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`
		_, err := tx.ExecContext(ctx, query,
			apt.ID,
			apt.UserID,
			apt.BranchID,
			apt.StaffID,
			apt.ScheduledAt,
			apt.Status,
			apt.PaymentStatus,
			apt.Subtotal,
			apt.Discount,
			apt.TotalPrice,
			apt.CouponCode,
			apt.Notes,
			apt.CreatedAt,
			apt.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.Conflict("slot was booked concurrently", err)
			}
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		for _, line := range lines {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO appointment_services (appointment_id, service_id, price)
				VALUES ($1, $2, $3)
			`, apt.ID, line.ServiceID, line.Price)
			if err != nil {
				return fmt.Errorf("failed to create appointment line: %w", err)
			}
		}

		if redemption != nil {
			// Conditional increment keeps times_used <= usage_limit even
			// under concurrent redemptions of the same code.
			res, err := tx.ExecContext(ctx, `
				UPDATE coupons
				SET times_used = times_used + 1, updated_at = $1
				WHERE id = $2
				AND (usage_limit IS NULL OR times_used < usage_limit)
			`, time.Now(), redemption.CouponID)
			if err != nil {
				return fmt.Errorf("failed to increment coupon usage: %w", err)
			}
			rows, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if rows == 0 {
				return apperrors.Conflict("coupon usage limit reached", nil)
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO coupon_usages (id, coupon_id, user_id, appointment_id, discount, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, redemption.ID, redemption.CouponID, redemption.UserID, apt.ID, redemption.Discount, time.Now())
			if err != nil {
				return fmt.Errorf("failed to record coupon usage: %w", err)
			}
		}

		return nil
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, user_id, branch_id, staff_id, scheduled_at,
			   status, payment_status, subtotal, discount, total_price,
			   coupon_code, payment_ref, notes, rating, review, cancel_reason,
			   created_at, updated_at, deleted_at
		FROM appointments
		WHERE id = $1
	`
	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET scheduled_at = $1, status = $2, payment_status = $3,
			payment_ref = $4, notes = $5, rating = $6, review = $7,
			cancel_reason = $8, updated_at = $9
		WHERE id = $10
	`
	apt.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		apt.ScheduledAt,
		apt.Status,
		apt.PaymentStatus,
		apt.PaymentRef,
		apt.Notes,
		apt.Rating,
		apt.Review,
		apt.CancelReason,
		apt.UpdatedAt,
		apt.ID,
	)
	if err != nil {
		return conflictIfUnique(err, "slot was booked concurrently")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}

	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, user_id, branch_id, staff_id, scheduled_at,
			   status, payment_status, subtotal, discount, total_price,
			   coupon_code, payment_ref, notes, rating, review, cancel_reason,
			   created_at, updated_at, deleted_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.BranchID != uuid.Nil {
		query += fmt.Sprintf(" AND branch_id = $%d", argCount)
		args = append(args, filters.BranchID)
		argCount++
	}

	if filters.StaffID != uuid.Nil {
		query += fmt.Sprintf(" AND staff_id = $%d", argCount)
		args = append(args, filters.StaffID)
		argCount++
	}

	if filters.UserID != uuid.Nil {
		query += fmt.Sprintf(" AND user_id = $%d", argCount)
		args = append(args, filters.UserID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND scheduled_at >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND scheduled_at <= $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY scheduled_at ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) GetLines(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentLine, error) {
	query := `
		SELECT appointment_id, service_id, price
		FROM appointment_services
		WHERE appointment_id = $1
	`
	var lines []*model.AppointmentLine
	err := r.db.SelectContext(ctx, &lines, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment lines: %w", err)
	}
	return lines, nil
}

// CountActiveAtSlot counts non-cancelled appointments at the exact slot.
func (r *appointmentRepository) CountActiveAtSlot(ctx context.Context, staffID uuid.UUID, at time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM appointments
		WHERE staff_id = $1
		AND scheduled_at = $2
		AND status != 'cancelled'
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, staffID, at)
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments at slot: %w", err)
	}
	return count, nil
}

func (r *appointmentRepository) CreateReschedule(ctx context.Context, resched *model.AppointmentReschedule) error {
	query := `
		INSERT INTO appointment_reschedules (
			id, appointment_id, original_at, requested_at,
			reason, status, admin_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		resched.ID,
		resched.AppointmentID,
		resched.OriginalAt,
		resched.RequestedAt,
		resched.Reason,
		resched.Status,
		resched.AdminNotes,
		resched.CreatedAt,
		resched.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reschedule request: %w", err)
	}
	return nil
}

func (r *appointmentRepository) GetReschedule(ctx context.Context, id uuid.UUID) (*model.AppointmentReschedule, error) {
	query := `
		SELECT id, appointment_id, original_at, requested_at,
			   reason, status, admin_notes, created_at, updated_at, deleted_at
		FROM appointment_reschedules
		WHERE id = $1
	`
	var resched model.AppointmentReschedule
	err := r.db.GetContext(ctx, &resched, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("reschedule request", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reschedule request: %w", err)
	}
	return &resched, nil
}

func (r *appointmentRepository) UpdateReschedule(ctx context.Context, resched *model.AppointmentReschedule) error {
	query := `
		UPDATE appointment_reschedules
		SET status = $1, admin_notes = $2, updated_at = $3
		WHERE id = $4
	`
	resched.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query, resched.Status, resched.AdminNotes, resched.UpdatedAt, resched.ID)
	if err != nil {
		return fmt.Errorf("failed to update reschedule request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("reschedule request", nil)
	}

	return nil
}

func (r *appointmentRepository) ListReschedules(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentReschedule, error) {
	query := `
		SELECT id, appointment_id, original_at, requested_at,
			   reason, status, admin_notes, created_at, updated_at, deleted_at
		FROM appointment_reschedules
		WHERE appointment_id = $1
		ORDER BY created_at DESC
	`
	var rescheds []*model.AppointmentReschedule
	err := r.db.SelectContext(ctx, &rescheds, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reschedule requests: %w", err)
	}
	return rescheds, nil
}
