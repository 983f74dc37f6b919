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

func (r *reminderRepository) Create(ctx context.Context, reminder *model.AppointmentReminder) error {
	query := `
		INSERT INTO appointment_reminders (
			id, appointment_id, channel, recipient, scheduled_time,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.AppointmentID,
		reminder.Channel,
		reminder.Recipient,
		reminder.ScheduledTime,
		reminder.Status,
		reminder.CreatedAt,
		reminder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

func (r *reminderRepository) Get(ctx context.Context, id uuid.UUID) (*model.AppointmentReminder, error) {
	query := `
		SELECT id, appointment_id, channel, recipient, scheduled_time,
			   status, sent_at, response, created_at, updated_at
		FROM appointment_reminders
		WHERE id = $1
	`
	var reminder model.AppointmentReminder
	err := r.db.GetContext(ctx, &reminder, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("reminder", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return &reminder, nil
}

func (r *reminderRepository) Update(ctx context.Context, reminder *model.AppointmentReminder) error {
	query := `
		UPDATE appointment_reminders
		SET status = $1, sent_at = $2, response = $3, updated_at = $4
		WHERE id = $5
	`
	reminder.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		reminder.Status,
		reminder.SentAt,
		reminder.Response,
		reminder.UpdatedAt,
		reminder.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("reminder", nil)
	}
	return nil
}

func (r *reminderRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentReminder, error) {
	query := `
		SELECT id, appointment_id, channel, recipient, scheduled_time,
			   status, sent_at, response, created_at, updated_at
		FROM appointment_reminders
		WHERE appointment_id = $1
		ORDER BY scheduled_time ASC
	`
	var reminders []*model.AppointmentReminder
	err := r.db.SelectContext(ctx, &reminders, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// Rows claimed by a worker that died before recording an outcome are handed
// out again once this much time has passed.
const reclaimAfter = 15 * time.Minute

// ClaimDue atomically claims a batch of due reminders: the status flip to
// processing and the read happen in a single statement, so a sweep that
// overlaps another (the poll loop and the nightly catch-up run in the same
// process) can never claim a row the other already holds. SKIP LOCKED keeps
// concurrent claimers from blocking on each other's batch.
func (r *reminderRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.AppointmentReminder, error) {
	query := `
		UPDATE appointment_reminders
		SET status = 'processing', updated_at = $1
		WHERE id IN (
			SELECT id
			FROM appointment_reminders
			WHERE scheduled_time <= $1
			  AND (status = 'pending'
			       OR (status = 'processing' AND updated_at <= $2))
			ORDER BY scheduled_time ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, appointment_id, channel, recipient, scheduled_time,
				  status, sent_at, response, created_at, updated_at
	`
	var reminders []*model.AppointmentReminder
	err := r.db.SelectContext(ctx, &reminders, query, now, now.Add(-reclaimAfter), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due reminders: %w", err)
	}
	return reminders, nil
}
