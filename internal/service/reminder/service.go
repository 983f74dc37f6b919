package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/notifier"
	"github.com/salonhq/salon-api/internal/repository"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/logger"
	"github.com/salonhq/salon-api/pkg/metrics"
)

const DefaultOffset = 24 * time.Hour

// Service owns the reminder lifecycle: rows are created when a booking is
// confirmed and flipped to sent/failed by the dispatch worker. Failed rows
// are never retried automatically; re-dispatch is an explicit external
// action.
type Service struct {
	reminders repository.ReminderRepository
	users     repository.UserRepository
	notifier  notifier.Notifier
	logger    *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(reminders repository.ReminderRepository, users repository.UserRepository, n notifier.Notifier, l *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		reminders: reminders,
		users:     users,
		notifier:  n,
		logger:    l,
		metrics:   m,
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ScheduleForAppointment creates the reminder row for a confirmed booking.
// The offset before the appointment comes from the customer's preference,
// falling back to the default; the channel likewise.
func (s *Service) ScheduleForAppointment(ctx context.Context, apt *model.Appointment) error {
	user, err := s.users.Get(ctx, apt.UserID)
	if err != nil {
		return fmt.Errorf("failed to load customer: %w", err)
	}

	offset := DefaultOffset
	if user.ReminderOffset > 0 {
		offset = time.Duration(user.ReminderOffset) * time.Minute
	}

	channel := model.ReminderChannelEmail
	if user.ReminderChannel != "" {
		channel = model.ReminderChannel(user.ReminderChannel)
	}

	recipient := user.Email
	if channel != model.ReminderChannelEmail {
		recipient = user.Phone
	}

	reminder := &model.AppointmentReminder{
		ID:            uuid.New(),
		AppointmentID: apt.ID,
		Channel:       channel,
		Recipient:     recipient,
		ScheduledTime: apt.ScheduledAt.Add(-offset),
		Status:        model.ReminderStatusPending,
		CreatedAt:     s.now(),
		UpdatedAt:     s.now(),
	}

	if err := s.reminders.Create(ctx, reminder); err != nil {
		return fmt.Errorf("failed to schedule reminder: %w", err)
	}

	s.metrics.RemindersScheduled.Inc()
	s.logger.Info("reminder scheduled",
		"appointment_id", apt.ID.String(),
		"channel", string(channel),
		"scheduled_time", reminder.ScheduledTime)
	return nil
}

// Dispatch attempts delivery for one due reminder and records the outcome on
// the row. Delivery failure is terminal for the row: the error text lands in
// response and status becomes failed.
func (s *Service) Dispatch(ctx context.Context, reminder *model.AppointmentReminder, apt *model.Appointment) error {
	msg := &notifier.Message{
		Channel:   reminder.Channel,
		Recipient: reminder.Recipient,
		Subject:   "Your upcoming salon appointment",
		Body: fmt.Sprintf("Reminder: you have an appointment on %s.",
			apt.ScheduledAt.Format("Mon, 02 Jan 2006 at 15:04")),
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		response := err.Error()
		reminder.Status = model.ReminderStatusFailed
		reminder.Response = &response
		s.metrics.RemindersFailed.WithLabelValues(string(reminder.Channel)).Inc()

		if updateErr := s.reminders.Update(ctx, reminder); updateErr != nil {
			s.logger.Error(updateErr, "failed to record reminder failure", "reminder_id", reminder.ID.String())
		}
		return apperrors.DeliveryFailure("failed to deliver reminder", err)
	}

	sentAt := s.now()
	reminder.Status = model.ReminderStatusSent
	reminder.SentAt = &sentAt
	s.metrics.RemindersSent.WithLabelValues(string(reminder.Channel)).Inc()

	if err := s.reminders.Update(ctx, reminder); err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}

// Skip terminates a reminder without delivery, recording why. Used when the
// appointment no longer needs one by the time the reminder comes due.
func (s *Service) Skip(ctx context.Context, reminder *model.AppointmentReminder, reason string) error {
	reminder.Status = model.ReminderStatusFailed
	reminder.Response = &reason

	if err := s.reminders.Update(ctx, reminder); err != nil {
		return fmt.Errorf("failed to skip reminder: %w", err)
	}
	return nil
}

// ClaimDue claims a batch of reminders whose time has come, for the worker.
// Claimed rows are invisible to other sweeps until their outcome is recorded.
func (s *Service) ClaimDue(ctx context.Context, limit int) ([]*model.AppointmentReminder, error) {
	return s.reminders.ClaimDue(ctx, s.now(), limit)
}

// ListForAppointment returns the audit trail for one appointment.
func (s *Service) ListForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentReminder, error) {
	return s.reminders.ListByAppointment(ctx, appointmentID)
}
