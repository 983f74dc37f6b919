package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
	"github.com/salonhq/salon-api/internal/service/reminder"
	"github.com/salonhq/salon-api/pkg/logger"
	"github.com/salonhq/salon-api/pkg/metrics"
)

type ReminderProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
}

// ReminderProcessor polls for due reminders and hands each one to the
// reminder service for delivery. The repository claims each batch
// atomically, so overlapping sweeps (the poll loop and the nightly
// catch-up) never dispatch the same reminder twice.
type ReminderProcessor struct {
	appointments repository.AppointmentRepository
	reminders    *reminder.Service
	config       ReminderProcessorConfig
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewReminderProcessor(
	appointments repository.AppointmentRepository,
	reminders *reminder.Service,
	config ReminderProcessorConfig,
	l *logger.Logger,
	m *metrics.Metrics,
) *ReminderProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}

	return &ReminderProcessor{
		appointments: appointments,
		reminders:    reminders,
		config:       config,
		logger:       l,
		metrics:      m,
	}
}

func (p *ReminderProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting reminder processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down reminder processor")
			return
		case <-ticker.C:
			if err := p.ProcessDue(ctx); err != nil {
				p.logger.Error(err, "failed to process due reminders")
			}
		}
	}
}

// ProcessDue dispatches one batch of due reminders.
func (p *ReminderProcessor) ProcessDue(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.DispatchDuration)
	defer timer.ObserveDuration()

	due, err := p.reminders.ClaimDue(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("claim_due_reminders", "error").Inc()
		return fmt.Errorf("failed to claim due reminders: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("claim_due_reminders", "success").Inc()

	for _, rem := range due {
		if err := p.process(ctx, rem); err != nil {
			p.logger.Error(err, "failed to dispatch reminder",
				"reminder_id", rem.ID.String(),
				"channel", string(rem.Channel))
		}
	}
	return nil
}

func (p *ReminderProcessor) process(ctx context.Context, rem *model.AppointmentReminder) error {
	apt, err := p.appointments.Get(ctx, rem.AppointmentID)
	if err != nil {
		return fmt.Errorf("failed to load appointment: %w", err)
	}

	// Finished appointments drop their reminders from the due set without
	// delivery.
	if apt.Status == model.AppointmentStatusCancelled || apt.Status == model.AppointmentStatusCompleted {
		return p.reminders.Skip(ctx, rem, fmt.Sprintf("appointment %s", apt.Status))
	}

	return p.reminders.Dispatch(ctx, rem, apt)
}
