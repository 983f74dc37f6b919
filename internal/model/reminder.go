package model

import (
	"time"

	"github.com/google/uuid"
)

type ReminderChannel string

const (
	ReminderChannelEmail    ReminderChannel = "email"
	ReminderChannelSMS      ReminderChannel = "sms"
	ReminderChannelWhatsApp ReminderChannel = "whatsapp"
)

type ReminderStatus string

const (
	ReminderStatusPending    ReminderStatus = "pending"
	ReminderStatusProcessing ReminderStatus = "processing"
	ReminderStatusSent       ReminderStatus = "sent"
	ReminderStatusFailed     ReminderStatus = "failed"
)

// AppointmentReminder is created when a booking is confirmed and mutated by
// the dispatch worker. Rows are never deleted; they double as the delivery
// audit trail.
type AppointmentReminder struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	AppointmentID uuid.UUID       `db:"appointment_id" json:"appointment_id"`
	Channel       ReminderChannel `db:"channel" json:"channel"`
	Recipient     string          `db:"recipient" json:"recipient"`
	ScheduledTime time.Time       `db:"scheduled_time" json:"scheduled_time"`
	Status        ReminderStatus  `db:"status" json:"status"`
	SentAt        *time.Time      `db:"sent_at" json:"sent_at,omitempty"`
	Response      *string         `db:"response" json:"response,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}
