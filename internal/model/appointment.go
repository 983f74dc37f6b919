package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending    AppointmentStatus = "pending"
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// appointmentTransitions is the allowed status transition table. Completed
// and cancelled are terminal.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:    {AppointmentStatusScheduled, AppointmentStatusInProgress, AppointmentStatusCancelled},
	AppointmentStatusScheduled:  {AppointmentStatusInProgress, AppointmentStatusCancelled},
	AppointmentStatusInProgress: {AppointmentStatusCompleted, AppointmentStatusCancelled},
	AppointmentStatusCompleted:  {},
	AppointmentStatusCancelled:  {},
}

// CanTransitionTo reports whether the status machine allows moving to next.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) Terminal() bool {
	return len(appointmentTransitions[s]) == 0
}

func (s AppointmentStatus) Valid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

type Appointment struct {
	Base
	UserID        uuid.UUID         `db:"user_id" json:"user_id"`
	BranchID      uuid.UUID         `db:"branch_id" json:"branch_id"`
	StaffID       uuid.UUID         `db:"staff_id" json:"staff_id"`
	ScheduledAt   time.Time         `db:"scheduled_at" json:"scheduled_at"`
	Status        AppointmentStatus `db:"status" json:"status"`
	PaymentStatus PaymentStatus     `db:"payment_status" json:"payment_status"`
	Subtotal      float64           `db:"subtotal" json:"subtotal"`
	Discount      float64           `db:"discount" json:"discount"`
	TotalPrice    float64           `db:"total_price" json:"total_price"`
	CouponCode    *string           `db:"coupon_code" json:"coupon_code,omitempty"`
	PaymentRef    *string           `db:"payment_ref" json:"payment_ref,omitempty"`
	Notes         string            `db:"notes" json:"notes,omitempty"`
	Rating        *int              `db:"rating" json:"rating,omitempty"`
	Review        *string           `db:"review" json:"review,omitempty"`
	CancelReason  *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`

	Services []*AppointmentLine `db:"-" json:"services,omitempty"`
}

// AppointmentLine snapshots the price of one booked service at booking time.
type AppointmentLine struct {
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	ServiceID     uuid.UUID `db:"service_id" json:"service_id"`
	Price         float64   `db:"price" json:"price"`
}

type RescheduleStatus string

const (
	RescheduleStatusPending  RescheduleStatus = "pending"
	RescheduleStatusApproved RescheduleStatus = "approved"
	RescheduleStatusRejected RescheduleStatus = "rejected"
)

type AppointmentReschedule struct {
	Base
	AppointmentID uuid.UUID        `db:"appointment_id" json:"appointment_id"`
	OriginalAt    time.Time        `db:"original_at" json:"original_at"`
	RequestedAt   time.Time        `db:"requested_at" json:"requested_at"`
	Reason        string           `db:"reason" json:"reason"`
	Status        RescheduleStatus `db:"status" json:"status"`
	AdminNotes    string           `db:"admin_notes" json:"admin_notes,omitempty"`
}

type BookingRequest struct {
	UserID      uuid.UUID   `json:"user_id" validate:"required"`
	BranchID    uuid.UUID   `json:"branch_id" validate:"required"`
	StaffID     uuid.UUID   `json:"staff_id" validate:"required"`
	ServiceIDs  []uuid.UUID `json:"service_ids" validate:"required,min=1"`
	ScheduledAt time.Time   `json:"scheduled_at" validate:"required"`
	CouponCode  string      `json:"coupon_code"`
	PayOnline   bool        `json:"pay_online"`
	Notes       string      `json:"notes" validate:"max=1000"`
}

type RescheduleRequest struct {
	RequestedAt time.Time `json:"requested_at" validate:"required"`
	Reason      string    `json:"reason" validate:"required,max=500"`
}

type RescheduleDecision struct {
	Approve    bool   `json:"approve"`
	AdminNotes string `json:"admin_notes" validate:"max=500"`
}

type ReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"max=2000"`
}

type AppointmentFilters struct {
	BranchID  uuid.UUID
	StaffID   uuid.UUID
	UserID    uuid.UUID
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
}
