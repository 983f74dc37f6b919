package model

import (
	"time"

	"github.com/google/uuid"
)

type MembershipPlan struct {
	Base
	Name               string  `db:"name" json:"name"`
	Price              float64 `db:"price" json:"price"`
	DurationDays       int     `db:"duration_days" json:"duration_days"`
	DiscountPercentage float64 `db:"discount_percentage" json:"discount_percentage"`
	FreeServices       int     `db:"free_services" json:"free_services"`
	PriorityBooking    bool    `db:"priority_booking" json:"priority_booking"`
	FreeExtensions     bool    `db:"free_extensions" json:"free_extensions"`
	Active             bool    `db:"active" json:"active"`
}

type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "active"
	MembershipStatusExpired   MembershipStatus = "expired"
	MembershipStatusCancelled MembershipStatus = "cancelled"
)

type UserMembership struct {
	Base
	UserID                uuid.UUID        `db:"user_id" json:"user_id"`
	PlanID                uuid.UUID        `db:"plan_id" json:"plan_id"`
	Status                MembershipStatus `db:"status" json:"status"`
	StartedAt             time.Time        `db:"started_at" json:"started_at"`
	ExpiresAt             time.Time        `db:"expires_at" json:"expires_at"`
	ServicesUsed          int              `db:"services_used" json:"services_used"`
	FreeServicesRemaining int              `db:"free_services_remaining" json:"free_services_remaining"`
	TotalSavings          float64          `db:"total_savings" json:"total_savings"`
}

// IsActive requires both an active status and an unexpired window.
func (m *UserMembership) IsActive(now time.Time) bool {
	return m.Status == MembershipStatusActive && m.ExpiresAt.After(now)
}

type CreatePlanRequest struct {
	Name               string  `json:"name" validate:"required,max=120"`
	Price              float64 `json:"price" validate:"gte=0"`
	DurationDays       int     `json:"duration_days" validate:"gt=0"`
	DiscountPercentage float64 `json:"discount_percentage" validate:"gte=0,lte=100"`
	FreeServices       int     `json:"free_services" validate:"gte=0"`
	PriorityBooking    bool    `json:"priority_booking"`
	FreeExtensions     bool    `json:"free_extensions"`
}

type PurchaseMembershipRequest struct {
	PlanID uuid.UUID `json:"plan_id" validate:"required"`
}
