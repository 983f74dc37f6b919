package model

import (
	"time"

	"github.com/google/uuid"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

type Coupon struct {
	Base
	Code             string       `db:"code" json:"code"`
	DiscountType     DiscountType `db:"discount_type" json:"discount_type"`
	DiscountValue    float64      `db:"discount_value" json:"discount_value"`
	MinPurchase      float64      `db:"min_purchase" json:"min_purchase"`
	MaxDiscount      *float64     `db:"max_discount" json:"max_discount,omitempty"`
	UsageLimit       *int         `db:"usage_limit" json:"usage_limit,omitempty"`
	UsagePerCustomer int          `db:"usage_per_customer" json:"usage_per_customer"`
	TimesUsed        int          `db:"times_used" json:"times_used"`
	ValidFrom        time.Time    `db:"valid_from" json:"valid_from"`
	ValidUntil       time.Time    `db:"valid_until" json:"valid_until"`
	Active           bool         `db:"active" json:"active"`
}

// WithinValidity reports whether now falls inside [valid_from, valid_until].
func (c *Coupon) WithinValidity(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidUntil)
}

// Exhausted reports whether the global usage limit has been reached.
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && c.TimesUsed >= *c.UsageLimit
}

// CouponUsage records one redemption; per-customer caps are enforced by
// counting these rows.
type CouponUsage struct {
	ID            uuid.UUID `db:"id" json:"id"`
	CouponID      uuid.UUID `db:"coupon_id" json:"coupon_id"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	Discount      float64   `db:"discount" json:"discount"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type CreateCouponRequest struct {
	Code             string    `json:"code" validate:"required,max=40,uppercase"`
	DiscountType     string    `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue    float64   `json:"discount_value" validate:"gt=0"`
	MinPurchase      float64   `json:"min_purchase" validate:"gte=0"`
	MaxDiscount      *float64  `json:"max_discount" validate:"omitempty,gt=0"`
	UsageLimit       *int      `json:"usage_limit" validate:"omitempty,gt=0"`
	UsagePerCustomer int       `json:"usage_per_customer" validate:"gt=0"`
	ValidFrom        time.Time `json:"valid_from" validate:"required"`
	ValidUntil       time.Time `json:"valid_until" validate:"required,gtfield=ValidFrom"`
}

type ValidateCouponRequest struct {
	Code        string    `json:"code" validate:"required"`
	UserID      uuid.UUID `json:"user_id" validate:"required"`
	OrderAmount float64   `json:"order_amount" validate:"gt=0"`
}

type CouponQuote struct {
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount"`
	Reason   string  `json:"reason,omitempty"`
}
