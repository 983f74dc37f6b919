package pricing

import (
	"math"
	"time"

	"github.com/salonhq/salon-api/internal/model"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

// Pure pricing rules. Current time is always an explicit parameter; the
// persistence-facing orchestration lives in the booking service.

// Round2 rounds a money amount to currency scale 2.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ValidateCoupon runs the coupon checks in order, short-circuiting on the
// first failure. priorUses is the customer's existing redemption count for
// this coupon. An order below min_purchase is not a hard failure: the order
// proceeds with a zero discount.
func ValidateCoupon(coupon *model.Coupon, priorUses int, orderAmount float64, now time.Time) (float64, error) {
	if coupon == nil {
		return 0, apperrors.InvalidCoupon("coupon does not exist")
	}
	if !coupon.Active {
		return 0, apperrors.InvalidCoupon("coupon is not active")
	}
	if !coupon.WithinValidity(now) {
		return 0, apperrors.InvalidCoupon("coupon is not valid at this time")
	}
	if coupon.Exhausted() {
		return 0, apperrors.InvalidCoupon("coupon usage limit reached")
	}
	if orderAmount < coupon.MinPurchase {
		return 0, nil
	}
	if priorUses >= coupon.UsagePerCustomer {
		return 0, apperrors.InvalidCoupon("coupon usage limit reached for this customer")
	}

	return couponDiscount(coupon, orderAmount), nil
}

func couponDiscount(coupon *model.Coupon, orderAmount float64) float64 {
	switch coupon.DiscountType {
	case model.DiscountTypePercentage:
		discount := orderAmount * coupon.DiscountValue / 100
		if coupon.MaxDiscount != nil && discount > *coupon.MaxDiscount {
			discount = *coupon.MaxDiscount
		}
		return Round2(discount)
	case model.DiscountTypeFixed:
		return Round2(math.Min(coupon.DiscountValue, orderAmount))
	default:
		return 0
	}
}

// MembershipDiscount computes the membership's contribution for an order. An
// inactive or expired membership yields zero. A remaining free service covers
// the full order amount and takes priority over the percentage discount; the
// counter itself is only decremented on explicit consumption, not here.
func MembershipDiscount(m *model.UserMembership, plan *model.MembershipPlan, orderAmount float64, now time.Time) float64 {
	if m == nil || plan == nil || !m.IsActive(now) {
		return 0
	}
	if m.FreeServicesRemaining > 0 {
		return Round2(orderAmount)
	}
	return Round2(orderAmount * plan.DiscountPercentage / 100)
}

// Quote combines both discount sources for one order.
//
// Stacking policy: a membership free service makes the order free and
// suppresses coupon redemption entirely (no redemption is burned on a zero
// balance); otherwise membership percentage and coupon discounts stack, with
// the total floored at zero.
type Quote struct {
	Subtotal           float64 `json:"subtotal"`
	CouponDiscount     float64 `json:"coupon_discount"`
	MembershipDiscount float64 `json:"membership_discount"`
	Total              float64 `json:"total"`
	FreeService        bool    `json:"free_service"`
}

func BuildQuote(subtotal, couponDiscount, membershipDiscount float64, freeService bool) Quote {
	if freeService {
		couponDiscount = 0
		membershipDiscount = Round2(subtotal)
	}

	total := Round2(subtotal - couponDiscount - membershipDiscount)
	if total < 0 {
		total = 0
	}

	return Quote{
		Subtotal:           Round2(subtotal),
		CouponDiscount:     couponDiscount,
		MembershipDiscount: membershipDiscount,
		Total:              total,
		FreeService:        freeService,
	}
}
