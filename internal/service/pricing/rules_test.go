package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/salonhq/salon-api/internal/model"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func validCoupon() *model.Coupon {
	return &model.Coupon{
		Base:             model.Base{ID: uuid.New()},
		Code:             "SAVE20",
		DiscountType:     model.DiscountTypePercentage,
		DiscountValue:    20,
		UsagePerCustomer: 1,
		ValidFrom:        testNow.AddDate(0, -1, 0),
		ValidUntil:       testNow.AddDate(0, 1, 0),
		Active:           true,
	}
}

func TestValidateCouponPercentage(t *testing.T) {
	discount, err := ValidateCoupon(validCoupon(), 0, 100, testNow)

	assert.NoError(t, err)
	assert.Equal(t, 20.0, discount)
}

func TestValidateCouponMaxDiscountCap(t *testing.T) {
	coupon := validCoupon()
	coupon.MaxDiscount = floatPtr(15)

	discount, err := ValidateCoupon(coupon, 0, 100, testNow)

	assert.NoError(t, err)
	assert.Equal(t, 15.0, discount)
}

func TestValidateCouponFixed(t *testing.T) {
	coupon := validCoupon()
	coupon.DiscountType = model.DiscountTypeFixed
	coupon.DiscountValue = 30

	discount, err := ValidateCoupon(coupon, 0, 100, testNow)
	assert.NoError(t, err)
	assert.Equal(t, 30.0, discount)

	// A fixed discount never exceeds the order amount.
	discount, err = ValidateCoupon(coupon, 0, 25, testNow)
	assert.NoError(t, err)
	assert.Equal(t, 25.0, discount)
}

func TestValidateCouponInactive(t *testing.T) {
	coupon := validCoupon()
	coupon.Active = false

	_, err := ValidateCoupon(coupon, 0, 100, testNow)

	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidCoupon))
}

func TestValidateCouponOutsideValidity(t *testing.T) {
	coupon := validCoupon()

	_, err := ValidateCoupon(coupon, 0, 100, coupon.ValidUntil.AddDate(0, 0, 1))
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidCoupon))

	_, err = ValidateCoupon(coupon, 0, 100, coupon.ValidFrom.AddDate(0, 0, -1))
	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidCoupon))
}

func TestValidateCouponExhausted(t *testing.T) {
	coupon := validCoupon()
	coupon.UsageLimit = intPtr(50)
	coupon.TimesUsed = 50

	_, err := ValidateCoupon(coupon, 0, 100, testNow)

	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidCoupon))
}

func TestValidateCouponPerCustomerCap(t *testing.T) {
	coupon := validCoupon()

	_, err := ValidateCoupon(coupon, 1, 100, testNow)

	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidCoupon))
}

func TestValidateCouponBelowMinPurchase(t *testing.T) {
	coupon := validCoupon()
	coupon.MinPurchase = 200

	// Not a hard failure: the order proceeds undiscounted.
	discount, err := ValidateCoupon(coupon, 0, 100, testNow)

	assert.NoError(t, err)
	assert.Equal(t, 0.0, discount)
}

func TestValidateCouponNil(t *testing.T) {
	_, err := ValidateCoupon(nil, 0, 100, testNow)

	assert.True(t, apperrors.Is(err, apperrors.CodeInvalidCoupon))
}

func TestMembershipDiscount(t *testing.T) {
	plan := &model.MembershipPlan{DiscountPercentage: 10}
	m := &model.UserMembership{
		Status:    model.MembershipStatusActive,
		ExpiresAt: testNow.AddDate(0, 1, 0),
	}

	assert.Equal(t, 10.0, MembershipDiscount(m, plan, 100, testNow))
}

func TestMembershipDiscountFreeService(t *testing.T) {
	plan := &model.MembershipPlan{DiscountPercentage: 10}
	m := &model.UserMembership{
		Status:                model.MembershipStatusActive,
		ExpiresAt:             testNow.AddDate(0, 1, 0),
		FreeServicesRemaining: 2,
	}

	assert.Equal(t, 100.0, MembershipDiscount(m, plan, 100, testNow),
		"a free service covers the full order")
}

func TestMembershipDiscountInactive(t *testing.T) {
	plan := &model.MembershipPlan{DiscountPercentage: 10}

	expired := &model.UserMembership{
		Status:    model.MembershipStatusActive,
		ExpiresAt: testNow.AddDate(0, 0, -1),
	}
	assert.Equal(t, 0.0, MembershipDiscount(expired, plan, 100, testNow))

	cancelled := &model.UserMembership{
		Status:    model.MembershipStatusCancelled,
		ExpiresAt: testNow.AddDate(0, 1, 0),
	}
	assert.Equal(t, 0.0, MembershipDiscount(cancelled, plan, 100, testNow))

	assert.Equal(t, 0.0, MembershipDiscount(nil, plan, 100, testNow))
}

func TestBuildQuoteStacking(t *testing.T) {
	quote := BuildQuote(100, 20, 10, false)

	assert.Equal(t, 100.0, quote.Subtotal)
	assert.Equal(t, 20.0, quote.CouponDiscount)
	assert.Equal(t, 10.0, quote.MembershipDiscount)
	assert.Equal(t, 70.0, quote.Total)
}

func TestBuildQuoteFreeServiceSuppressesCoupon(t *testing.T) {
	quote := BuildQuote(100, 20, 100, true)

	assert.Equal(t, 0.0, quote.CouponDiscount, "no coupon is burned on a free order")
	assert.Equal(t, 100.0, quote.MembershipDiscount)
	assert.Equal(t, 0.0, quote.Total)
	assert.True(t, quote.FreeService)
}

func TestBuildQuoteFlooredAtZero(t *testing.T) {
	quote := BuildQuote(30, 25, 10, false)

	assert.Equal(t, 0.0, quote.Total)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.56, Round2(10.556))
	assert.Equal(t, 10.55, Round2(10.554))
	assert.Equal(t, 33.33, Round2(100.0/3))
	assert.Equal(t, 0.0, Round2(0))
}
