package coupon

import (
	"context"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonhq/salon-api/internal/model"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/logger"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeCouponRepo struct {
	coupons map[string]*model.Coupon
	usages  map[uuid.UUID]int
}

func newFakeCouponRepo() *fakeCouponRepo {
	return &fakeCouponRepo{coupons: make(map[string]*model.Coupon), usages: make(map[uuid.UUID]int)}
}

func (r *fakeCouponRepo) Create(ctx context.Context, c *model.Coupon) error {
	r.coupons[c.Code] = c
	return nil
}

func (r *fakeCouponRepo) Get(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	for _, c := range r.coupons {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperrors.NotFound("coupon", nil)
}

func (r *fakeCouponRepo) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	c, ok := r.coupons[code]
	if !ok {
		return nil, apperrors.NotFound("coupon", nil)
	}
	return c, nil
}

func (r *fakeCouponRepo) Update(ctx context.Context, c *model.Coupon) error {
	r.coupons[c.Code] = c
	return nil
}

func (r *fakeCouponRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeCouponRepo) List(ctx context.Context, activeOnly bool, page model.Pagination) ([]*model.Coupon, int, error) {
	var all []*model.Coupon
	for _, c := range r.coupons {
		if activeOnly && !c.Active {
			continue
		}
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })

	total := len(all)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *fakeCouponRepo) CountUsageByUser(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	return r.usages[userID], nil
}

func newTestService(t *testing.T) (*Service, *fakeCouponRepo) {
	t.Helper()
	repo := newFakeCouponRepo()
	l := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	svc := NewService(repo, l).WithClock(func() time.Time { return testNow })
	return svc, repo
}

func createRequest() *model.CreateCouponRequest {
	return &model.CreateCouponRequest{
		Code:             "save20",
		DiscountType:     "percentage",
		DiscountValue:    20,
		UsagePerCustomer: 1,
		ValidFrom:        testNow.AddDate(0, -1, 0),
		ValidUntil:       testNow.AddDate(0, 1, 0),
	}
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)

	coupon, err := svc.Create(context.Background(), createRequest())

	require.NoError(t, err)
	assert.Equal(t, "SAVE20", coupon.Code, "codes are normalized to uppercase")
	assert.True(t, coupon.Active)
}

func TestCreatePercentageOverHundred(t *testing.T) {
	svc, _ := newTestService(t)
	req := createRequest()
	req.DiscountValue = 150

	_, err := svc.Create(context.Background(), req)

	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestDeactivate(t *testing.T) {
	svc, _ := newTestService(t)
	coupon, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	coupon, err = svc.Deactivate(context.Background(), coupon.ID)

	require.NoError(t, err)
	assert.False(t, coupon.Active)
}

func TestListPaginates(t *testing.T) {
	svc, _ := newTestService(t)
	for i := 0; i < 5; i++ {
		req := createRequest()
		req.Code = fmt.Sprintf("CODE%d", i)
		_, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
	}

	coupons, total, err := svc.List(context.Background(), false, model.Pagination{Page: 2, PageSize: 2})

	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, coupons, 2)
	assert.Equal(t, "CODE2", coupons[0].Code)

	// Out-of-range parameters normalize to defaults instead of failing.
	coupons, total, err = svc.List(context.Background(), false, model.Pagination{Page: 0, PageSize: -1})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, coupons, 5)
}

func TestValidate(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	quote, err := svc.Validate(context.Background(), &model.ValidateCouponRequest{
		Code:        "save20",
		UserID:      uuid.New(),
		OrderAmount: 100,
	})

	require.NoError(t, err)
	assert.True(t, quote.Valid)
	assert.Equal(t, 20.0, quote.Discount)
	assert.Empty(t, quote.Reason)
}

func TestValidateUnknownCode(t *testing.T) {
	svc, _ := newTestService(t)

	quote, err := svc.Validate(context.Background(), &model.ValidateCouponRequest{
		Code:        "NOPE",
		UserID:      uuid.New(),
		OrderAmount: 100,
	})

	require.NoError(t, err, "unknown codes are a quote outcome, not an error")
	assert.False(t, quote.Valid)
	assert.Equal(t, "coupon does not exist", quote.Reason)
}

func TestValidateRuleFailureReason(t *testing.T) {
	svc, repo := newTestService(t)
	coupon, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)
	coupon.Active = false
	repo.Update(context.Background(), coupon)

	quote, err := svc.Validate(context.Background(), &model.ValidateCouponRequest{
		Code:        "SAVE20",
		UserID:      uuid.New(),
		OrderAmount: 100,
	})

	require.NoError(t, err)
	assert.False(t, quote.Valid)
	assert.NotEmpty(t, quote.Reason)
}

func TestValidatePerCustomerCap(t *testing.T) {
	svc, repo := newTestService(t)
	_, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	userID := uuid.New()
	repo.usages[userID] = 1

	quote, err := svc.Validate(context.Background(), &model.ValidateCouponRequest{
		Code:        "SAVE20",
		UserID:      userID,
		OrderAmount: 100,
	})

	require.NoError(t, err)
	assert.False(t, quote.Valid)
}

func TestValidateBelowMinPurchase(t *testing.T) {
	svc, _ := newTestService(t)
	req := createRequest()
	req.MinPurchase = 200
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	quote, err := svc.Validate(context.Background(), &model.ValidateCouponRequest{
		Code:        "SAVE20",
		UserID:      uuid.New(),
		OrderAmount: 100,
	})

	require.NoError(t, err)
	assert.False(t, quote.Valid)
	assert.Equal(t, "order amount below minimum purchase", quote.Reason)
}
