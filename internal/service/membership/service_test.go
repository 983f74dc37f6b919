package membership

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonhq/salon-api/internal/model"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/logger"
)

var testNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

type fakeMembershipRepo struct {
	plans       map[uuid.UUID]*model.MembershipPlan
	memberships map[uuid.UUID]*model.UserMembership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{
		plans:       make(map[uuid.UUID]*model.MembershipPlan),
		memberships: make(map[uuid.UUID]*model.UserMembership),
	}
}

func (r *fakeMembershipRepo) CreatePlan(ctx context.Context, p *model.MembershipPlan) error {
	r.plans[p.ID] = p
	return nil
}

func (r *fakeMembershipRepo) GetPlan(ctx context.Context, id uuid.UUID) (*model.MembershipPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, apperrors.NotFound("membership plan", nil)
	}
	return p, nil
}

func (r *fakeMembershipRepo) UpdatePlan(ctx context.Context, p *model.MembershipPlan) error {
	r.plans[p.ID] = p
	return nil
}

func (r *fakeMembershipRepo) ListPlans(ctx context.Context, activeOnly bool) ([]*model.MembershipPlan, error) {
	var out []*model.MembershipPlan
	for _, p := range r.plans {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeMembershipRepo) CreateMembership(ctx context.Context, m *model.UserMembership) error {
	r.memberships[m.UserID] = m
	return nil
}

func (r *fakeMembershipRepo) GetMembership(ctx context.Context, id uuid.UUID) (*model.UserMembership, error) {
	for _, m := range r.memberships {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, apperrors.NotFound("membership", nil)
}

func (r *fakeMembershipRepo) GetActiveMembership(ctx context.Context, userID uuid.UUID, now time.Time) (*model.UserMembership, error) {
	m, ok := r.memberships[userID]
	if !ok || !m.IsActive(now) {
		return nil, nil
	}
	return m, nil
}

func (r *fakeMembershipRepo) UpdateMembership(ctx context.Context, m *model.UserMembership) error {
	r.memberships[m.UserID] = m
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeMembershipRepo) {
	t.Helper()
	repo := newFakeMembershipRepo()
	l := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	svc := NewService(repo, l).WithClock(func() time.Time { return testNow })
	return svc, repo
}

func goldPlan(t *testing.T, svc *Service) *model.MembershipPlan {
	t.Helper()
	plan, err := svc.CreatePlan(context.Background(), &model.CreatePlanRequest{
		Name:               "Gold",
		Price:              199,
		DurationDays:       90,
		DiscountPercentage: 10,
		FreeServices:       3,
	})
	require.NoError(t, err)
	return plan
}

func TestPurchase(t *testing.T) {
	svc, _ := newTestService(t)
	plan := goldPlan(t, svc)
	userID := uuid.New()

	m, err := svc.Purchase(context.Background(), userID, &model.PurchaseMembershipRequest{PlanID: plan.ID})

	require.NoError(t, err)
	assert.Equal(t, model.MembershipStatusActive, m.Status)
	assert.Equal(t, 3, m.FreeServicesRemaining)
	assert.True(t, m.ExpiresAt.Equal(testNow.AddDate(0, 0, 90)))
}

func TestPurchaseAlreadyEnrolled(t *testing.T) {
	svc, _ := newTestService(t)
	plan := goldPlan(t, svc)
	userID := uuid.New()

	_, err := svc.Purchase(context.Background(), userID, &model.PurchaseMembershipRequest{PlanID: plan.ID})
	require.NoError(t, err)

	_, err = svc.Purchase(context.Background(), userID, &model.PurchaseMembershipRequest{PlanID: plan.ID})
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
}

func TestPurchaseRetiredPlan(t *testing.T) {
	svc, _ := newTestService(t)
	plan := goldPlan(t, svc)

	retired, err := svc.RetirePlan(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.False(t, retired.Active)

	_, err = svc.Purchase(context.Background(), uuid.New(), &model.PurchaseMembershipRequest{PlanID: plan.ID})

	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestPurchaseAfterExpiry(t *testing.T) {
	svc, repo := newTestService(t)
	plan := goldPlan(t, svc)
	userID := uuid.New()

	m, err := svc.Purchase(context.Background(), userID, &model.PurchaseMembershipRequest{PlanID: plan.ID})
	require.NoError(t, err)

	// An expired membership no longer blocks a new purchase.
	m.ExpiresAt = testNow.AddDate(0, 0, -1)
	repo.UpdateMembership(context.Background(), m)

	_, err = svc.Purchase(context.Background(), userID, &model.PurchaseMembershipRequest{PlanID: plan.ID})
	assert.NoError(t, err)
}

func TestRenew(t *testing.T) {
	svc, repo := newTestService(t)
	plan := goldPlan(t, svc)
	userID := uuid.New()

	m, err := svc.Purchase(context.Background(), userID, &model.PurchaseMembershipRequest{PlanID: plan.ID})
	require.NoError(t, err)

	m.FreeServicesRemaining = 0
	repo.UpdateMembership(context.Background(), m)
	firstExpiry := m.ExpiresAt

	renewed, err := svc.Renew(context.Background(), userID)

	require.NoError(t, err)
	assert.True(t, renewed.ExpiresAt.Equal(firstExpiry.AddDate(0, 0, 90)),
		"renewal extends from the current expiry, not from now")
	assert.Equal(t, 3, renewed.FreeServicesRemaining, "renewal restores the allowance")
}

func TestRenewWithoutMembership(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Renew(context.Background(), uuid.New())

	assert.True(t, apperrors.Is(err, apperrors.CodeMembershipInactive))
}

func TestCancel(t *testing.T) {
	svc, _ := newTestService(t)
	plan := goldPlan(t, svc)
	userID := uuid.New()

	_, err := svc.Purchase(context.Background(), userID, &model.PurchaseMembershipRequest{PlanID: plan.ID})
	require.NoError(t, err)

	m, err := svc.Cancel(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, model.MembershipStatusCancelled, m.Status)

	_, err = svc.GetForUser(context.Background(), userID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}
