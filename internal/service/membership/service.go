package membership

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/logger"
)

// Service manages membership plans and user enrollments.
type Service struct {
	repo   repository.MembershipRepository
	logger *logger.Logger
	now    func() time.Time
}

func NewService(repo repository.MembershipRepository, l *logger.Logger) *Service {
	return &Service{repo: repo, logger: l, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreatePlan(ctx context.Context, req *model.CreatePlanRequest) (*model.MembershipPlan, error) {
	now := s.now()
	plan := &model.MembershipPlan{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:               req.Name,
		Price:              req.Price,
		DurationDays:       req.DurationDays,
		DiscountPercentage: req.DiscountPercentage,
		FreeServices:       req.FreeServices,
		PriorityBooking:    req.PriorityBooking,
		FreeExtensions:     req.FreeExtensions,
		Active:             true,
	}

	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}

	s.logger.Info("membership plan created", "plan_id", plan.ID.String(), "name", plan.Name)
	return plan, nil
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*model.MembershipPlan, error) {
	return s.repo.GetPlan(ctx, id)
}

// RetirePlan withdraws a plan from sale. Enrollments already on the plan are
// untouched.
func (s *Service) RetirePlan(ctx context.Context, id uuid.UUID) (*model.MembershipPlan, error) {
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	plan.Active = false
	if err := s.repo.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}

	s.logger.Info("membership plan retired", "plan_id", plan.ID.String(), "name", plan.Name)
	return plan, nil
}

func (s *Service) ListPlans(ctx context.Context, activeOnly bool) ([]*model.MembershipPlan, error) {
	return s.repo.ListPlans(ctx, activeOnly)
}

// Purchase enrolls a user in a plan. One active membership per user: an
// existing active enrollment blocks a second purchase.
func (s *Service) Purchase(ctx context.Context, userID uuid.UUID, req *model.PurchaseMembershipRequest) (*model.UserMembership, error) {
	now := s.now()

	existing, err := s.repo.GetActiveMembership(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("user already has an active membership", nil)
	}

	plan, err := s.repo.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, apperrors.Validation("membership plan is no longer offered", nil)
	}

	m := &model.UserMembership{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:                userID,
		PlanID:                plan.ID,
		Status:                model.MembershipStatusActive,
		StartedAt:             now,
		ExpiresAt:             now.AddDate(0, 0, plan.DurationDays),
		FreeServicesRemaining: plan.FreeServices,
	}

	if err := s.repo.CreateMembership(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("membership purchased",
		"membership_id", m.ID.String(),
		"user_id", userID.String(),
		"plan", plan.Name,
		"expires_at", m.ExpiresAt)
	return m, nil
}

// Renew extends an active membership by another plan period and restores the
// free-service allowance.
func (s *Service) Renew(ctx context.Context, userID uuid.UUID) (*model.UserMembership, error) {
	now := s.now()

	m, err := s.repo.GetActiveMembership(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperrors.MembershipInactive("no active membership to renew")
	}

	plan, err := s.repo.GetPlan(ctx, m.PlanID)
	if err != nil {
		return nil, err
	}

	m.ExpiresAt = m.ExpiresAt.AddDate(0, 0, plan.DurationDays)
	m.FreeServicesRemaining = plan.FreeServices
	if err := s.repo.UpdateMembership(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Cancel ends a membership immediately.
func (s *Service) Cancel(ctx context.Context, userID uuid.UUID) (*model.UserMembership, error) {
	m, err := s.repo.GetActiveMembership(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperrors.MembershipInactive("no active membership to cancel")
	}

	m.Status = model.MembershipStatusCancelled
	if err := s.repo.UpdateMembership(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetForUser returns the user's current membership, or a not-found error when
// none is active.
func (s *Service) GetForUser(ctx context.Context, userID uuid.UUID) (*model.UserMembership, error) {
	m, err := s.repo.GetActiveMembership(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperrors.NotFound("membership", nil)
	}
	return m, nil
}
