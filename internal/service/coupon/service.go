package coupon

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
	"github.com/salonhq/salon-api/internal/service/pricing"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/logger"
)

// Service manages the coupon catalog and answers dry-run validation queries.
// Actual redemption happens inside the booking transaction, never here.
type Service struct {
	repo   repository.CouponRepository
	logger *logger.Logger
	now    func() time.Time
}

func NewService(repo repository.CouponRepository, l *logger.Logger) *Service {
	return &Service{repo: repo, logger: l, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	now := s.now()
	coupon := &model.Coupon{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Code:             strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountType:     model.DiscountType(req.DiscountType),
		DiscountValue:    req.DiscountValue,
		MinPurchase:      req.MinPurchase,
		MaxDiscount:      req.MaxDiscount,
		UsageLimit:       req.UsageLimit,
		UsagePerCustomer: req.UsagePerCustomer,
		ValidFrom:        req.ValidFrom,
		ValidUntil:       req.ValidUntil,
		Active:           true,
	}

	if coupon.DiscountType == model.DiscountTypePercentage && coupon.DiscountValue > 100 {
		return nil, apperrors.Validation("percentage discount cannot exceed 100", nil)
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}

	s.logger.Info("coupon created", "coupon_id", coupon.ID.String(), "code", coupon.Code)
	return coupon, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, coupon *model.Coupon) error {
	return s.repo.Update(ctx, coupon)
}

// Deactivate retires a coupon without deleting its redemption history.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	coupon, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	coupon.Active = false
	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool, page model.Pagination) ([]*model.Coupon, int, error) {
	page.Normalize()
	return s.repo.List(ctx, activeOnly, page)
}

// Validate prices a coupon against a hypothetical order without redeeming
// it. Rule failures come back as a reason string, not an error: the quote
// endpoint answers "would this work", it does not fail.
func (s *Service) Validate(ctx context.Context, req *model.ValidateCouponRequest) (*model.CouponQuote, error) {
	coupon, err := s.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(req.Code)))
	if err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			return &model.CouponQuote{Valid: false, Reason: "coupon does not exist"}, nil
		}
		return nil, err
	}

	priorUses, err := s.repo.CountUsageByUser(ctx, coupon.ID, req.UserID)
	if err != nil {
		return nil, err
	}

	discount, err := pricing.ValidateCoupon(coupon, priorUses, req.OrderAmount, s.now())
	if err != nil {
		var appErr *apperrors.AppError
		reason := "coupon is not valid"
		if errors.As(err, &appErr) {
			reason = appErr.Message
		}
		return &model.CouponQuote{Valid: false, Reason: reason}, nil
	}

	if discount == 0 {
		return &model.CouponQuote{Valid: false, Reason: "order amount below minimum purchase"}, nil
	}
	return &model.CouponQuote{Valid: true, Discount: discount}, nil
}
