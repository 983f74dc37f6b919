package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
	"github.com/salonhq/salon-api/internal/service/pricing"
	"github.com/salonhq/salon-api/pkg/logger"
)

type Service struct {
	repo   repository.CatalogRepository
	logger *logger.Logger
}

func NewService(repo repository.CatalogRepository, l *logger.Logger) *Service {
	return &Service{repo: repo, logger: l}
}

func (s *Service) Create(ctx context.Context, req *model.CreateServiceRequest) (*model.SalonService, error) {
	now := time.Now()
	svc := &model.SalonService{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BranchID:    req.BranchID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       pricing.Round2(req.Price),
		DurationMin: req.DurationMin,
		Active:      true,
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, err
	}

	s.logger.Info("service created", "service_id", svc.ID.String(), "name", svc.Name)
	return svc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.SalonService, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateServiceRequest) (*model.SalonService, error) {
	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Category != nil {
		svc.Category = *req.Category
	}
	if req.Price != nil {
		svc.Price = pricing.Round2(*req.Price)
	}
	if req.DurationMin != nil {
		svc.DurationMin = *req.DurationMin
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByBranch(ctx context.Context, branchID uuid.UUID, activeOnly bool) ([]*model.SalonService, error) {
	return s.repo.ListByBranch(ctx, branchID, activeOnly)
}
