package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/logger"
)

// Service tracks branch stock. Status is derived from the counts on every
// save so it never drifts.
type Service struct {
	repo   repository.InventoryRepository
	logger *logger.Logger
}

func NewService(repo repository.InventoryRepository, l *logger.Logger) *Service {
	return &Service{repo: repo, logger: l}
}

func (s *Service) Create(ctx context.Context, req *model.UpsertInventoryRequest) (*model.Inventory, error) {
	now := time.Now()
	item := &model.Inventory{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BranchID:  req.BranchID,
		Name:      req.Name,
		SKU:       req.SKU,
		Stock:     req.Stock,
		Threshold: req.Threshold,
		UnitCost:  req.UnitCost,
	}
	item.RecomputeStatus()

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Inventory, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpsertInventoryRequest) (*model.Inventory, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Name = req.Name
	item.SKU = req.SKU
	item.Stock = req.Stock
	item.Threshold = req.Threshold
	item.UnitCost = req.UnitCost
	item.RecomputeStatus()

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Adjust applies a signed stock delta (consumption or restock).
func (s *Service) Adjust(ctx context.Context, id uuid.UUID, delta int) (*model.Inventory, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.Stock+delta < 0 {
		return nil, apperrors.Validation("stock cannot go negative", nil)
	}

	item.Stock += delta
	item.RecomputeStatus()
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	if item.Status != model.InventoryStatusInStock {
		s.logger.Warn("inventory running low",
			"item_id", item.ID.String(),
			"name", item.Name,
			"stock", item.Stock,
			"status", string(item.Status))
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*model.Inventory, error) {
	return s.repo.ListByBranch(ctx, branchID)
}
