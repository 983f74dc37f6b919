package staff

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
	"github.com/salonhq/salon-api/pkg/logger"
)

type Service struct {
	repo   repository.StaffRepository
	logger *logger.Logger
}

func NewService(repo repository.StaffRepository, l *logger.Logger) *Service {
	return &Service{repo: repo, logger: l}
}

func (s *Service) Create(ctx context.Context, req *model.CreateStaffRequest) (*model.Staff, error) {
	now := time.Now()
	staff := &model.Staff{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BranchID:  req.BranchID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      req.Role,
		Available: true,
	}

	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, err
	}

	// Home branch is always a served branch.
	if err := s.repo.AssignBranch(ctx, staff.ID, staff.BranchID); err != nil {
		return nil, err
	}

	s.logger.Info("staff created", "staff_id", staff.ID.String(), "branch_id", staff.BranchID.String())
	return staff, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateStaffRequest) (*model.Staff, error) {
	staff, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		staff.Name = *req.Name
	}
	if req.Phone != nil {
		staff.Phone = *req.Phone
	}
	if req.Role != nil {
		staff.Role = *req.Role
	}
	if req.Available != nil {
		staff.Available = *req.Available
	}

	if err := s.repo.Update(ctx, staff); err != nil {
		return nil, err
	}
	return staff, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]*model.Staff, error) {
	return s.repo.ListByBranch(ctx, branchID)
}

// AssignBranch adds a branch to the set a staff member serves.
func (s *Service) AssignBranch(ctx context.Context, staffID, branchID uuid.UUID) error {
	if _, err := s.repo.Get(ctx, staffID); err != nil {
		return err
	}
	return s.repo.AssignBranch(ctx, staffID, branchID)
}
