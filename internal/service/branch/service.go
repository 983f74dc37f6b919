package branch

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
	"github.com/salonhq/salon-api/internal/service/calendar"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/logger"
)

// Service manages branches and the schedule data the calendar reads: weekly
// business hours and holiday closures. Edits invalidate the calendar cache so
// bookings never see stale hours.
type Service struct {
	repo     repository.BranchRepository
	calendar *calendar.Service
	logger   *logger.Logger
}

func NewService(repo repository.BranchRepository, cal *calendar.Service, l *logger.Logger) *Service {
	return &Service{repo: repo, calendar: cal, logger: l}
}

func (s *Service) Create(ctx context.Context, req *model.CreateBranchRequest) (*model.Branch, error) {
	now := time.Now()
	branch := &model.Branch{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		Phone:     req.Phone,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Active:    true,
	}

	if err := s.repo.Create(ctx, branch); err != nil {
		return nil, err
	}

	s.logger.Info("branch created", "branch_id", branch.ID.String(), "name", branch.Name)
	return branch, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Branch, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, branch *model.Branch) error {
	return s.repo.Update(ctx, branch)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*model.Branch, error) {
	return s.repo.List(ctx, activeOnly)
}

// SetBusinessHours replaces the schedule for one weekday. Open and close are
// "15:04" wall-clock strings; a lunch window is optional but must be complete
// when present.
func (s *Service) SetBusinessHours(ctx context.Context, branchID uuid.UUID, req *model.UpsertBusinessHoursRequest) (*model.BusinessHours, error) {
	if _, err := s.repo.Get(ctx, branchID); err != nil {
		return nil, err
	}

	if !req.Closed {
		if !validClock(req.OpenTime) || !validClock(req.CloseTime) {
			return nil, apperrors.Validation("times must be in HH:MM format", nil)
		}
		if req.CloseTime <= req.OpenTime {
			return nil, apperrors.Validation("close_time must be after open_time", nil)
		}
	}
	if (req.LunchStart == nil) != (req.LunchEnd == nil) {
		return nil, apperrors.Validation("lunch_start and lunch_end must be set together", nil)
	}
	if req.LunchStart != nil {
		if !validClock(*req.LunchStart) || !validClock(*req.LunchEnd) {
			return nil, apperrors.Validation("times must be in HH:MM format", nil)
		}
		if *req.LunchEnd <= *req.LunchStart {
			return nil, apperrors.Validation("lunch_end must be after lunch_start", nil)
		}
	}

	hours := &model.BusinessHours{
		ID:         uuid.New(),
		BranchID:   branchID,
		DayOfWeek:  req.DayOfWeek,
		OpenTime:   req.OpenTime,
		CloseTime:  req.CloseTime,
		Closed:     req.Closed,
		LunchStart: req.LunchStart,
		LunchEnd:   req.LunchEnd,
	}

	if err := s.repo.UpsertBusinessHours(ctx, hours); err != nil {
		return nil, err
	}

	s.invalidateWeekday(branchID, req.DayOfWeek)
	return hours, nil
}

func (s *Service) ListBusinessHours(ctx context.Context, branchID uuid.UUID) ([]*model.BusinessHours, error) {
	return s.repo.ListBusinessHours(ctx, branchID)
}

func (s *Service) CreateHoliday(ctx context.Context, branchID uuid.UUID, req *model.CreateHolidayRequest) (*model.Holiday, error) {
	if _, err := s.repo.Get(ctx, branchID); err != nil {
		return nil, err
	}

	holiday := &model.Holiday{
		ID:       uuid.New(),
		BranchID: branchID,
		Date:     calendar.DateOf(req.Date),
		Name:     req.Name,
		Optional: req.Optional,
	}

	if err := s.repo.CreateHoliday(ctx, holiday); err != nil {
		return nil, err
	}

	s.calendar.Invalidate(branchID, holiday.Date)
	s.logger.Info("holiday created",
		"branch_id", branchID.String(),
		"date", holiday.Date.Format("2006-01-02"),
		"name", holiday.Name)
	return holiday, nil
}

func (s *Service) DeleteHoliday(ctx context.Context, branchID, holidayID uuid.UUID, date time.Time) error {
	if err := s.repo.DeleteHoliday(ctx, holidayID); err != nil {
		return err
	}
	s.calendar.Invalidate(branchID, date)
	return nil
}

func (s *Service) ListHolidays(ctx context.Context, branchID uuid.UUID, from, to time.Time) ([]*model.Holiday, error) {
	return s.repo.ListHolidays(ctx, branchID, from, to)
}

// invalidateWeekday drops cache entries for the next occurrences of the
// edited weekday. The cache TTL bounds staleness anyway; this just tightens
// the common case of editing today's hours.
func (s *Service) invalidateWeekday(branchID uuid.UUID, dayOfWeek int) {
	day := time.Now()
	for i := 0; i < 7; i++ {
		if int(day.Weekday()) == dayOfWeek {
			s.calendar.Invalidate(branchID, day)
		}
		day = day.AddDate(0, 0, 1)
	}
}

func validClock(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil
}
