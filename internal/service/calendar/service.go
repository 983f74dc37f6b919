package calendar

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/google/uuid"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// Service resolves branch schedules through the repositories, with a short
// TTL cache in front since hours and holidays change rarely but are read on
// every booking.
type Service struct {
	branchRepo repository.BranchRepository
	cache      *gocache.Cache
}

func NewService(branchRepo repository.BranchRepository) *Service {
	return &Service{
		branchRepo: branchRepo,
		cache:      gocache.New(cacheTTL, cacheCleanup),
	}
}

type daySnapshot struct {
	hours   *model.BusinessHours
	holiday *model.Holiday
}

func (s *Service) snapshot(ctx context.Context, branchID uuid.UUID, date time.Time) (*daySnapshot, error) {
	day := DateOf(date)
	key := fmt.Sprintf("%s:%s", branchID, day.Format("2006-01-02"))

	if cached, ok := s.cache.Get(key); ok {
		return cached.(*daySnapshot), nil
	}

	hours, err := s.branchRepo.GetBusinessHours(ctx, branchID, int(day.Weekday()))
	if err != nil {
		return nil, fmt.Errorf("failed to load business hours: %w", err)
	}

	holiday, err := s.branchRepo.GetHolidayByDate(ctx, branchID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load holiday: %w", err)
	}

	snap := &daySnapshot{hours: hours, holiday: holiday}
	s.cache.Set(key, snap, gocache.DefaultExpiration)
	return snap, nil
}

// IsOpen reports whether the branch is open at all on the given date.
func (s *Service) IsOpen(ctx context.Context, branchID uuid.UUID, date time.Time) (bool, error) {
	snap, err := s.snapshot(ctx, branchID, date)
	if err != nil {
		return false, err
	}
	return IsOpen(snap.hours, snap.holiday), nil
}

// IsOpenAt additionally checks that the wall-clock time of the slot falls
// inside the opening window (and outside any lunch break).
func (s *Service) IsOpenAt(ctx context.Context, branchID uuid.UUID, at time.Time) (bool, error) {
	snap, err := s.snapshot(ctx, branchID, at)
	if err != nil {
		return false, err
	}
	if !IsOpen(snap.hours, snap.holiday) {
		return false, nil
	}
	return WithinHours(snap.hours, ClockOf(at)), nil
}

// OpeningTime returns the branch's "15:04" opening time for the date, or nil
// when closed/unknown.
func (s *Service) OpeningTime(ctx context.Context, branchID uuid.UUID, date time.Time) (*string, error) {
	snap, err := s.snapshot(ctx, branchID, date)
	if err != nil {
		return nil, err
	}
	if !IsOpen(snap.hours, snap.holiday) {
		return nil, nil
	}
	return OpeningTime(snap.hours), nil
}

// ClosingTime returns the branch's "15:04" closing time for the date, or nil
// when closed/unknown.
func (s *Service) ClosingTime(ctx context.Context, branchID uuid.UUID, date time.Time) (*string, error) {
	snap, err := s.snapshot(ctx, branchID, date)
	if err != nil {
		return nil, err
	}
	if !IsOpen(snap.hours, snap.holiday) {
		return nil, nil
	}
	return ClosingTime(snap.hours), nil
}

// Invalidate drops cached schedule state for a branch day after hours or
// holidays are edited.
func (s *Service) Invalidate(branchID uuid.UUID, date time.Time) {
	key := fmt.Sprintf("%s:%s", branchID, DateOf(date).Format("2006-01-02"))
	s.cache.Delete(key)
}
