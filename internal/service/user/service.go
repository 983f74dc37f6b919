package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
	"github.com/salonhq/salon-api/pkg/auth"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/logger"
)

// Service handles registration, login and profile management.
type Service struct {
	repo   repository.UserRepository
	jwt    auth.JWTService
	logger *logger.Logger
}

func NewService(repo repository.UserRepository, jwt auth.JWTService, l *logger.Logger) *Service {
	return &Service{repo: repo, jwt: jwt, logger: l}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !apperrors.Is(err, apperrors.CodeNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("email already registered", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := time.Now()
	user := &model.User{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         model.UserRoleCustomer,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID.String())
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			return nil, apperrors.Unauthorized(nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized(nil)
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user.LastLoginAt = time.Now()
	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error(err, "failed to record login time", "user_id", user.ID.String())
	}

	return &model.LoginResponse{Token: token, User: user}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.Get(ctx, id)
}

// UpdateProfile applies partial profile edits, including the reminder
// preferences the scheduler reads at booking time.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.ReminderChannel != nil {
		if *req.ReminderChannel != string(model.ReminderChannelEmail) && user.Phone == "" {
			return nil, apperrors.Validation("a phone number is required for sms and whatsapp reminders", nil)
		}
		user.ReminderChannel = *req.ReminderChannel
	}
	if req.ReminderOffset != nil {
		user.ReminderOffset = *req.ReminderOffset
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
