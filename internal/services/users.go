package services

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
	"github.com/gravadigital/wisha-api/internal/validation"
)

// UserService maneja la lógica de negocio de usuarios
type UserService struct {
	userRepo  postgres.UserRepository
	validator validation.UserValidation
	log       *log.Logger
}

// NewUserService crea una nueva instancia del servicio de usuarios
func NewUserService(userRepo postgres.UserRepository) *UserService {
	return &UserService{
		userRepo:  userRepo,
		validator: validation.UserValidation{},
		log:       logger.Service("users"),
	}
}

// GetByID returns nil when the profile does not exist or cannot be read
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) *user.User {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		logMiss(s.log, "user", id, err)
		return nil
	}
	return u
}

func (s *UserService) GetByEmail(ctx context.Context, email string) *user.User {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.log.Debug("user lookup by email failed", "email", email, "error", err)
		return nil
	}
	return u
}

// Create inserts a profile keyed by an identity id
func (s *UserService) Create(ctx context.Context, id uuid.UUID, name, email string) *user.User {
	if err := s.validator.ValidateUserName(name); err != nil {
		s.log.Warn("rejected user profile", "error", err)
		return nil
	}

	u := user.NewUser(id, name, email)
	if err := s.userRepo.Create(ctx, u); err != nil {
		s.log.Error("failed to create user", "user_id", id, "error", err)
		return nil
	}
	return u
}

// Update applies a sparse profile change
func (s *UserService) Update(ctx context.Context, id uuid.UUID, patch user.Patch) *user.User {
	if patch.Name != nil {
		if err := s.validator.ValidateUserName(*patch.Name); err != nil {
			s.log.Warn("rejected user update", "user_id", id, "error", err)
			return nil
		}
	}

	u, err := s.userRepo.Update(ctx, id, patch)
	if err != nil {
		s.log.Error("failed to update user", "user_id", id, "error", err)
		return nil
	}
	return u
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) bool {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		s.log.Error("failed to delete user", "user_id", id, "error", err)
		return false
	}
	return true
}
