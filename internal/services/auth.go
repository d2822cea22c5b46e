package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/auth"
	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/identity"
	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
)

// Authenticator is the identity subsystem the auth service delegates to
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (*identity.Identity, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	GetSession(ctx context.Context, token string) (*auth.Session, error)
	SignOut(ctx context.Context, token string) error
	IdentityExists(ctx context.Context, email string) (bool, error)
	DeleteIdentity(ctx context.Context, id uuid.UUID) error
}

// AuthResult is a signed-in profile with its session
type AuthResult struct {
	User    *user.User
	Session *auth.Session
}

// AuthService joins identities with their profiles
type AuthService struct {
	provider Authenticator
	userRepo postgres.UserRepository
	log      *log.Logger
}

func NewAuthService(provider Authenticator, userRepo postgres.UserRepository) *AuthService {
	return &AuthService{
		provider: provider,
		userRepo: userRepo,
		log:      logger.Service("auth"),
	}
}

// Signup registers an identity, creates its profile and signs in. When the
// profile insert or the first sign-in fails, whatever was written is removed
// again so the email stays free.
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	s.log.Debug("signup", "email", email)

	ident, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile := user.NewUser(ident.ID, name, ident.Email)
	if err := s.userRepo.Create(ctx, profile); err != nil {
		s.log.Error("failed to create profile, removing identity", "identity_id", ident.ID, "error", err)
		s.undoSignup(ctx, ident.ID, false)
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}

	session, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.log.Error("failed to sign in new user, removing account", "identity_id", ident.ID, "error", err)
		s.undoSignup(ctx, ident.ID, true)
		return nil, err
	}

	s.log.Info("user signed up", "user_id", profile.ID)
	return &AuthResult{User: profile, Session: session}, nil
}

func (s *AuthService) undoSignup(ctx context.Context, id uuid.UUID, withProfile bool) {
	if withProfile {
		if err := s.userRepo.Delete(ctx, id); err != nil {
			s.log.Error("failed to remove orphaned profile", "user_id", id, "error", err)
		}
	}
	if err := s.provider.DeleteIdentity(ctx, id); err != nil {
		s.log.Error("failed to remove orphaned identity", "identity_id", id, "error", err)
	}
}

// Login authenticates and loads the profile. An identity without a profile
// yields common.ErrProfileMissing and its new session is revoked.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	s.log.Debug("login", "email", email)

	session, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile, err := s.userRepo.GetByID(ctx, session.UserID)
	if errors.Is(err, common.ErrNotFound) {
		s.log.Warn("identity has no profile", "identity_id", session.UserID)
		_ = s.provider.SignOut(ctx, session.AccessToken)
		return nil, common.ErrProfileMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	s.log.Info("user logged in", "user_id", profile.ID)
	return &AuthResult{User: profile, Session: session}, nil
}

// Restore recovers the profile behind an access token
func (s *AuthService) Restore(ctx context.Context, token string) (*AuthResult, error) {
	session, err := s.provider.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}

	profile, err := s.userRepo.GetByID(ctx, session.UserID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrProfileMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &AuthResult{User: profile, Session: session}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.provider.SignOut(ctx, token)
}

// CheckUserExists swallows lookup errors and reports false
func (s *AuthService) CheckUserExists(ctx context.Context, email string) bool {
	exists, err := s.provider.IdentityExists(ctx, email)
	if err != nil {
		s.log.Error("failed to check email", "error", err)
		return false
	}
	return exists
}
