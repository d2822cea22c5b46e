// Package auth is the identity subsystem: email/password identities hashed
// with bcrypt, and revocable JWT sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/identity"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/cache"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
)

// MinPasswordLength is the shortest password accepted at sign-up
const MinPasswordLength = 6

var ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

// Session is an authenticated session handed back to clients
type Session struct {
	AccessToken string    `json:"accessToken"`
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Provider implements sign-up, sign-in and session management
type Provider struct {
	identities postgres.IdentityRepository
	sessions   *cache.SessionStore
	tokens     *TokenIssuer
	cost       int
	log        *log.Logger
}

func NewProvider(identities postgres.IdentityRepository, sessions *cache.SessionStore, tokens *TokenIssuer) *Provider {
	return &Provider{
		identities: identities,
		sessions:   sessions,
		tokens:     tokens,
		cost:       bcrypt.DefaultCost,
		log:        logger.Service("auth"),
	}
}

// SignUp creates an identity. It does not sign the caller in.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*identity.Identity, error) {
	email = identity.NormalizeEmail(email)
	p.log.Debug("signing up", "email", email)

	if email == "" {
		return nil, errors.New("email is required")
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ident := &identity.Identity{ID: uuid.New(), Email: email, PasswordHash: string(hash)}
	if err := p.identities.Create(ctx, ident); err != nil {
		return nil, err
	}

	p.log.Info("identity registered", "identity_id", ident.ID)
	return ident, nil
}

// SignIn checks credentials and opens a session
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = identity.NormalizeEmail(email)
	p.log.Debug("signing in", "email", email)

	ident, err := p.identities.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(password)); err != nil {
		p.log.Warn("password mismatch", "identity_id", ident.ID)
		return nil, common.ErrInvalidCredentials
	}

	if err := p.identities.TouchSignIn(ctx, ident.ID); err != nil {
		p.log.Warn("failed to record sign-in time", "identity_id", ident.ID, "error", err)
	}

	return p.openSession(ctx, ident)
}

func (p *Provider) openSession(ctx context.Context, ident *identity.Identity) (*Session, error) {
	token, claims, err := p.tokens.Issue(ident.ID, ident.Email)
	if err != nil {
		return nil, err
	}
	if err := p.sessions.Register(ctx, claims.ID, ident.ID, p.tokens.TTL()); err != nil {
		p.log.Error("failed to register session", "identity_id", ident.ID, "error", err)
		return nil, fmt.Errorf("failed to register session: %w", err)
	}

	p.log.Info("session opened", "identity_id", ident.ID)
	return &Session{
		AccessToken: token,
		UserID:      ident.ID,
		Email:       ident.Email,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// GetSession recovers the session behind token. Revoked and expired tokens
// yield common.ErrSessionExpired.
func (p *Provider) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, common.ErrUnauthenticated
	}

	claims, err := p.tokens.Parse(token)
	if errors.Is(err, ErrTokenExpired) {
		return nil, common.ErrSessionExpired
	}
	if err != nil {
		return nil, common.ErrUnauthenticated
	}

	userID, err := p.sessions.Lookup(ctx, claims.ID)
	if errors.Is(err, cache.ErrMiss) {
		return nil, common.ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken: token,
		UserID:      userID,
		Email:       claims.Email,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// SignOut revokes the session behind token
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.tokens.Parse(token)
	if errors.Is(err, ErrTokenExpired) {
		return nil
	}
	if err != nil {
		return common.ErrUnauthenticated
	}

	if err := p.sessions.Revoke(ctx, claims.ID); err != nil {
		p.log.Error("failed to revoke session", "error", err)
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	p.log.Info("session revoked", "subject", claims.Subject)
	return nil
}

// IdentityExists reports whether email is registered
func (p *Provider) IdentityExists(ctx context.Context, email string) (bool, error) {
	return p.identities.EmailExists(ctx, email)
}

// DeleteIdentity removes an identity, used to undo a sign-up that did not
// complete.
func (p *Provider) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	p.log.Warn("removing identity", "identity_id", id)
	return p.identities.Delete(ctx, id)
}
