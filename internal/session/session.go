// Package session holds the authentication state of one client: the signed-in
// profile, its session and whether the initial restore is still running.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/wisha-api/internal/auth"
	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/services"
)

// State of the session context
type State string

const (
	StateLoading       State = "loading"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

// LoggedOutMessage is the notice shown after a logout
const LoggedOutMessage = "You have been logged out"

// Context is the auth state shared by the workflows of one client
type Context struct {
	mu          sync.RWMutex
	auth        *services.AuthService
	nav         Navigator
	notify      Notifier
	currentUser *user.User
	session     *auth.Session
	isLoading   bool
	log         *log.Logger
}

// New returns a context in the loading state
func New(authService *services.AuthService, nav Navigator, notify Notifier) *Context {
	return &Context{
		auth:      authService,
		nav:       nav,
		notify:    notify,
		isLoading: true,
		log:       logger.Service("session"),
	}
}

// Initialize restores the session behind token. Any failure leaves the
// context anonymous.
func (c *Context) Initialize(ctx context.Context, token string) State {
	c.mu.Lock()
	c.isLoading = true
	c.mu.Unlock()

	var result *services.AuthResult
	if token != "" {
		var err error
		result, err = c.auth.Restore(ctx, token)
		if err != nil && !errors.Is(err, common.ErrUnauthenticated) && !errors.Is(err, common.ErrSessionExpired) {
			c.log.Warn("failed to restore session", "error", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.isLoading = false
	if result == nil {
		c.currentUser, c.session = nil, nil
		return StateAnonymous
	}
	c.currentUser, c.session = result.User, result.Session
	return StateAuthenticated
}

// Login authenticates and loads the profile
func (c *Context) Login(ctx context.Context, email, password string) (*user.User, error) {
	result, err := c.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.set(result)
	return result.User, nil
}

// Signup creates identity and profile, then signs the new user in
func (c *Context) Signup(ctx context.Context, email, password, name string) (*user.User, error) {
	result, err := c.auth.Signup(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	c.set(result)
	return result.User, nil
}

// Logout never fails: a revoke error becomes an error notice and the local
// state is cleared anyway.
func (c *Context) Logout(ctx context.Context) {
	c.mu.Lock()
	token := ""
	if c.session != nil {
		token = c.session.AccessToken
	}
	c.currentUser, c.session = nil, nil
	c.isLoading = false
	c.mu.Unlock()

	if token != "" {
		if err := c.auth.Logout(ctx, token); err != nil {
			c.log.Error("logout failed", "error", err)
			c.notice(Notice{Kind: NoticeError, Title: "Logout failed", Message: "Something went wrong, please try again"})
			return
		}
	}

	if c.nav != nil {
		c.nav.Navigate("/")
	}
	c.notice(Notice{Kind: NoticeSuccess, Title: LoggedOutMessage})
}

func (c *Context) CheckUserExists(ctx context.Context, email string) bool {
	return c.auth.CheckUserExists(ctx, email)
}

func (c *Context) CurrentUser() *user.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentUser
}

func (c *Context) Session() *auth.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Context) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isLoading
}

func (c *Context) IsAuthenticated() bool {
	return c.State() == StateAuthenticated
}

func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.isLoading:
		return StateLoading
	case c.currentUser != nil:
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

func (c *Context) set(result *services.AuthResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentUser, c.session = result.User, result.Session
	c.isLoading = false
}

func (c *Context) notice(n Notice) {
	if c.notify != nil {
		c.notify.Notify(n)
	}
}
