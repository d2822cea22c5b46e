package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/wisha-api/internal/auth"
	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/services"
	"github.com/gravadigital/wisha-api/internal/storage/cache"
	"github.com/gravadigital/wisha-api/internal/storage/memory"
)

func newAuthService(t *testing.T) (*services.AuthService, *memory.Container) {
	t.Helper()
	repos := memory.NewContainer()
	provider := auth.NewProvider(
		repos.Identities(),
		cache.NewSessionStore(cache.NewMemoryStore()),
		auth.NewTokenIssuer("session-secret", "wisha-test", time.Hour),
	)
	return services.NewAuthService(provider, repos.Users()), repos
}

func TestContext_StartsLoading(t *testing.T) {
	authService, _ := newAuthService(t)
	c := New(authService, nil, nil)

	assert.True(t, c.IsLoading())
	assert.Equal(t, StateLoading, c.State())
}

func TestContext_InitializeWithoutTokenIsAnonymous(t *testing.T) {
	authService, _ := newAuthService(t)
	c := New(authService, nil, nil)

	assert.Equal(t, StateAnonymous, c.Initialize(context.Background(), ""))
	assert.False(t, c.IsLoading())
	assert.Nil(t, c.CurrentUser())

	assert.Equal(t, StateAnonymous, c.Initialize(context.Background(), "not-a-token"))
}

func TestContext_SignupThenRestore(t *testing.T) {
	authService, _ := newAuthService(t)
	ctx := context.Background()

	first := New(authService, nil, nil)
	u, err := first.Signup(ctx, "new@example.com", "secret1", "Ann")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
	assert.True(t, first.IsAuthenticated())
	require.NotNil(t, first.Session())
	assert.Equal(t, u.ID, first.Session().UserID)

	second := New(authService, nil, nil)
	state := second.Initialize(ctx, first.Session().AccessToken)
	assert.Equal(t, StateAuthenticated, state)
	assert.Equal(t, u.ID, second.CurrentUser().ID)
}

func TestContext_LoginErrors(t *testing.T) {
	authService, repos := newAuthService(t)
	ctx := context.Background()
	c := New(authService, nil, nil)

	_, err := c.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.False(t, c.IsAuthenticated())

	u, err := New(authService, nil, nil).Signup(ctx, "ann@example.com", "secret1", "Ann")
	require.NoError(t, err)
	require.NoError(t, repos.Users().Delete(ctx, u.ID))

	_, err = c.Login(ctx, "ann@example.com", "secret1")
	assert.ErrorIs(t, err, common.ErrProfileMissing)
	assert.Nil(t, c.CurrentUser())
}

func TestContext_LogoutNavigatesAndNotifies(t *testing.T) {
	authService, _ := newAuthService(t)
	ctx := context.Background()
	out := NewOutcome()
	c := New(authService, out, out)

	_, err := c.Signup(ctx, "bye@example.com", "secret1", "Bea")
	require.NoError(t, err)
	token := c.Session().AccessToken

	c.Logout(ctx)

	assert.Equal(t, StateAnonymous, c.State())
	assert.Equal(t, "/", out.Redirect())
	require.Len(t, out.Notices(), 1)
	assert.Equal(t, LoggedOutMessage, out.Notices()[0].Title)

	assert.Equal(t, StateAnonymous, New(authService, nil, nil).Initialize(ctx, token), "revoked token must not restore")
}

func TestContext_LogoutWhenAnonymous(t *testing.T) {
	authService, _ := newAuthService(t)
	out := NewOutcome()
	c := New(authService, out, out)

	c.Logout(context.Background())

	assert.Equal(t, "/", out.Redirect())
	assert.Equal(t, NoticeSuccess, out.Notices()[0].Kind)
}

func TestContext_CheckUserExists(t *testing.T) {
	authService, repos := newAuthService(t)
	ctx := context.Background()
	c := New(authService, nil, nil)

	assert.False(t, c.CheckUserExists(ctx, "ann@example.com"))
	_, err := c.Signup(ctx, "ann@example.com", "secret1", "Ann")
	require.NoError(t, err)
	assert.True(t, c.CheckUserExists(ctx, "ann@example.com"))

	repos.FailOn("identities.EmailExists", assert.AnError)
	assert.False(t, c.CheckUserExists(ctx, "ann@example.com"))
}
