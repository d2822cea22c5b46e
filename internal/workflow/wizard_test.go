package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/wisha-api/internal/auth"
	"github.com/gravadigital/wisha-api/internal/domain/activity"
	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/services"
	"github.com/gravadigital/wisha-api/internal/session"
	"github.com/gravadigital/wisha-api/internal/storage/cache"
	"github.com/gravadigital/wisha-api/internal/storage/memory"
	"github.com/gravadigital/wisha-api/internal/validation"
)

type harness struct {
	repos      *memory.Container
	auth       *services.AuthService
	events     *services.EventService
	activities *services.ActivityService
	idem       *cache.IdempotencyStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repos := memory.NewContainer()
	provider := auth.NewProvider(
		repos.Identities(),
		cache.NewSessionStore(cache.NewMemoryStore()),
		auth.NewTokenIssuer("wizard-secret", "wisha-test", time.Hour),
	)
	return &harness{
		repos:      repos,
		auth:       services.NewAuthService(provider, repos.Users()),
		events:     services.NewEventService(repos.Events()),
		activities: services.NewActivityService(repos.Activities()),
		idem:       cache.NewIdempotencyStore(cache.NewMemoryStore(), time.Hour),
	}
}

// visitor returns an anonymous session plus a wizard bound to it
func (h *harness) visitor(t *testing.T) (*Wizard, *session.Context, *session.Outcome) {
	t.Helper()
	out := session.NewOutcome()
	sess := session.New(h.auth, out, out)
	require.Equal(t, session.StateAnonymous, sess.Initialize(context.Background(), ""))
	w := New(Deps{
		Session:     sess,
		Events:      h.events,
		Activities:  h.activities,
		Idempotency: h.idem,
		Navigator:   out,
		Notifier:    out,
	})
	return w, sess, out
}

func TestWizard_NewVisitorSignsUpAndCreatesEvent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w, sess, out := h.visitor(t)

	e, err := w.SubmitDetails(ctx, Details{EventName: "Test Party", Category: "birthday"})
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.Equal(t, StepCredentials, w.Step())

	assert.False(t, w.ProbeEmail(ctx, "new@example.com"))
	existing, ok := w.Branch()
	assert.True(t, ok)
	assert.False(t, existing)

	e, err = w.SubmitCredentials(ctx, Credentials{Email: "new@example.com", FirstName: "Ann", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, e)

	current := sess.CurrentUser()
	require.NotNil(t, current)
	assert.Equal(t, "Ann", current.Name)
	assert.Equal(t, "Test Party", e.Title)
	assert.Equal(t, "birthday", e.Type)
	assert.Equal(t, current.ID, e.CreatorID)
	assert.Nil(t, e.Instructions)
	assert.Equal(t, StepDone, w.Step())
	assert.Equal(t, "/events/"+e.ID.String(), out.Redirect())

	feed := h.activities.List(ctx, services.ActivityFilter{EventID: &e.ID})
	require.Len(t, feed, 1)
	assert.Equal(t, activity.TypeJoinEvent, feed[0].Type)
	assert.Equal(t, "Ann", feed[0].UserName)
}

func TestWizard_ExistingUserLogsIn(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	owner := session.New(h.auth, nil, nil)
	registered, err := owner.Signup(ctx, "carla@example.com", "secret1", "Carla")
	require.NoError(t, err)

	w, _, out := h.visitor(t)
	_, err = w.SubmitDetails(ctx, Details{EventName: "Farewell Tom", Category: "farewell", Instructions: "Sign before Friday"})
	require.NoError(t, err)
	assert.True(t, w.ProbeEmail(ctx, "carla@example.com"))

	_, err = w.SubmitCredentials(ctx, Credentials{Email: "carla@example.com", Password: "wrong-one"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, StepCredentials, w.Step())
	assert.Equal(t, "carla@example.com", w.Credentials().Email)
	assert.Equal(t, "Farewell Tom", w.Details().EventName)
	require.NotEmpty(t, out.Notices())
	assert.Equal(t, "Login failed", out.Notices()[0].Title)

	e, err := w.SubmitCredentials(ctx, Credentials{Email: "carla@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, e.CreatorID)
	require.NotNil(t, e.Instructions)
	assert.Equal(t, "Sign before Friday", *e.Instructions)
}

func TestWizard_AuthenticatedSkipsCredentials(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w, sess, out := h.visitor(t)

	u, err := sess.Signup(ctx, "dora@example.com", "secret1", "Dora")
	require.NoError(t, err)

	e, err := w.SubmitDetails(ctx, Details{EventName: "Dora's 30th", Category: "birthday"})
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, u.ID, e.CreatorID)
	assert.Equal(t, StepDone, w.Step())
	assert.Equal(t, e.Path(), out.Redirect())
}

func TestWizard_ValidationBlocksBeforeNetwork(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w, _, _ := h.visitor(t)

	_, err := w.SubmitDetails(ctx, Details{EventName: "   ", Category: "birthday"})
	errs, ok := validation.AsErrors(err)
	require.True(t, ok)
	assert.Contains(t, errs, "eventName")
	assert.Equal(t, StepDetails, w.Step())

	_, err = w.SubmitDetails(ctx, Details{EventName: "Party", Category: "pool_party"})
	errs, ok = validation.AsErrors(err)
	require.True(t, ok)
	assert.Contains(t, errs, "category")

	_, err = w.SubmitDetails(ctx, Details{EventName: "Party", Category: "birthday"})
	require.NoError(t, err)

	h.repos.FailOn("identities.EmailExists", errors.New("must not be called"))
	_, err = w.SubmitCredentials(ctx, Credentials{Email: "not-an-email", Password: "secret1", FirstName: "Ann"})
	errs, ok = validation.AsErrors(err)
	require.True(t, ok)
	assert.Contains(t, errs, "email")
	h.repos.FailOn("identities.EmailExists", nil)

	_, err = w.SubmitCredentials(ctx, Credentials{Email: "fresh@example.com", Password: "secret1"})
	errs, ok = validation.AsErrors(err)
	require.True(t, ok)
	assert.Contains(t, errs, "firstName")

	assert.Empty(t, h.events.ListAll(ctx))
	assert.False(t, h.auth.CheckUserExists(ctx, "fresh@example.com"))
}

func TestWizard_DuplicateEmailKeepsState(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := session.New(h.auth, nil, nil).Signup(ctx, "taken@example.com", "secret1", "Tia")
	require.NoError(t, err)

	w, _, out := h.visitor(t)
	_, err = w.SubmitDetails(ctx, Details{EventName: "Party", Category: "birthday"})
	require.NoError(t, err)

	// simulate a stale probe that said the address was free
	w.mu.Lock()
	free := false
	w.exists = &free
	w.creds.Email = "taken@example.com"
	w.mu.Unlock()

	_, err = w.SubmitCredentials(ctx, Credentials{Email: "taken@example.com", Password: "secret1", FirstName: "Tia"})
	assert.ErrorIs(t, err, common.ErrEmailTaken)
	assert.Equal(t, StepCredentials, w.Step())
	assert.Equal(t, "Signup failed", out.Notices()[0].Title)
}

func TestWizard_RetryAfterEventFailureCreatesOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	w, _, out := h.visitor(t)

	_, err := w.SubmitDetails(ctx, Details{EventName: "Retry Party", Category: "birthday"})
	require.NoError(t, err)

	h.repos.FailOn("events.Create", errors.New("connection reset"))
	_, err = w.SubmitCredentials(ctx, Credentials{Email: "retry@example.com", Password: "secret1", FirstName: "Rae"})
	assert.ErrorIs(t, err, ErrEventNotCreated)
	assert.Equal(t, StepCredentials, w.Step())
	assert.NotEmpty(t, out.Notices())
	h.repos.FailOn("events.Create", nil)

	e, err := w.SubmitCredentials(ctx, Credentials{Email: "retry@example.com", Password: "secret1", FirstName: "Rae"})
	require.NoError(t, err)
	require.NotNil(t, e)

	again, err := w.SubmitCredentials(ctx, Credentials{Email: "retry@example.com", Password: "secret1", FirstName: "Rae"})
	require.NoError(t, err)
	assert.Equal(t, e.ID, again.ID)
	assert.Len(t, h.events.ListAll(ctx), 1)
}

func TestWizard_IdempotencyKeyAcrossRequests(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	first, sess, _ := h.visitor(t)
	_, err := sess.Signup(ctx, "idem@example.com", "secret1", "Ida")
	require.NoError(t, err)
	first.WithIdempotencyKey("req-123")

	e, err := first.SubmitDetails(ctx, Details{EventName: "Once", Category: "wedding"})
	require.NoError(t, err)

	second := New(Deps{Session: sess, Events: h.events, Activities: h.activities, Idempotency: h.idem}).WithIdempotencyKey("req-123")
	replayed, err := second.SubmitDetails(ctx, Details{EventName: "Once", Category: "wedding"})
	require.NoError(t, err)
	assert.Equal(t, e.ID, replayed.ID)
	assert.Len(t, h.events.ListAll(ctx), 1)

	third := New(Deps{Session: sess, Events: h.events, Activities: h.activities, Idempotency: h.idem}).WithIdempotencyKey("req-456")
	other, err := third.SubmitDetails(ctx, Details{EventName: "Once", Category: "wedding"})
	require.NoError(t, err)
	assert.NotEqual(t, e.ID, other.ID)
}

func TestWizard_RejectsReentrantSubmit(t *testing.T) {
	h := newHarness(t)
	w, _, _ := h.visitor(t)

	w.inFlight.Store(true)
	_, err := w.SubmitDetails(context.Background(), Details{EventName: "Party", Category: "birthday"})
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	w.inFlight.Store(false)
	_, err = w.SubmitCredentials(context.Background(), Credentials{Email: "a@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestCategories(t *testing.T) {
	groups := Categories()
	total := 0
	for _, list := range groups {
		total += len(list)
	}
	assert.Equal(t, 25, total)
	assert.Contains(t, groups, "Most Popular")
	assert.Contains(t, groups, "More Occasions")
}
