package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, s.Set(ctx, "k", "v", 0))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	now = now.Add(2 * time.Minute)

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	ok, err := s.SetNX(ctx, "k", "again", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreSetNX(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.SetNX(ctx, "k", "first", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetNX(ctx, "k", "second", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	v, _ := s.Get(ctx, "k")
	assert.Equal(t, "first", v)
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessionStore(NewMemoryStore())
	userID := uuid.New()

	require.NoError(t, sessions.Register(ctx, "jti-1", userID, time.Hour))

	got, err := sessions.Lookup(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	require.NoError(t, sessions.Revoke(ctx, "jti-1"))
	_, err = sessions.Lookup(ctx, "jti-1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestPreferenceStoreMerges(t *testing.T) {
	ctx := context.Background()
	prefs := NewPreferenceStore(NewMemoryStore())
	eventID := uuid.New()

	empty, err := prefs.Get(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, Preferences{}, empty)

	_, err = prefs.Save(ctx, eventID, Preferences{Font: "serif", BackgroundColor: "#fff"})
	require.NoError(t, err)

	got, err := prefs.Save(ctx, eventID, Preferences{BackgroundColor: "#000"})
	require.NoError(t, err)
	assert.Equal(t, Preferences{Font: "serif", BackgroundColor: "#000"}, got)

	assert.Equal(t, "wisha:prefs:"+eventID.String(), PreferencesKey(eventID))
}

func TestIdempotencyStoreFirstWriterWins(t *testing.T) {
	ctx := context.Background()
	idem := NewIdempotencyStore(NewMemoryStore(), time.Hour)

	_, found, err := idem.Lookup(ctx, "key")
	require.NoError(t, err)
	assert.False(t, found)

	v, err := idem.Remember(ctx, "key", "event-1")
	require.NoError(t, err)
	assert.Equal(t, "event-1", v)

	v, err = idem.Remember(ctx, "key", "event-2")
	require.NoError(t, err)
	assert.Equal(t, "event-1", v)
}
