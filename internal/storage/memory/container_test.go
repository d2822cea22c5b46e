package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/event"
	"github.com/gravadigital/wisha-api/internal/domain/item"
	"github.com/gravadigital/wisha-api/internal/domain/message"
	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
)

func seedEvent(t *testing.T, c *Container) *event.Event {
	t.Helper()
	e := event.NewEvent("Test Party", "birthday", nil, uuid.New())
	require.NoError(t, c.Events().Create(context.Background(), e))
	return e
}

func TestCountersFollowMessagesAndItems(t *testing.T) {
	ctx := context.Background()
	c := NewContainer()
	e := seedEvent(t, c)

	for _, name := range []string{"Bob", "bob", "Alice"} {
		m := message.NewMessage(e.ID, "hi", common.GuestAuthor(name), nil)
		require.NoError(t, c.Messages().Create(ctx, m))
	}
	require.NoError(t, c.Items().Create(ctx, item.NewItem(e.ID, "Mug", "", "", "", "")))

	got, err := c.Events().GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ParticipantCount)
	assert.Equal(t, 1, got.ItemCount)
}

func TestMessagesResolveLiveProfile(t *testing.T) {
	ctx := context.Background()
	c := NewContainer()
	e := seedEvent(t, c)

	u := user.NewUser(uuid.New(), "Ann", "ann@example.com")
	require.NoError(t, c.Users().Create(ctx, u))

	m := message.NewMessage(e.ID, "hello", u.AsAuthor(), nil)
	require.NoError(t, c.Messages().Create(ctx, m))

	name := "Ann Lee"
	_, err := c.Users().Update(ctx, u.ID, user.Patch{Name: &name})
	require.NoError(t, err)

	msgs, err := c.Messages().GetByEventID(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Ann Lee", msgs[0].Author.Name)
}

func TestMessageForMissingEvent(t *testing.T) {
	c := NewContainer()
	m := message.NewMessage(uuid.New(), "hi", common.GuestAuthor(""), nil)
	assert.ErrorIs(t, c.Messages().Create(context.Background(), m), common.ErrNotFound)
}

func TestConcurrentClaimHasOneWinner(t *testing.T) {
	ctx := context.Background()
	c := NewContainer()
	e := seedEvent(t, c)
	it := item.NewItem(e.ID, "Kettle", "", "", "", "")
	require.NoError(t, c.Items().Create(ctx, it))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Items().Claim(ctx, it.ID, uuid.New()); err == nil {
				atomic.AddInt32(&wins, 1)
			} else {
				assert.ErrorIs(t, err, common.ErrNotClaimable)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	c := NewContainer()
	e := seedEvent(t, c)

	boom := errors.New("boom")
	err := c.Transaction(ctx, func(tx postgres.RepositoryContainer) error {
		require.NoError(t, tx.Items().Create(ctx, item.NewItem(e.ID, "Mug", "", "", "", "")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	items, err := c.Items().GetByEventID(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteEventCascades(t *testing.T) {
	ctx := context.Background()
	c := NewContainer()
	e := seedEvent(t, c)
	require.NoError(t, c.Messages().Create(ctx, message.NewMessage(e.ID, "hi", common.GuestAuthor("Bob"), nil)))

	require.NoError(t, c.Events().Delete(ctx, e.ID))

	msgs, err := c.Messages().GetByEventID(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.ErrorIs(t, c.Events().Delete(ctx, e.ID), common.ErrNotFound)
}

func TestFailOn(t *testing.T) {
	c := NewContainer()
	boom := errors.New("boom")
	c.FailOn("events.Create", boom)

	e := event.NewEvent("x", "other", nil, uuid.New())
	assert.ErrorIs(t, c.Events().Create(context.Background(), e), boom)

	c.FailOn("events.Create", nil)
	assert.NoError(t, c.Events().Create(context.Background(), e))
}

func TestHealthHonoursContext(t *testing.T) {
	c := NewContainer()
	assert.NoError(t, c.Health(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Health(ctx), context.Canceled)

	c.FailOn("health", errors.New("down"))
	assert.Error(t, c.Health(context.Background()))
}
