// Package memory is a process-local RepositoryContainer. It backs the
// "memory" storage type for local runs without PostgreSQL and the package tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/activity"
	"github.com/gravadigital/wisha-api/internal/domain/event"
	"github.com/gravadigital/wisha-api/internal/domain/identity"
	"github.com/gravadigital/wisha-api/internal/domain/item"
	"github.com/gravadigital/wisha-api/internal/domain/message"
	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
)

type state struct {
	identities map[uuid.UUID]identity.Identity
	users      map[uuid.UUID]user.User
	events     map[uuid.UUID]event.Event
	messages   map[uuid.UUID]message.Message
	activities map[uuid.UUID]activity.Activity
	items      map[uuid.UUID]item.Item
}

func newState() *state {
	return &state{
		identities: make(map[uuid.UUID]identity.Identity),
		users:      make(map[uuid.UUID]user.User),
		events:     make(map[uuid.UUID]event.Event),
		messages:   make(map[uuid.UUID]message.Message),
		activities: make(map[uuid.UUID]activity.Activity),
		items:      make(map[uuid.UUID]item.Item),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.identities {
		c.identities[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.messages {
		c.messages[k] = v
	}
	for k, v := range s.activities {
		c.activities[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	return c
}

// Container implements postgres.RepositoryContainer in memory
type Container struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *state
	now  func() time.Time
	last time.Time
	log  *log.Logger
	// failures lets tests make a named repository operation fail, e.g. "users.Create"
	failures map[string]error
}

var _ postgres.RepositoryContainer = (*Container)(nil)

func NewContainer() *Container {
	return &Container{
		data:     newState(),
		now:      time.Now,
		log:      logger.Repository("memory_container"),
		failures: make(map[string]error),
	}
}

// FailOn makes every later call of op return err until cleared with a nil err
func (c *Container) FailOn(op string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, op)
		return
	}
	c.failures[op] = err
}

func (c *Container) failure(op string) error {
	return c.failures[op]
}

// tick returns a strictly increasing timestamp so ordering by time is stable.
// Caller holds c.mu.
func (c *Container) tick() time.Time {
	t := c.now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

func (c *Container) Identities() postgres.IdentityRepository { return &identityRepo{c} }
func (c *Container) Users() postgres.UserRepository           { return &userRepo{c} }
func (c *Container) Events() postgres.EventRepository         { return &eventRepo{c} }
func (c *Container) Messages() postgres.MessageRepository     { return &messageRepo{c} }
func (c *Container) Activities() postgres.ActivityRepository  { return &activityRepo{c} }
func (c *Container) Items() postgres.ItemRepository           { return &itemRepo{c} }

// Transaction serializes fn against other transactions and restores the
// previous state if fn fails.
func (c *Container) Transaction(ctx context.Context, fn func(tx postgres.RepositoryContainer) error) error {
	c.txMu.Lock()
	defer c.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	snapshot := c.data.clone()
	c.mu.Unlock()

	if err := fn(c); err != nil {
		c.mu.Lock()
		c.data = snapshot
		c.mu.Unlock()
		c.log.Debug("memory transaction rolled back", "error", err)
		return err
	}
	return nil
}

// Health reports the "health" failure, if one is set, or ctx's error
func (c *Container) Health(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("health"); err != nil {
		return err
	}
	return ctx.Err()
}

func (c *Container) Close() error { return nil }

// refreshCounters mirrors the database trigger. Caller holds c.mu.
func (c *Container) refreshCounters(eventID uuid.UUID) {
	e, ok := c.data.events[eventID]
	if !ok {
		return
	}

	authors := make(map[string]struct{})
	for _, m := range c.data.messages {
		if m.EventID == eventID {
			authors[m.Author.ID.String()+"|"+strings.ToLower(m.Author.Name)] = struct{}{}
		}
	}
	items := 0
	for _, it := range c.data.items {
		if it.EventID == eventID {
			items++
		}
	}

	e.ParticipantCount = len(authors)
	e.ItemCount = items
	c.data.events[eventID] = e
}
