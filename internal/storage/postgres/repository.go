package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/activity"
	"github.com/gravadigital/wisha-api/internal/domain/event"
	"github.com/gravadigital/wisha-api/internal/domain/identity"
	"github.com/gravadigital/wisha-api/internal/domain/item"
	"github.com/gravadigital/wisha-api/internal/domain/message"
	"github.com/gravadigital/wisha-api/internal/domain/user"
)

// IdentityRepository stores email/password identities for the auth subsystem.
type IdentityRepository interface {
	Create(ctx context.Context, ident *identity.Identity) error
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Identity, error)
	GetByEmail(ctx context.Context, email string) (*identity.Identity, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	TouchSignIn(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository define los métodos para interactuar con los usuarios en la DB.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, id uuid.UUID, patch user.Patch) (*user.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventRepository define los metodos para interactuar con los eventos en la DB.
type EventRepository interface {
	Create(ctx context.Context, e *event.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*event.Event, error)
	GetAll(ctx context.Context) ([]*event.Event, error)
	GetByCreator(ctx context.Context, creatorID uuid.UUID) ([]*event.Event, error)
	Update(ctx context.Context, id uuid.UUID, patch event.Patch) (*event.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RefreshCounters(ctx context.Context, id uuid.UUID) error
}

// MessageRepository stores board posts. Reads resolve authors in one batch.
type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID) ([]*message.Message, error)
	CountByEventIDs(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error)
	Update(ctx context.Context, id uuid.UUID, patch message.Patch) (*message.Message, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActivityRepository stores write-once feed records
type ActivityRepository interface {
	Create(ctx context.Context, a *activity.Activity) error
	GetByEventID(ctx context.Context, eventID uuid.UUID) ([]*activity.Activity, error)
	GetByEventIDs(ctx context.Context, eventIDs []uuid.UUID, limit int) ([]*activity.Activity, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*activity.Activity, error)
	GetRecent(ctx context.Context, limit int) ([]*activity.Activity, error)
}

// ItemRepository stores wishlist items. Claim and Unclaim are conditional
// updates and return common.ErrNotClaimable when the precondition fails.
type ItemRepository interface {
	Create(ctx context.Context, it *item.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*item.Item, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID) ([]*item.Item, error)
	Update(ctx context.Context, id uuid.UUID, patch item.Patch) (*item.Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Claim(ctx context.Context, id, userID uuid.UUID) (*item.Item, error)
	Unclaim(ctx context.Context, id, userID uuid.UUID) (*item.Item, error)
	CountByEventIDs(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

// RepositoryContainer gives access to every repository over one connection
type RepositoryContainer interface {
	Identities() IdentityRepository
	Users() UserRepository
	Events() EventRepository
	Messages() MessageRepository
	Activities() ActivityRepository
	Items() ItemRepository
	Transaction(ctx context.Context, fn func(tx RepositoryContainer) error) error
	Health(ctx context.Context) error
	Close() error
}
