package migrations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Row models mirror the remote schema (snake_case columns, foreign-key ids).
// The application never hands these to callers; storage/postgres reshapes them
// into the domain types.

// AuthIdentity is an email/password identity owned by the auth subsystem
type AuthIdentity struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Email        string     `gorm:"uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	LastSignInAt *time.Time `gorm:"column:last_sign_in_at"`
}

func (AuthIdentity) TableName() string {
	return "auth_identities"
}

// User is the profile row keyed by the identity id
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Avatar    *string
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	// Relations
	Events []Event `gorm:"foreignKey:CreatorID"`
}

func (User) TableName() string {
	return "users"
}

// Event is a memory board
type Event struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Title            string    `gorm:"not null"`
	Description      string    `gorm:"type:text;not null;default:''"`
	Instructions     *string   `gorm:"type:text"`
	Date             time.Time `gorm:"not null"`
	Type             string    `gorm:"size:64;not null"`
	ParticipantCount int       `gorm:"not null;default:0"`
	ItemCount        int       `gorm:"not null;default:0"`
	CoverImage       *string
	CreatorID        uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`

	// Relations
	Messages []Message `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Items    []Item    `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

func (Event) TableName() string {
	return "events"
}

// Message is a board post. author_name keeps the guest's typed name, or a
// snapshot of the profile name for registered authors.
type Message struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	EventID      uuid.UUID `gorm:"type:uuid;not null"`
	Content      string    `gorm:"type:text;not null;default:''"`
	AuthorID     uuid.UUID `gorm:"type:uuid;not null"`
	AuthorName   string    `gorm:"not null"`
	MediaType    *string   `gorm:"type:media_type"`
	MediaURL     *string   `gorm:"column:media_url"`
	ThumbnailURL *string   `gorm:"column:thumbnail_url"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Message) TableName() string {
	return "messages"
}

// Activity is a write-once feed record
type Activity struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Type      string         `gorm:"type:activity_type;not null"`
	EventID   uuid.UUID      `gorm:"type:uuid;not null"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null"`
	UserName  string         `gorm:"not null"`
	Details   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (Activity) TableName() string {
	return "activities"
}

// Item is a wishlist entry
type Item struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	EventID     uuid.UUID  `gorm:"type:uuid;not null"`
	Name        string     `gorm:"not null"`
	Description string     `gorm:"type:text;not null;default:''"`
	URL         string     `gorm:"column:url;not null;default:''"`
	Image       string     `gorm:"not null;default:''"`
	Price       string     `gorm:"size:32;not null;default:''"`
	Status      string     `gorm:"type:item_status;not null;default:'available'"`
	ClaimedBy   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (Item) TableName() string {
	return "items"
}

// AllModels returns a slice of all models for migration
func AllModels() []any {
	return []any{
		&AuthIdentity{},
		&User{},
		&Event{},
		&Message{},
		&Activity{},
		&Item{},
	}
}
