package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is a memory board that guests post messages to
type Event struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Instructions     *string   `json:"instructions"`
	Date             time.Time `json:"date"`
	Type             string    `json:"type"`
	ParticipantCount int       `json:"participantCount"`
	ItemCount        int       `json:"itemCount"`
	CoverImage       *string   `json:"coverImage"`
	CreatorID        uuid.UUID `json:"creatorId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Patch carries a sparse event update. Nil fields are not sent to the store.
type Patch struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Instructions *string    `json:"instructions"`
	Date         *time.Time `json:"date"`
	Type         *string    `json:"type"`
	CoverImage   *string    `json:"coverImage"`
}

// IsEmpty reports whether the patch carries no changes
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Instructions == nil &&
		p.Date == nil && p.Type == nil && p.CoverImage == nil
}

// NewEvent creates a new event owned by creatorID. Counters start at zero and are
// maintained by the store.
func NewEvent(title, eventType string, instructions *string, creatorID uuid.UUID) *Event {
	now := time.Now()
	return &Event{
		Title:        title,
		Type:         eventType,
		Instructions: instructions,
		Date:         now,
		CreatorID:    creatorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsCreator checks if the given user ID owns this event
func (e *Event) IsCreator(userID uuid.UUID) bool {
	return e.CreatorID == userID
}

// Validate checks if the event data is valid
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(e.Type) == "" {
		return fmt.Errorf("type is required")
	}
	if e.CreatorID == uuid.Nil {
		return fmt.Errorf("creator_id is required")
	}
	return nil
}

// Path returns the client route of the event page
func (e *Event) Path() string {
	return "/events/" + e.ID.String()
}
