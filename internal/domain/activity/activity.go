package activity

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Activity is a write-once feed record shown on dashboards
type Activity struct {
	ID        uuid.UUID      `json:"id"`
	Type      Type           `json:"type"`
	EventID   uuid.UUID      `json:"eventId"`
	UserID    uuid.UUID      `json:"userId"`
	UserName  string         `json:"userName"`
	Details   map[string]any `json:"details"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Type is the kind of thing that happened
type Type string

const (
	TypeJoinEvent   Type = "join_event"
	TypeAddItem     Type = "add_item"
	TypeUpdateEvent Type = "update_event"
	TypeNewMessage  Type = "new_message"
)

// IsValid reports whether t is a known activity type
func (t Type) IsValid() bool {
	switch t {
	case TypeJoinEvent, TypeAddItem, TypeUpdateEvent, TypeNewMessage:
		return true
	}
	return false
}

// New creates an activity record
func New(t Type, eventID, userID uuid.UUID, userName string, details map[string]any) *Activity {
	return &Activity{
		Type:      t,
		EventID:   eventID,
		UserID:    userID,
		UserName:  userName,
		Details:   details,
		CreatedAt: time.Now(),
	}
}

// Validate checks the activity can be stored
func (a *Activity) Validate() error {
	if !a.Type.IsValid() {
		return fmt.Errorf("invalid activity type: %s", a.Type)
	}
	if a.EventID == uuid.Nil {
		return fmt.Errorf("event_id is required")
	}
	if a.UserName == "" {
		return fmt.Errorf("user_name is required")
	}
	return nil
}

// SortNewestFirst orders a timeline, most recent first
func SortNewestFirst(items []*Activity) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
