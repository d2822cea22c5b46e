package item

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item is a wishlist entry guests can claim
type Item struct {
	ID          uuid.UUID  `json:"id"`
	EventID     uuid.UUID  `json:"eventId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Image       string     `json:"image"`
	Price       string     `json:"price"`
	Status      Status     `json:"status"`
	ClaimedBy   *uuid.UUID `json:"claimedBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Patch carries a sparse item update. Status changes go through claim/unclaim only.
type Patch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	Image       *string `json:"image"`
	Price       *string `json:"price"`
}

// IsEmpty reports whether the patch carries no changes
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.URL == nil && p.Image == nil && p.Price == nil
}

// Status of a wishlist item
type Status string

const (
	StatusAvailable Status = "available"
	StatusClaimed   Status = "claimed"
)

// NewItem creates an available item for eventID
func NewItem(eventID uuid.UUID, name, description, url, image, price string) *Item {
	now := time.Now()
	return &Item{
		EventID:     eventID,
		Name:        name,
		Description: description,
		URL:         url,
		Image:       image,
		Price:       price,
		Status:      StatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks the item can be stored
func (i *Item) Validate() error {
	if i.EventID == uuid.Nil {
		return fmt.Errorf("event_id is required")
	}
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if i.Status != StatusAvailable && i.Status != StatusClaimed {
		return fmt.Errorf("invalid status: %s", i.Status)
	}
	return nil
}

// CanClaim reports whether the item is open for claiming
func (i *Item) CanClaim() bool {
	return i.Status == StatusAvailable
}

// CanUnclaim reports whether userID holds the claim
func (i *Item) CanUnclaim(userID uuid.UUID) bool {
	return i.Status == StatusClaimed && i.ClaimedBy != nil && *i.ClaimedBy == userID
}
