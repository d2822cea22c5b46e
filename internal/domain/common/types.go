package common

import (
	"errors"

	"github.com/google/uuid"
)

// Errors shared by repositories, services and handlers
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrProfileMissing     = errors.New("user profile not found")
	ErrNotClaimable       = errors.New("item cannot be claimed or released by this user")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrSessionExpired     = errors.New("session expired")
)

// GuestID is the reserved author id for messages posted without an account.
// No identity is ever created with this id.
var GuestID = uuid.Nil

// GuestName is used when a guest leaves the name field empty
const GuestName = "Guest"

// IsGuest reports whether id is the reserved guest sentinel
func IsGuest(id uuid.UUID) bool {
	return id == GuestID
}

// Author is the denormalized author reference embedded in messages
type Author struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Avatar *string   `json:"avatar"`
}

// GuestAuthor builds the author reference for an anonymous poster
func GuestAuthor(name string) Author {
	if name == "" {
		name = GuestName
	}
	return Author{ID: GuestID, Name: name}
}
