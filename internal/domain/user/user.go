package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/common"
)

// User is the profile of an authenticated identity
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch holds the profile fields a user may change. Nil fields are left untouched.
type Patch struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

// IsEmpty reports whether the patch carries no changes
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Avatar == nil
}

// NewUser creates a profile keyed by the identity id returned from sign-up
func NewUser(id uuid.UUID, name, email string) *User {
	now := time.Now()
	return &User{
		ID:        id,
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AsAuthor returns the denormalized author reference for this user
func (u *User) AsAuthor() common.Author {
	return common.Author{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}
