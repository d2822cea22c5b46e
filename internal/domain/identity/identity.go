package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identity is an email/password credential held by the auth subsystem.
// The user profile shares its ID.
type Identity struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastSignInAt *time.Time
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
