// Package cache is the key/value store behind sessions, per-event UI
// preferences and idempotency keys. Redis in production, memory otherwise.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when a key is absent or expired
var ErrMiss = errors.New("cache miss")

// Store is the small set of primitives the rest of the service builds on
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX stores value only when key is absent and reports whether it did
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	sessionPrefix     = "wisha:session:"
	prefsPrefix       = "wisha:prefs:"
	idempotencyPrefix = "wisha:idem:"
)
