package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStore registers issued token ids so they can be revoked before expiry
type SessionStore struct {
	store Store
}

func NewSessionStore(store Store) *SessionStore {
	return &SessionStore{store: store}
}

// Register records jti as a live session of userID until ttl elapses
func (s *SessionStore) Register(ctx context.Context, jti string, userID uuid.UUID, ttl time.Duration) error {
	return s.store.Set(ctx, sessionPrefix+jti, userID.String(), ttl)
}

// Lookup returns the user a live jti belongs to, or ErrMiss once revoked or expired
func (s *SessionStore) Lookup(ctx context.Context, jti string) (uuid.UUID, error) {
	v, err := s.store.Get(ctx, sessionPrefix+jti)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt session entry: %w", err)
	}
	return id, nil
}

func (s *SessionStore) Revoke(ctx context.Context, jti string) error {
	return s.store.Delete(ctx, sessionPrefix+jti)
}

// Preferences are the per-event display settings of the board page
type Preferences struct {
	Font            string `json:"font"`
	BackgroundColor string `json:"background_color"`
	BackgroundImage string `json:"background_image"`
}

const (
	prefFont            = "font"
	prefBackgroundColor = "background_color"
	prefBackgroundImage = "background_image"
)

// PreferenceStore keeps Preferences in a hash under wisha:prefs:<eventId>
type PreferenceStore struct {
	store Store
}

func NewPreferenceStore(store Store) *PreferenceStore {
	return &PreferenceStore{store: store}
}

func (p *PreferenceStore) Get(ctx context.Context, eventID uuid.UUID) (Preferences, error) {
	fields, err := p.store.HGetAll(ctx, PreferencesKey(eventID))
	if err != nil {
		return Preferences{}, err
	}
	return Preferences{
		Font:            fields[prefFont],
		BackgroundColor: fields[prefBackgroundColor],
		BackgroundImage: fields[prefBackgroundImage],
	}, nil
}

// Save merges the non-empty fields of prefs into what is stored and returns the result
func (p *PreferenceStore) Save(ctx context.Context, eventID uuid.UUID, prefs Preferences) (Preferences, error) {
	fields := make(map[string]string, 3)
	if prefs.Font != "" {
		fields[prefFont] = prefs.Font
	}
	if prefs.BackgroundColor != "" {
		fields[prefBackgroundColor] = prefs.BackgroundColor
	}
	if prefs.BackgroundImage != "" {
		fields[prefBackgroundImage] = prefs.BackgroundImage
	}
	if err := p.store.HSet(ctx, PreferencesKey(eventID), fields); err != nil {
		return Preferences{}, err
	}
	return p.Get(ctx, eventID)
}

func PreferencesKey(eventID uuid.UUID) string {
	return prefsPrefix + eventID.String()
}

// IdempotencyStore maps client supplied keys to the id of the resource the
// first request created.
type IdempotencyStore struct {
	store Store
	ttl   time.Duration
}

func NewIdempotencyStore(store Store, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{store: store, ttl: ttl}
}

// Lookup returns the resource id recorded for key
func (i *IdempotencyStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	v, err := i.store.Get(ctx, idempotencyPrefix+key)
	if errors.Is(err, ErrMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Remember records resourceID for key unless a value is already there, and
// returns whichever value wins.
func (i *IdempotencyStore) Remember(ctx context.Context, key, resourceID string) (string, error) {
	ok, err := i.store.SetNX(ctx, idempotencyPrefix+key, resourceID, i.ttl)
	if err != nil {
		return "", err
	}
	if ok {
		return resourceID, nil
	}
	existing, _, err := i.Lookup(ctx, key)
	if err != nil {
		return "", err
	}
	if existing == "" {
		return resourceID, nil
	}
	return existing, nil
}
