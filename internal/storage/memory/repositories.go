package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/activity"
	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/event"
	"github.com/gravadigital/wisha-api/internal/domain/identity"
	"github.com/gravadigital/wisha-api/internal/domain/item"
	"github.com/gravadigital/wisha-api/internal/domain/message"
	"github.com/gravadigital/wisha-api/internal/domain/user"
)

type identityRepo struct{ c *Container }

func (r *identityRepo) Create(_ context.Context, ident *identity.Identity) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.failure("identities.Create"); err != nil {
		return err
	}

	ident.Email = identity.NormalizeEmail(ident.Email)
	if ident.Email == "" || ident.PasswordHash == "" {
		return errors.New("email and password hash are required")
	}
	for _, existing := range r.c.data.identities {
		if existing.Email == ident.Email {
			return common.ErrEmailTaken
		}
	}
	if common.IsGuest(ident.ID) {
		ident.ID = uuid.New()
	}
	ident.CreatedAt = r.c.tick()
	r.c.data.identities[ident.ID] = *ident
	return nil
}

func (r *identityRepo) GetByID(_ context.Context, id uuid.UUID) (*identity.Identity, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	ident, ok := r.c.data.identities[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &ident, nil
}

func (r *identityRepo) GetByEmail(_ context.Context, email string) (*identity.Identity, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.failure("identities.GetByEmail"); err != nil {
		return nil, err
	}
	email = identity.NormalizeEmail(email)
	for _, ident := range r.c.data.identities {
		if ident.Email == email {
			return &ident, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *identityRepo) EmailExists(_ context.Context, email string) (bool, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.failure("identities.EmailExists"); err != nil {
		return false, err
	}
	email = identity.NormalizeEmail(email)
	for _, ident := range r.c.data.identities {
		if ident.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *identityRepo) TouchSignIn(_ context.Context, id uuid.UUID) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	ident, ok := r.c.data.identities[id]
	if !ok {
		return common.ErrNotFound
	}
	now := r.c.tick()
	ident.LastSignInAt = &now
	r.c.data.identities[id] = ident
	return nil
}

func (r *identityRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.data.identities[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.c.data.identities, id)
	return nil
}

type userRepo struct{ c *Container }

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.failure("users.Create"); err != nil {
		return err
	}

	u.Email = identity.NormalizeEmail(u.Email)
	if u.ID == uuid.Nil || u.Name == "" || u.Email == "" {
		return errors.New("id, name and email are required")
	}
	for _, existing := range r.c.data.users {
		if existing.Email == u.Email || existing.ID == u.ID {
			return common.ErrEmailTaken
		}
	}
	now := r.c.tick()
	u.CreatedAt, u.UpdatedAt = now, now
	r.c.data.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.failure("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := r.c.data.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*user.User, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	out := make(map[uuid.UUID]*user.User, len(ids))
	for _, id := range ids {
		if u, ok := r.c.data.users[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	email = identity.NormalizeEmail(email)
	for _, u := range r.c.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *userRepo) Update(_ context.Context, id uuid.UUID, patch user.Patch) (*user.User, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	u, ok := r.c.data.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, errors.New("name cannot be empty")
		}
		u.Name = *patch.Name
	}
	if patch.Avatar != nil {
		u.Avatar = optional(*patch.Avatar)
	}
	u.UpdatedAt = r.c.tick()
	r.c.data.users[id] = u
	return &u, nil
}

func (r *userRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.data.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.c.data.users, id)
	return nil
}

type eventRepo struct{ c *Container }

func (r *eventRepo) Create(_ context.Context, e *event.Event) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.failure("events.Create"); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.ParticipantCount, e.ItemCount = 0, 0
	now := r.c.tick()
	e.CreatedAt, e.UpdatedAt = now, now
	if e.Date.IsZero() {
		e.Date = now
	}
	r.c.data.events[e.ID] = *e
	return nil
}

func (r *eventRepo) GetByID(_ context.Context, id uuid.UUID) (*event.Event, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.failure("events.GetByID"); err != nil {
		return nil, err
	}
	e, ok := r.c.data.events[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &e, nil
}

func (r *eventRepo) GetAll(_ context.Context) ([]*event.Event, error) {
	return r.filter(func(event.Event) bool { return true })
}

func (r *eventRepo) GetByCreator(_ context.Context, creatorID uuid.UUID) ([]*event.Event, error) {
	return r.filter(func(e event.Event) bool { return e.CreatorID == creatorID })
}

func (r *eventRepo) filter(keep func(event.Event) bool) ([]*event.Event, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.failure("events.List"); err != nil {
		return nil, err
	}
	out := make([]*event.Event, 0)
	for _, e := range r.c.data.events {
		if keep(e) {
			e := e
			out = append(out, &e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *eventRepo) Update(_ context.Context, id uuid.UUID, patch event.Patch) (*event.Event, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	e, ok := r.c.data.events[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, errors.New("title cannot be empty")
		}
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Instructions != nil {
		e.Instructions = optional(*patch.Instructions)
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.Type != nil {
		if *patch.Type == "" {
			return nil, errors.New("type cannot be empty")
		}
		e.Type = *patch.Type
	}
	if patch.CoverImage != nil {
		e.CoverImage = optional(*patch.CoverImage)
	}
	e.UpdatedAt = r.c.tick()
	r.c.data.events[id] = e
	return &e, nil
}

func (r *eventRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.data.events[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.c.data.events, id)
	for mid, m := range r.c.data.messages {
		if m.EventID == id {
			delete(r.c.data.messages, mid)
		}
	}
	for iid, it := range r.c.data.items {
		if it.EventID == id {
			delete(r.c.data.items, iid)
		}
	}
	return nil
}

func (r *eventRepo) RefreshCounters(_ context.Context, id uuid.UUID) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.data.events[id]; !ok {
		return common.ErrNotFound
	}
	r.c.refreshCounters(id)
	return nil
}

type messageRepo struct{ c *Container }

func (r *messageRepo) Create(_ context.Context, m *message.Message) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.failure("messages.Create"); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if _, ok := r.c.data.events[m.EventID]; !ok {
		return common.ErrNotFound
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := r.c.tick()
	m.CreatedAt, m.UpdatedAt = now, now
	r.c.data.messages[m.ID] = *m
	r.c.refreshCounters(m.EventID)

	*m = r.resolve(*m)
	return nil
}

// resolve swaps the stored author snapshot for the live profile. Caller holds c.mu.
func (r *messageRepo) resolve(m message.Message) message.Message {
	if common.IsGuest(m.Author.ID) {
		m.Author = common.GuestAuthor(m.Author.Name)
		return m
	}
	if u, ok := r.c.data.users[m.Author.ID]; ok {
		m.Author = u.AsAuthor()
	}
	return m
}

func (r *messageRepo) GetByID(_ context.Context, id uuid.UUID) (*message.Message, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	m, ok := r.c.data.messages[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	m = r.resolve(m)
	return &m, nil
}

func (r *messageRepo) GetByEventID(_ context.Context, eventID uuid.UUID) ([]*message.Message, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.failure("messages.List"); err != nil {
		return nil, err
	}
	out := make([]*message.Message, 0)
	for _, m := range r.c.data.messages {
		if m.EventID == eventID {
			m = r.resolve(m)
			out = append(out, &m)
		}
	}
	message.SortNewestFirst(out)
	return out, nil
}

func (r *messageRepo) CountByEventIDs(_ context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	wanted := idSet(eventIDs)
	out := make(map[uuid.UUID]int)
	for _, m := range r.c.data.messages {
		if _, ok := wanted[m.EventID]; ok {
			out[m.EventID]++
		}
	}
	return out, nil
}

func (r *messageRepo) Update(_ context.Context, id uuid.UUID, patch message.Patch) (*message.Message, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	m, ok := r.c.data.messages[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if patch.Content != nil {
		m.Content = *patch.Content
	}
	if patch.Media != nil {
		media := *patch.Media
		m.Media = &media
	}
	m.UpdatedAt = r.c.tick()
	r.c.data.messages[id] = m
	m = r.resolve(m)
	return &m, nil
}

func (r *messageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	m, ok := r.c.data.messages[id]
	if !ok {
		return common.ErrNotFound
	}
	delete(r.c.data.messages, id)
	r.c.refreshCounters(m.EventID)
	return nil
}

type activityRepo struct{ c *Container }

func (r *activityRepo) Create(_ context.Context, a *activity.Activity) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.failure("activities.Create"); err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = r.c.tick()
	r.c.data.activities[a.ID] = *a
	return nil
}

func (r *activityRepo) GetByEventID(_ context.Context, eventID uuid.UUID) ([]*activity.Activity, error) {
	return r.filter(func(a activity.Activity) bool { return a.EventID == eventID }, 0)
}

func (r *activityRepo) GetByEventIDs(_ context.Context, eventIDs []uuid.UUID, limit int) ([]*activity.Activity, error) {
	wanted := idSet(eventIDs)
	return r.filter(func(a activity.Activity) bool {
		_, ok := wanted[a.EventID]
		return ok
	}, limit)
}

func (r *activityRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]*activity.Activity, error) {
	return r.filter(func(a activity.Activity) bool { return a.UserID == userID }, 0)
}

func (r *activityRepo) GetRecent(_ context.Context, limit int) ([]*activity.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.filter(func(activity.Activity) bool { return true }, limit)
}

func (r *activityRepo) filter(keep func(activity.Activity) bool, limit int) ([]*activity.Activity, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.failure("activities.List"); err != nil {
		return nil, err
	}
	out := make([]*activity.Activity, 0)
	for _, a := range r.c.data.activities {
		if keep(a) {
			a := a
			out = append(out, &a)
		}
	}
	activity.SortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type itemRepo struct{ c *Container }

func (r *itemRepo) Create(_ context.Context, it *item.Item) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if err := r.c.failure("items.Create"); err != nil {
		return err
	}
	if it.Status == "" {
		it.Status = item.StatusAvailable
	}
	if err := it.Validate(); err != nil {
		return err
	}
	if _, ok := r.c.data.events[it.EventID]; !ok {
		return common.ErrNotFound
	}
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	now := r.c.tick()
	it.CreatedAt, it.UpdatedAt = now, now
	r.c.data.items[it.ID] = *it
	r.c.refreshCounters(it.EventID)
	return nil
}

func (r *itemRepo) GetByID(_ context.Context, id uuid.UUID) (*item.Item, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	it, ok := r.c.data.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &it, nil
}

func (r *itemRepo) GetByEventID(_ context.Context, eventID uuid.UUID) ([]*item.Item, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	out := make([]*item.Item, 0)
	for _, it := range r.c.data.items {
		if it.EventID == eventID {
			it := it
			out = append(out, &it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *itemRepo) Update(_ context.Context, id uuid.UUID, patch item.Patch) (*item.Item, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	it, ok := r.c.data.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, errors.New("name cannot be empty")
		}
		it.Name = *patch.Name
	}
	if patch.Description != nil {
		it.Description = *patch.Description
	}
	if patch.URL != nil {
		it.URL = *patch.URL
	}
	if patch.Image != nil {
		it.Image = *patch.Image
	}
	if patch.Price != nil {
		it.Price = *patch.Price
	}
	it.UpdatedAt = r.c.tick()
	r.c.data.items[id] = it
	return &it, nil
}

func (r *itemRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	it, ok := r.c.data.items[id]
	if !ok {
		return common.ErrNotFound
	}
	delete(r.c.data.items, id)
	r.c.refreshCounters(it.EventID)
	return nil
}

// Claim checks and writes under one lock, the in-memory equivalent of the
// conditional UPDATE.
func (r *itemRepo) Claim(_ context.Context, id, userID uuid.UUID) (*item.Item, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	it, ok := r.c.data.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if !it.CanClaim() {
		return nil, common.ErrNotClaimable
	}
	claimant := userID
	it.Status = item.StatusClaimed
	it.ClaimedBy = &claimant
	it.UpdatedAt = r.c.tick()
	r.c.data.items[id] = it
	return &it, nil
}

func (r *itemRepo) Unclaim(_ context.Context, id, userID uuid.UUID) (*item.Item, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	it, ok := r.c.data.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if !it.CanUnclaim(userID) {
		return nil, common.ErrNotClaimable
	}
	it.Status = item.StatusAvailable
	it.ClaimedBy = nil
	it.UpdatedAt = r.c.tick()
	r.c.data.items[id] = it
	return &it, nil
}

func (r *itemRepo) CountByEventIDs(_ context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	wanted := idSet(eventIDs)
	out := make(map[uuid.UUID]int)
	for _, it := range r.c.data.items {
		if _, ok := wanted[it.EventID]; ok {
			out[it.EventID]++
		}
	}
	return out, nil
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
