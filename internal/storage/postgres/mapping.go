package postgres

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/gravadigital/wisha-api/internal/domain/activity"
	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/event"
	"github.com/gravadigital/wisha-api/internal/domain/identity"
	"github.com/gravadigital/wisha-api/internal/domain/item"
	"github.com/gravadigital/wisha-api/internal/domain/message"
	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/storage/migrations"
)

// Row <-> domain reshaping. Optional columns come back as explicit nil pointers,
// never as zero-value strings standing in for "unset".

func identityToRow(i *identity.Identity) *migrations.AuthIdentity {
	return &migrations.AuthIdentity{
		ID:           i.ID,
		Email:        i.Email,
		PasswordHash: i.PasswordHash,
		CreatedAt:    i.CreatedAt,
		LastSignInAt: i.LastSignInAt,
	}
}

func identityFromRow(r *migrations.AuthIdentity) *identity.Identity {
	return &identity.Identity{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		LastSignInAt: r.LastSignInAt,
	}
}

func userToRow(u *user.User) *migrations.User {
	return &migrations.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userFromRow(r *migrations.User) *user.User {
	return &user.User{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Avatar:    nonEmpty(r.Avatar),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func userPatchToUpdates(p user.Patch) map[string]interface{} {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Avatar != nil {
		updates["avatar"] = nullable(*p.Avatar)
	}
	return updates
}

func eventToRow(e *event.Event) *migrations.Event {
	return &migrations.Event{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Instructions:     e.Instructions,
		Date:             e.Date,
		Type:             e.Type,
		ParticipantCount: e.ParticipantCount,
		ItemCount:        e.ItemCount,
		CoverImage:       e.CoverImage,
		CreatorID:        e.CreatorID,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func eventFromRow(r *migrations.Event) *event.Event {
	return &event.Event{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Instructions:     nonEmpty(r.Instructions),
		Date:             r.Date,
		Type:             r.Type,
		ParticipantCount: r.ParticipantCount,
		ItemCount:        r.ItemCount,
		CoverImage:       nonEmpty(r.CoverImage),
		CreatorID:        r.CreatorID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func eventPatchToUpdates(p event.Patch) map[string]interface{} {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if p.Title != nil {
		updates["title"] = *p.Title
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Instructions != nil {
		updates["instructions"] = nullable(*p.Instructions)
	}
	if p.Date != nil {
		updates["date"] = *p.Date
	}
	if p.Type != nil {
		updates["type"] = *p.Type
	}
	if p.CoverImage != nil {
		updates["cover_image"] = nullable(*p.CoverImage)
	}
	return updates
}

func messageToRow(m *message.Message) *migrations.Message {
	row := &migrations.Message{
		ID:         m.ID,
		EventID:    m.EventID,
		Content:    m.Content,
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Name,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Media != nil {
		mt := string(m.Media.Type)
		url := m.Media.URL
		row.MediaType = &mt
		row.MediaURL = &url
		row.ThumbnailURL = m.Media.ThumbnailURL
	}
	return row
}

// messageFromRow reshapes a row, resolving the author from authors when the
// poster had an account. Guests, and accounts that no longer resolve, keep the
// stored author_name.
func messageFromRow(r *migrations.Message, authors map[uuid.UUID]*user.User) *message.Message {
	m := &message.Message{
		ID:        r.ID,
		EventID:   r.EventID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	switch u, ok := authors[r.AuthorID]; {
	case common.IsGuest(r.AuthorID):
		m.Author = common.GuestAuthor(r.AuthorName)
	case ok:
		m.Author = u.AsAuthor()
	default:
		m.Author = common.Author{ID: r.AuthorID, Name: r.AuthorName}
	}

	if r.MediaType != nil && r.MediaURL != nil {
		m.Media = &message.Media{
			Type:         message.MediaType(*r.MediaType),
			URL:          *r.MediaURL,
			ThumbnailURL: nonEmpty(r.ThumbnailURL),
		}
	}
	return m
}

func messagePatchToUpdates(p message.Patch) map[string]interface{} {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if p.Content != nil {
		updates["content"] = *p.Content
	}
	if p.Media != nil {
		updates["media_type"] = string(p.Media.Type)
		updates["media_url"] = p.Media.URL
		updates["thumbnail_url"] = p.Media.ThumbnailURL
	}
	return updates
}

func activityToRow(a *activity.Activity) (*migrations.Activity, error) {
	row := &migrations.Activity{
		ID:        a.ID,
		Type:      string(a.Type),
		EventID:   a.EventID,
		UserID:    a.UserID,
		UserName:  a.UserName,
		CreatedAt: a.CreatedAt,
	}
	if a.Details != nil {
		raw, err := json.Marshal(a.Details)
		if err != nil {
			return nil, err
		}
		row.Details = datatypes.JSON(raw)
	}
	return row, nil
}

func activityFromRow(r *migrations.Activity) *activity.Activity {
	a := &activity.Activity{
		ID:        r.ID,
		Type:      activity.Type(r.Type),
		EventID:   r.EventID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		CreatedAt: r.CreatedAt,
	}
	if len(r.Details) > 0 && string(r.Details) != "null" {
		var details map[string]any
		if err := json.Unmarshal(r.Details, &details); err == nil {
			a.Details = details
		}
	}
	return a
}

func itemToRow(i *item.Item) *migrations.Item {
	return &migrations.Item{
		ID:          i.ID,
		EventID:     i.EventID,
		Name:        i.Name,
		Description: i.Description,
		URL:         i.URL,
		Image:       i.Image,
		Price:       i.Price,
		Status:      string(i.Status),
		ClaimedBy:   i.ClaimedBy,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func itemFromRow(r *migrations.Item) *item.Item {
	status := item.Status(r.Status)
	if status == "" {
		status = item.StatusAvailable
	}
	return &item.Item{
		ID:          r.ID,
		EventID:     r.EventID,
		Name:        r.Name,
		Description: r.Description,
		URL:         r.URL,
		Image:       r.Image,
		Price:       r.Price,
		Status:      status,
		ClaimedBy:   r.ClaimedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func itemPatchToUpdates(p item.Patch) map[string]interface{} {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.URL != nil {
		updates["url"] = *p.URL
	}
	if p.Image != nil {
		updates["image"] = *p.Image
	}
	if p.Price != nil {
		updates["price"] = *p.Price
	}
	return updates
}

// nonEmpty maps an empty optional column to nil
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

// nullable turns "" into SQL NULL for optional columns
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func uuidStrings(ids []uuid.UUID) []string {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id.String())
	}
	return out
}

// returningAll makes Updates scan the post-update row back into the model
func returningAll() clause.Returning {
	return clause.Returning{}
}
