package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/wisha-api/internal/domain/activity"
	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/event"
	"github.com/gravadigital/wisha-api/internal/domain/item"
	"github.com/gravadigital/wisha-api/internal/domain/message"
	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/storage/migrations"
)

func strPtr(s string) *string { return &s }

func TestEventRoundTrip(t *testing.T) {
	e := &event.Event{
		ID:           uuid.New(),
		Title:        "Test Party",
		Description:  "Bring snacks",
		Instructions: strPtr("Keep it secret"),
		Date:         time.Date(2026, 11, 14, 18, 0, 0, 0, time.UTC),
		Type:         "birthday",
		CreatorID:    uuid.New(),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	got := eventFromRow(eventToRow(e))
	assert.Equal(t, e, got)
}

func TestEventFromRowEmptyOptionalsBecomeNil(t *testing.T) {
	row := &migrations.Event{ID: uuid.New(), Title: "x", Type: "other", Instructions: strPtr(""), CoverImage: strPtr("")}

	got := eventFromRow(row)
	assert.Nil(t, got.Instructions)
	assert.Nil(t, got.CoverImage)
}

func TestEventPatchOnlySendsPresentFields(t *testing.T) {
	title := "Renamed"
	updates := eventPatchToUpdates(event.Patch{Title: &title})

	assert.Equal(t, "Renamed", updates["title"])
	assert.Contains(t, updates, "updated_at")
	assert.NotContains(t, updates, "description")
	assert.NotContains(t, updates, "instructions")
	assert.Len(t, updates, 2)
}

func TestEventPatchClearsInstructions(t *testing.T) {
	empty := ""
	updates := eventPatchToUpdates(event.Patch{Instructions: &empty})
	assert.Nil(t, updates["instructions"])
	assert.Contains(t, updates, "instructions")
}

func TestMessageRoundTripRegisteredAuthor(t *testing.T) {
	author := user.NewUser(uuid.New(), "Ann", "ann@example.com")
	author.Avatar = strPtr("https://cdn.example.com/ann.png")

	m := message.NewMessage(uuid.New(), "Happy birthday!", author.AsAuthor(), &message.Media{
		Type: message.MediaImage,
		URL:  "https://cdn.example.com/cake.png",
	})
	m.ID = uuid.New()

	got := messageFromRow(messageToRow(m), map[uuid.UUID]*user.User{author.ID: author})
	assert.Equal(t, m, got)
}

func TestMessageFromRowGuest(t *testing.T) {
	row := &migrations.Message{ID: uuid.New(), EventID: uuid.New(), Content: "Congrats!", AuthorID: common.GuestID, AuthorName: "Bob"}

	got := messageFromRow(row, map[uuid.UUID]*user.User{})
	assert.True(t, got.IsGuest())
	assert.Equal(t, "Bob", got.Author.Name)
	assert.Nil(t, got.Author.Avatar)
	assert.Nil(t, got.Media)
}

func TestMessageFromRowUnresolvedAuthorKeepsSnapshot(t *testing.T) {
	id := uuid.New()
	row := &migrations.Message{ID: uuid.New(), Content: "hi", AuthorID: id, AuthorName: "Former member"}

	got := messageFromRow(row, nil)
	assert.Equal(t, id, got.Author.ID)
	assert.Equal(t, "Former member", got.Author.Name)
}

func TestActivityDetailsRoundTrip(t *testing.T) {
	a := activity.New(activity.TypeAddItem, uuid.New(), uuid.New(), "Ann", map[string]any{"itemName": "Kettle"})

	row, err := activityToRow(a)
	require.NoError(t, err)

	got := activityFromRow(row)
	assert.Equal(t, "Kettle", got.Details["itemName"])
	assert.Equal(t, activity.TypeAddItem, got.Type)
}

func TestActivityWithoutDetails(t *testing.T) {
	a := activity.New(activity.TypeJoinEvent, uuid.New(), uuid.New(), "Ann", nil)

	row, err := activityToRow(a)
	require.NoError(t, err)
	assert.Empty(t, row.Details)
	assert.Nil(t, activityFromRow(row).Details)
}

func TestItemRoundTrip(t *testing.T) {
	claimant := uuid.New()
	it := item.NewItem(uuid.New(), "Kettle", "Electric", "https://shop.example.com/k", "", "30")
	it.ID = uuid.New()
	it.Status = item.StatusClaimed
	it.ClaimedBy = &claimant

	assert.Equal(t, it, itemFromRow(itemToRow(it)))
}

func TestItemFromRowDefaultsStatus(t *testing.T) {
	got := itemFromRow(&migrations.Item{ID: uuid.New(), Name: "Mug"})
	assert.Equal(t, item.StatusAvailable, got.Status)
}

func TestUUIDStringsDeduplicates(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, []string{a.String(), b.String()}, uuidStrings([]uuid.UUID{a, b, a}))
	assert.Empty(t, uuidStrings(nil))
}
