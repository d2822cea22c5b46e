package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewEventValidate(t *testing.T) {
	creator := uuid.New()
	e := NewEvent("Test Party", "birthday", nil, creator)

	assert.NoError(t, e.Validate())
	assert.True(t, e.IsCreator(creator))
	assert.Zero(t, e.ParticipantCount)
	assert.Zero(t, e.ItemCount)

	e.Title = "  "
	assert.EqualError(t, e.Validate(), "title is required")

	e.Title = "x"
	e.CreatorID = uuid.Nil
	assert.EqualError(t, e.Validate(), "creator_id is required")
}

func TestPatchIsEmpty(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())
	title := "t"
	assert.False(t, Patch{Title: &title}.IsEmpty())
}

func TestCategories(t *testing.T) {
	all := Categories()
	assert.Len(t, all, 25)

	groups := CategoryGroups()
	assert.Len(t, groups, 2)
	assert.Equal(t, len(all), len(groups[GroupMostPopular])+len(groups[GroupMoreOccasions]))

	assert.True(t, IsKnownCategory("birthday"))
	assert.False(t, IsKnownCategory("Birthday"))

	all[0].Value = "mutated"
	assert.True(t, IsKnownCategory("birthday"))
}
