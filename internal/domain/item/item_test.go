package item

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestClaimRules(t *testing.T) {
	it := NewItem(uuid.New(), "Espresso machine", "", "", "", "199.00")
	assert.NoError(t, it.Validate())
	assert.True(t, it.CanClaim())

	alice, bob := uuid.New(), uuid.New()
	it.Status = StatusClaimed
	it.ClaimedBy = &alice

	assert.False(t, it.CanClaim())
	assert.True(t, it.CanUnclaim(alice))
	assert.False(t, it.CanUnclaim(bob))
}

func TestValidate(t *testing.T) {
	it := NewItem(uuid.New(), "", "", "", "", "")
	assert.EqualError(t, it.Validate(), "name is required")

	it.Name = "Book"
	it.Status = "lost"
	assert.Error(t, it.Validate())
}
