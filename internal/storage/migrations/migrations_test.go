package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMigrationsOrdered(t *testing.T) {
	migrations := GetMigrations()
	require.NotEmpty(t, migrations)

	seen := make(map[string]bool)
	for i, m := range migrations {
		assert.False(t, seen[m.ID], "duplicate migration id %s", m.ID)
		seen[m.ID] = true
		assert.NotNil(t, m.Up, m.ID)
		assert.NotNil(t, m.Down, m.ID)
		if i > 0 {
			assert.Less(t, migrations[i-1].ID, m.ID)
		}
	}
}

func TestAllModelsTables(t *testing.T) {
	tables := map[string]bool{}
	for _, m := range AllModels() {
		if tn, ok := m.(interface{ TableName() string }); ok {
			tables[tn.TableName()] = true
		}
	}

	for _, name := range []string{"users", "auth_identities", "events", "messages", "activities", "items"} {
		assert.True(t, tables[name], name)
	}
}
