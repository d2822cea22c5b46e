package migrations

import "gorm.io/gorm"

var indexes = []struct {
	name string
	sql  string
}{
	{"idx_events_creator", "CREATE INDEX IF NOT EXISTS idx_events_creator ON events(creator_id)"},
	{"idx_events_created_at", "CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at DESC)"},
	{"idx_events_type", "CREATE INDEX IF NOT EXISTS idx_events_type ON events(type)"},

	{"idx_messages_event_created", "CREATE INDEX IF NOT EXISTS idx_messages_event_created ON messages(event_id, created_at DESC)"},
	{"idx_messages_author", "CREATE INDEX IF NOT EXISTS idx_messages_author ON messages(author_id)"},

	{"idx_activities_event_created", "CREATE INDEX IF NOT EXISTS idx_activities_event_created ON activities(event_id, created_at DESC)"},
	{"idx_activities_user", "CREATE INDEX IF NOT EXISTS idx_activities_user ON activities(user_id)"},

	{"idx_items_event", "CREATE INDEX IF NOT EXISTS idx_items_event ON items(event_id)"},
	{"idx_items_claimed_by", "CREATE INDEX IF NOT EXISTS idx_items_claimed_by ON items(claimed_by)"},
}

// migration003Up creates lookup indexes
func migration003Up(db *gorm.DB) error {
	for _, idx := range indexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return err
		}
	}
	return nil
}

// migration003Down drops lookup indexes
func migration003Down(db *gorm.DB) error {
	for _, idx := range indexes {
		if err := db.Exec("DROP INDEX IF EXISTS " + idx.name).Error; err != nil {
			return err
		}
	}
	return nil
}
