package migrations

import "gorm.io/gorm"

// migration001Up creates extensions and custom types
func migration001Up(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return err
	}

	types := []string{
		`CREATE TYPE media_type AS ENUM ('image', 'video', 'audio', 'gif')`,
		`CREATE TYPE activity_type AS ENUM ('join_event', 'add_item', 'update_event', 'new_message')`,
		`CREATE TYPE item_status AS ENUM ('available', 'claimed')`,
	}

	for _, stmt := range types {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}

// migration001Down drops custom types
func migration001Down(db *gorm.DB) error {
	for _, name := range []string{"item_status", "activity_type", "media_type"} {
		if err := db.Exec("DROP TYPE IF EXISTS " + name + " CASCADE").Error; err != nil {
			return err
		}
	}

	// NOTE: the uuid extension is shared with other schemas and stays installed
	return nil
}
