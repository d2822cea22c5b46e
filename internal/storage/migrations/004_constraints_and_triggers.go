package migrations

import "gorm.io/gorm"

// migration004Up adds integrity constraints the GORM tags cannot express
func migration004Up(db *gorm.DB) error {
	statements := []string{
		// uuid.Nil is the reserved guest author id
		`ALTER TABLE auth_identities ADD CONSTRAINT chk_identity_not_guest
            CHECK (id <> '00000000-0000-0000-0000-000000000000')`,
		`ALTER TABLE users ADD CONSTRAINT chk_user_not_guest
            CHECK (id <> '00000000-0000-0000-0000-000000000000')`,

		`ALTER TABLE messages ADD CONSTRAINT chk_message_has_body
            CHECK (length(btrim(content)) > 0 OR media_url IS NOT NULL)`,
		`ALTER TABLE messages ADD CONSTRAINT chk_message_media_pair
            CHECK ((media_type IS NULL) = (media_url IS NULL))`,

		`ALTER TABLE items ADD CONSTRAINT chk_item_claim_consistent
            CHECK ((status = 'claimed') = (claimed_by IS NOT NULL))`,

		`ALTER TABLE activities ADD CONSTRAINT fk_activities_event
            FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE`,

		`CREATE OR REPLACE FUNCTION touch_updated_at()
        RETURNS TRIGGER AS $$
        BEGIN
            NEW.updated_at = CURRENT_TIMESTAMP;
            RETURN NEW;
        END;
        $$ LANGUAGE plpgsql`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	for _, table := range []string{"users", "events", "messages", "items"} {
		if err := db.Exec(`CREATE TRIGGER trg_` + table + `_touch
            BEFORE UPDATE ON ` + table + `
            FOR EACH ROW EXECUTE FUNCTION touch_updated_at()`).Error; err != nil {
			return err
		}
	}

	return nil
}

// migration004Down removes the constraints and triggers
func migration004Down(db *gorm.DB) error {
	for _, table := range []string{"users", "events", "messages", "items"} {
		if err := db.Exec("DROP TRIGGER IF EXISTS trg_" + table + "_touch ON " + table).Error; err != nil {
			return err
		}
	}

	statements := []string{
		"DROP FUNCTION IF EXISTS touch_updated_at()",
		"ALTER TABLE activities DROP CONSTRAINT IF EXISTS fk_activities_event",
		"ALTER TABLE items DROP CONSTRAINT IF EXISTS chk_item_claim_consistent",
		"ALTER TABLE messages DROP CONSTRAINT IF EXISTS chk_message_media_pair",
		"ALTER TABLE messages DROP CONSTRAINT IF EXISTS chk_message_has_body",
		"ALTER TABLE users DROP CONSTRAINT IF EXISTS chk_user_not_guest",
		"ALTER TABLE auth_identities DROP CONSTRAINT IF EXISTS chk_identity_not_guest",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
