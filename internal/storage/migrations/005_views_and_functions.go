package migrations

import "gorm.io/gorm"

// migration005Up keeps events.participant_count and events.item_count in sync
// with the rows they summarize. Counts are recomputed inside the writing
// transaction rather than incremented, so concurrent writers cannot lose updates.
func migration005Up(db *gorm.DB) error {
	statements := []string{
		`CREATE OR REPLACE FUNCTION refresh_event_counters(target UUID)
        RETURNS VOID AS $$
        BEGIN
            UPDATE events SET
                participant_count = (
                    SELECT COUNT(DISTINCT (author_id, lower(author_name)))
                    FROM messages WHERE event_id = target
                ),
                item_count = (
                    SELECT COUNT(*) FROM items WHERE event_id = target
                )
            WHERE id = target;
        END;
        $$ LANGUAGE plpgsql`,

		`CREATE OR REPLACE FUNCTION refresh_event_counters_trigger()
        RETURNS TRIGGER AS $$
        BEGIN
            IF TG_OP = 'DELETE' THEN
                PERFORM refresh_event_counters(OLD.event_id);
                RETURN OLD;
            END IF;
            PERFORM refresh_event_counters(NEW.event_id);
            RETURN NEW;
        END;
        $$ LANGUAGE plpgsql`,

		`CREATE TRIGGER trg_messages_counters
            AFTER INSERT OR DELETE ON messages
            FOR EACH ROW EXECUTE FUNCTION refresh_event_counters_trigger()`,

		`CREATE TRIGGER trg_items_counters
            AFTER INSERT OR DELETE ON items
            FOR EACH ROW EXECUTE FUNCTION refresh_event_counters_trigger()`,

		`CREATE OR REPLACE VIEW event_message_stats AS
        SELECT
            e.id AS event_id,
            COUNT(m.id) AS message_count,
            COUNT(m.media_url) AS media_count,
            MAX(m.created_at) AS last_message_at
        FROM events e
        LEFT JOIN messages m ON m.event_id = e.id
        GROUP BY e.id`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}

// migration005Down drops the counter triggers, functions and views
func migration005Down(db *gorm.DB) error {
	statements := []string{
		"DROP VIEW IF EXISTS event_message_stats",
		"DROP TRIGGER IF EXISTS trg_items_counters ON items",
		"DROP TRIGGER IF EXISTS trg_messages_counters ON messages",
		"DROP FUNCTION IF EXISTS refresh_event_counters_trigger()",
		"DROP FUNCTION IF EXISTS refresh_event_counters(UUID)",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
