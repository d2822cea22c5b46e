package migrations

import "gorm.io/gorm"

// migration006Up inserts a demo board for local development
func migration006Up(db *gorm.DB) error {
	userSQL := `
        INSERT INTO users (id, name, email) VALUES
            ('7a1e5c2b-0d4f-4c61-9e3a-5b8f2d6c9a01', 'Wisha Demo', 'demo@wisha.app')
        ON CONFLICT (email) DO NOTHING
    `

	if err := db.Exec(userSQL).Error; err != nil {
		return err
	}

	eventSQL := `
        INSERT INTO events (id, title, description, instructions, date, type, creator_id) VALUES
            ('8b2f6d3c-1e5a-4d72-8f4b-6c9a3e7d0b12',
             'Happy Birthday, Sam!',
             'Leave a note, a photo or a voice message for Sam''s 30th.',
             'Keep it a surprise until Saturday!',
             '2026-11-14 18:00:00+00',
             'birthday',
             '7a1e5c2b-0d4f-4c61-9e3a-5b8f2d6c9a01')
        ON CONFLICT (id) DO NOTHING
    `

	if err := db.Exec(eventSQL).Error; err != nil {
		return err
	}

	messagesSQL := `
        INSERT INTO messages (event_id, content, author_id, author_name) VALUES
            ('8b2f6d3c-1e5a-4d72-8f4b-6c9a3e7d0b12', 'Thirty looks great on you!', '00000000-0000-0000-0000-000000000000', 'Jo'),
            ('8b2f6d3c-1e5a-4d72-8f4b-6c9a3e7d0b12', 'See you Saturday', '7a1e5c2b-0d4f-4c61-9e3a-5b8f2d6c9a01', 'Wisha Demo')
    `

	return db.Exec(messagesSQL).Error
}

// migration006Down removes the demo board
func migration006Down(db *gorm.DB) error {
	if err := db.Exec("DELETE FROM events WHERE id = '8b2f6d3c-1e5a-4d72-8f4b-6c9a3e7d0b12'").Error; err != nil {
		return err
	}
	return db.Exec("DELETE FROM users WHERE id = '7a1e5c2b-0d4f-4c61-9e3a-5b8f2d6c9a01'").Error
}
