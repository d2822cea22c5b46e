package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/message"
	"github.com/gravadigital/wisha-api/internal/domain/user"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/migrations"
)

// PostgresMessageRepository implements MessageRepository using GORM
type PostgresMessageRepository struct {
	db    *gorm.DB
	log   *log.Logger
	users UserRepository
}

// NewPostgresMessageRepository creates a new PostgreSQL message repository
func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{
		db:    db,
		log:   logger.Repository("message"),
		users: NewPostgresUserRepository(db),
	}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	r.log.Debug("creating message", "event_id", m.EventID, "author_id", m.Author.ID, "has_media", m.Media != nil)

	if err := m.Validate(); err != nil {
		r.log.Error("message validation failed", "error", err)
		return fmt.Errorf("message validation failed: %w", err)
	}

	row := messageToRow(m)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return common.ErrNotFound
		}
		r.log.Error("failed to create message", "event_id", m.EventID, "error", err)
		return fmt.Errorf("failed to create message: %w", err)
	}

	authors, err := r.authorsFor(ctx, []migrations.Message{*row})
	if err != nil {
		return err
	}
	*m = *messageFromRow(row, authors)

	r.log.Info("message created successfully", "message_id", m.ID, "event_id", m.EventID)
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	r.log.Debug("retrieving message by ID", "message_id", id)

	var row migrations.Message
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		r.log.Error("failed to get message by ID", "message_id", id, "error", err)
		return nil, fmt.Errorf("failed to get message by ID: %w", err)
	}

	authors, err := r.authorsFor(ctx, []migrations.Message{row})
	if err != nil {
		return nil, err
	}
	return messageFromRow(&row, authors), nil
}

// GetByEventID returns the board newest first. Authors are resolved with one
// extra query no matter how many messages there are.
func (r *PostgresMessageRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]*message.Message, error) {
	r.log.Debug("retrieving messages for event", "event_id", eventID)

	var rows []migrations.Message
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		r.log.Error("failed to get messages by event", "event_id", eventID, "error", err)
		return nil, fmt.Errorf("failed to get messages by event: %w", err)
	}

	authors, err := r.authorsFor(ctx, rows)
	if err != nil {
		return nil, err
	}

	out := make([]*message.Message, 0, len(rows))
	for i := range rows {
		out = append(out, messageFromRow(&rows[i], authors))
	}

	r.log.Debug("retrieved messages for event", "event_id", eventID, "count", len(out))
	return out, nil
}

// CountByEventIDs returns message totals keyed by event. Events without
// messages are absent.
func (r *PostgresMessageRepository) CountByEventIDs(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return countByEvent(ctx, r.db, &migrations.Message{}, eventIDs)
}

func (r *PostgresMessageRepository) Update(ctx context.Context, id uuid.UUID, patch message.Patch) (*message.Message, error) {
	r.log.Debug("updating message", "message_id", id)

	if patch.Media != nil && !patch.Media.Type.IsValid() {
		return nil, fmt.Errorf("invalid media type: %s", patch.Media.Type)
	}

	var row migrations.Message
	res := r.db.WithContext(ctx).Model(&row).
		Clauses(returningAll()).
		Where("id = ?", id).
		Updates(messagePatchToUpdates(patch))
	if res.Error != nil {
		r.log.Error("failed to update message", "message_id", id, "error", res.Error)
		return nil, fmt.Errorf("failed to update message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, common.ErrNotFound
	}

	authors, err := r.authorsFor(ctx, []migrations.Message{row})
	if err != nil {
		return nil, err
	}

	r.log.Info("message updated successfully", "message_id", id)
	return messageFromRow(&row, authors), nil
}

func (r *PostgresMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.log.Debug("deleting message", "message_id", id)

	res := r.db.WithContext(ctx).Delete(&migrations.Message{}, "id = ?", id)
	if res.Error != nil {
		r.log.Error("failed to delete message", "message_id", id, "error", res.Error)
		return fmt.Errorf("failed to delete message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}

	r.log.Info("message deleted successfully", "message_id", id)
	return nil
}

// authorsFor loads the profiles of every registered author in rows
func (r *PostgresMessageRepository) authorsFor(ctx context.Context, rows []migrations.Message) (map[uuid.UUID]*user.User, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		if !common.IsGuest(rows[i].AuthorID) {
			ids = append(ids, rows[i].AuthorID)
		}
	}

	authors, err := r.users.GetByIDs(ctx, ids)
	if err != nil {
		r.log.Error("failed to resolve message authors", "error", err)
		return nil, fmt.Errorf("failed to resolve message authors: %w", err)
	}
	return authors, nil
}

type eventCount struct {
	EventID uuid.UUID
	Total   int
}

func countByEvent(ctx context.Context, db *gorm.DB, model interface{}, eventIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(eventIDs))
	keys := uuidStrings(eventIDs)
	if len(keys) == 0 {
		return out, nil
	}

	var counts []eventCount
	if err := db.WithContext(ctx).Model(model).
		Select("event_id, COUNT(*) AS total").
		Where("event_id = ANY(?)", pq.Array(keys)).
		Group("event_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count rows by event: %w", err)
	}

	for _, c := range counts {
		out[c.EventID] = c.Total
	}
	return out, nil
}
