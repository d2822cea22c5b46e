package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/event"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/migrations"
)

// PostgresEventRepository implements EventRepository using GORM
type PostgresEventRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresEventRepository creates a new PostgreSQL event repository
func NewPostgresEventRepository(db *gorm.DB) *PostgresEventRepository {
	return &PostgresEventRepository{
		db:  db,
		log: logger.Repository("event"),
	}
}

// Create inserts the event. Counters are always stored as zero; the
// database keeps them current from then on.
func (r *PostgresEventRepository) Create(ctx context.Context, e *event.Event) error {
	r.log.Debug("creating event", "title", e.Title, "type", e.Type, "creator_id", e.CreatorID)

	if err := e.Validate(); err != nil {
		r.log.Error("event validation failed", "error", err)
		return fmt.Errorf("event validation failed: %w", err)
	}

	row := eventToRow(e)
	row.ParticipantCount = 0
	row.ItemCount = 0

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		r.log.Error("failed to create event", "title", e.Title, "error", err)
		return fmt.Errorf("failed to create event: %w", err)
	}

	*e = *eventFromRow(row)
	r.log.Info("event created successfully", "event_id", e.ID, "title", e.Title)
	return nil
}

func (r *PostgresEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	r.log.Debug("retrieving event by ID", "event_id", id)

	var row migrations.Event
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("event not found", "event_id", id)
			return nil, common.ErrNotFound
		}
		r.log.Error("failed to get event by ID", "event_id", id, "error", err)
		return nil, fmt.Errorf("failed to get event by ID: %w", err)
	}

	return eventFromRow(&row), nil
}

// GetAll lists every event, most recent first
func (r *PostgresEventRepository) GetAll(ctx context.Context) ([]*event.Event, error) {
	var rows []migrations.Event
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		r.log.Error("failed to get all events", "error", err)
		return nil, fmt.Errorf("failed to get all events: %w", err)
	}

	r.log.Debug("retrieved all events", "count", len(rows))
	return eventsFromRows(rows), nil
}

func (r *PostgresEventRepository) GetByCreator(ctx context.Context, creatorID uuid.UUID) ([]*event.Event, error) {
	var rows []migrations.Event
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		r.log.Error("failed to get events by creator", "creator_id", creatorID, "error", err)
		return nil, fmt.Errorf("failed to get events by creator: %w", err)
	}

	r.log.Debug("retrieved events by creator", "creator_id", creatorID, "count", len(rows))
	return eventsFromRows(rows), nil
}

// Update applies only the fields present in patch
func (r *PostgresEventRepository) Update(ctx context.Context, id uuid.UUID, patch event.Patch) (*event.Event, error) {
	r.log.Debug("updating event", "event_id", id)

	if patch.Title != nil && *patch.Title == "" {
		return nil, errors.New("title cannot be empty")
	}
	if patch.Type != nil && *patch.Type == "" {
		return nil, errors.New("type cannot be empty")
	}

	var row migrations.Event
	res := r.db.WithContext(ctx).Model(&row).
		Clauses(returningAll()).
		Where("id = ?", id).
		Updates(eventPatchToUpdates(patch))
	if res.Error != nil {
		r.log.Error("failed to update event", "event_id", id, "error", res.Error)
		return nil, fmt.Errorf("failed to update event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Error("event not found for update", "event_id", id)
		return nil, common.ErrNotFound
	}

	r.log.Info("event updated successfully", "event_id", id)
	return eventFromRow(&row), nil
}

// Delete removes the event. Messages and items go with it via ON DELETE CASCADE.
func (r *PostgresEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.log.Debug("deleting event", "event_id", id)

	res := r.db.WithContext(ctx).Delete(&migrations.Event{}, "id = ?", id)
	if res.Error != nil {
		r.log.Error("failed to delete event", "event_id", id, "error", res.Error)
		return fmt.Errorf("failed to delete event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("attempted to delete non-existent event", "event_id", id)
		return common.ErrNotFound
	}

	r.log.Info("event deleted successfully", "event_id", id)
	return nil
}

// RefreshCounters recomputes participant_count and item_count from scratch.
// Triggers already do this on every write; this is for repair jobs.
func (r *PostgresEventRepository) RefreshCounters(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Exec("SELECT refresh_event_counters(?)", id).Error; err != nil {
		r.log.Error("failed to refresh event counters", "event_id", id, "error", err)
		return fmt.Errorf("failed to refresh event counters: %w", err)
	}
	return nil
}

func eventsFromRows(rows []migrations.Event) []*event.Event {
	out := make([]*event.Event, 0, len(rows))
	for i := range rows {
		out = append(out, eventFromRow(&rows[i]))
	}
	return out
}
