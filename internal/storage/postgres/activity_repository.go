package postgres

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/gravadigital/wisha-api/internal/domain/activity"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/migrations"
)

const defaultActivityLimit = 50

// PostgresActivityRepository implements ActivityRepository using GORM
type PostgresActivityRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresActivityRepository creates a new PostgreSQL activity repository
func NewPostgresActivityRepository(db *gorm.DB) *PostgresActivityRepository {
	return &PostgresActivityRepository{
		db:  db,
		log: logger.Repository("activity"),
	}
}

func (r *PostgresActivityRepository) Create(ctx context.Context, a *activity.Activity) error {
	r.log.Debug("recording activity", "type", a.Type, "event_id", a.EventID, "user_id", a.UserID)

	if err := a.Validate(); err != nil {
		r.log.Error("activity validation failed", "error", err)
		return fmt.Errorf("activity validation failed: %w", err)
	}

	row, err := activityToRow(a)
	if err != nil {
		return fmt.Errorf("failed to encode activity details: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		r.log.Error("failed to record activity", "type", a.Type, "event_id", a.EventID, "error", err)
		return fmt.Errorf("failed to record activity: %w", err)
	}

	*a = *activityFromRow(row)
	r.log.Info("activity recorded", "activity_id", a.ID, "type", a.Type)
	return nil
}

func (r *PostgresActivityRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]*activity.Activity, error) {
	return r.find(ctx, r.db.Where("event_id = ?", eventID), 0)
}

// GetByEventIDs merges the timelines of several events, newest first
func (r *PostgresActivityRepository) GetByEventIDs(ctx context.Context, eventIDs []uuid.UUID, limit int) ([]*activity.Activity, error) {
	keys := uuidStrings(eventIDs)
	if len(keys) == 0 {
		return []*activity.Activity{}, nil
	}
	return r.find(ctx, r.db.Where("event_id = ANY(?)", pq.Array(keys)), limit)
}

func (r *PostgresActivityRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*activity.Activity, error) {
	return r.find(ctx, r.db.Where("user_id = ?", userID), 0)
}

func (r *PostgresActivityRepository) GetRecent(ctx context.Context, limit int) ([]*activity.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return r.find(ctx, r.db, limit)
}

func (r *PostgresActivityRepository) find(ctx context.Context, q *gorm.DB, limit int) ([]*activity.Activity, error) {
	q = q.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []migrations.Activity
	if err := q.Find(&rows).Error; err != nil {
		r.log.Error("failed to load activities", "error", err)
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}

	out := make([]*activity.Activity, 0, len(rows))
	for i := range rows {
		out = append(out, activityFromRow(&rows[i]))
	}
	r.log.Debug("loaded activities", "count", len(out))
	return out, nil
}
