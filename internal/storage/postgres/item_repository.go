package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/item"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/migrations"
)

// PostgresItemRepository implements ItemRepository using GORM
type PostgresItemRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresItemRepository creates a new PostgreSQL item repository
func NewPostgresItemRepository(db *gorm.DB) *PostgresItemRepository {
	return &PostgresItemRepository{
		db:  db,
		log: logger.Repository("item"),
	}
}

func (r *PostgresItemRepository) Create(ctx context.Context, it *item.Item) error {
	r.log.Debug("creating item", "event_id", it.EventID, "name", it.Name)

	if it.Status == "" {
		it.Status = item.StatusAvailable
	}
	if err := it.Validate(); err != nil {
		r.log.Error("item validation failed", "error", err)
		return fmt.Errorf("item validation failed: %w", err)
	}

	row := itemToRow(it)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return common.ErrNotFound
		}
		r.log.Error("failed to create item", "event_id", it.EventID, "error", err)
		return fmt.Errorf("failed to create item: %w", err)
	}

	*it = *itemFromRow(row)
	r.log.Info("item created successfully", "item_id", it.ID, "event_id", it.EventID)
	return nil
}

func (r *PostgresItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	var row migrations.Item
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		r.log.Error("failed to get item by ID", "item_id", id, "error", err)
		return nil, fmt.Errorf("failed to get item by ID: %w", err)
	}
	return itemFromRow(&row), nil
}

func (r *PostgresItemRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]*item.Item, error) {
	var rows []migrations.Item
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		r.log.Error("failed to get items by event", "event_id", eventID, "error", err)
		return nil, fmt.Errorf("failed to get items by event: %w", err)
	}

	out := make([]*item.Item, 0, len(rows))
	for i := range rows {
		out = append(out, itemFromRow(&rows[i]))
	}
	r.log.Debug("retrieved items for event", "event_id", eventID, "count", len(out))
	return out, nil
}

func (r *PostgresItemRepository) Update(ctx context.Context, id uuid.UUID, patch item.Patch) (*item.Item, error) {
	r.log.Debug("updating item", "item_id", id)

	if patch.Name != nil && *patch.Name == "" {
		return nil, errors.New("name cannot be empty")
	}

	var row migrations.Item
	res := r.db.WithContext(ctx).Model(&row).
		Clauses(returningAll()).
		Where("id = ?", id).
		Updates(itemPatchToUpdates(patch))
	if res.Error != nil {
		r.log.Error("failed to update item", "item_id", id, "error", res.Error)
		return nil, fmt.Errorf("failed to update item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, common.ErrNotFound
	}

	r.log.Info("item updated successfully", "item_id", id)
	return itemFromRow(&row), nil
}

func (r *PostgresItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.log.Debug("deleting item", "item_id", id)

	res := r.db.WithContext(ctx).Delete(&migrations.Item{}, "id = ?", id)
	if res.Error != nil {
		r.log.Error("failed to delete item", "item_id", id, "error", res.Error)
		return fmt.Errorf("failed to delete item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}

	r.log.Info("item deleted successfully", "item_id", id)
	return nil
}

// Claim marks an available item as claimed by userID. The status check and the
// write are one statement, so of two concurrent claims exactly one succeeds.
func (r *PostgresItemRepository) Claim(ctx context.Context, id, userID uuid.UUID) (*item.Item, error) {
	r.log.Debug("claiming item", "item_id", id, "user_id", userID)

	var row migrations.Item
	res := r.db.WithContext(ctx).Model(&row).
		Clauses(returningAll()).
		Where("id = ? AND status = ?", id, string(item.StatusAvailable)).
		Updates(map[string]interface{}{
			"status":     string(item.StatusClaimed),
			"claimed_by": userID,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		r.log.Error("failed to claim item", "item_id", id, "error", res.Error)
		return nil, fmt.Errorf("failed to claim item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, r.conditionFailed(ctx, id)
	}

	r.log.Info("item claimed", "item_id", id, "user_id", userID)
	return itemFromRow(&row), nil
}

// Unclaim releases an item. Only the current claimant may do so.
func (r *PostgresItemRepository) Unclaim(ctx context.Context, id, userID uuid.UUID) (*item.Item, error) {
	r.log.Debug("releasing item", "item_id", id, "user_id", userID)

	var row migrations.Item
	res := r.db.WithContext(ctx).Model(&row).
		Clauses(returningAll()).
		Where("id = ? AND status = ? AND claimed_by = ?", id, string(item.StatusClaimed), userID).
		Updates(map[string]interface{}{
			"status":     string(item.StatusAvailable),
			"claimed_by": nil,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		r.log.Error("failed to release item", "item_id", id, "error", res.Error)
		return nil, fmt.Errorf("failed to release item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, r.conditionFailed(ctx, id)
	}

	r.log.Info("item released", "item_id", id, "user_id", userID)
	return itemFromRow(&row), nil
}

func (r *PostgresItemRepository) CountByEventIDs(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return countByEvent(ctx, r.db, &migrations.Item{}, eventIDs)
}

// conditionFailed tells a missing item apart from one in the wrong state
func (r *PostgresItemRepository) conditionFailed(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&migrations.Item{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check item existence: %w", err)
	}
	if count == 0 {
		return common.ErrNotFound
	}
	r.log.Warn("item claim precondition failed", "item_id", id)
	return common.ErrNotClaimable
}
