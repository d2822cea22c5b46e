package services

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/activity"
	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/item"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
)

// ItemService manages the wishlist of an event
type ItemService struct {
	repos postgres.RepositoryContainer
	log   *log.Logger
}

func NewItemService(repos postgres.RepositoryContainer) *ItemService {
	return &ItemService{
		repos: repos,
		log:   logger.Service("items"),
	}
}

// CreateItemInput holds the fields of a new wishlist item
type CreateItemInput struct {
	EventID     uuid.UUID
	Name        string
	Description string
	URL         string
	Image       string
	Price       string
}

func (s *ItemService) ListByEvent(ctx context.Context, eventID uuid.UUID) []*item.Item {
	items, err := s.repos.Items().GetByEventID(ctx, eventID)
	return emptyOnError(s.log, "items", items, err)
}

func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) *item.Item {
	it, err := s.repos.Items().GetByID(ctx, id)
	if err != nil {
		logMiss(s.log, "item", id, err)
		return nil
	}
	return it
}

// Create inserts the item and its add_item activity in one transaction
func (s *ItemService) Create(ctx context.Context, in CreateItemInput, actor common.Author) *item.Item {
	it := item.NewItem(in.EventID, strings.TrimSpace(in.Name), in.Description, in.URL, in.Image, in.Price)
	if err := it.Validate(); err != nil {
		s.log.Warn("rejected item", "event_id", in.EventID, "error", err)
		return nil
	}

	err := s.repos.Transaction(ctx, func(tx postgres.RepositoryContainer) error {
		if err := tx.Items().Create(ctx, it); err != nil {
			return err
		}
		a := activity.New(activity.TypeAddItem, in.EventID, actor.ID, actor.Name, map[string]any{
			"item_id":   it.ID.String(),
			"item_name": it.Name,
		})
		return tx.Activities().Create(ctx, a)
	})
	if err != nil {
		s.log.Error("failed to create item", "event_id", in.EventID, "error", err)
		return nil
	}

	s.log.Info("item added", "item_id", it.ID, "event_id", it.EventID)
	return it
}

func (s *ItemService) Update(ctx context.Context, id uuid.UUID, patch item.Patch) *item.Item {
	it, err := s.repos.Items().Update(ctx, id, patch)
	if err != nil {
		s.log.Error("failed to update item", "item_id", id, "error", err)
		return nil
	}
	return it
}

func (s *ItemService) Delete(ctx context.Context, id uuid.UUID) bool {
	if err := s.repos.Items().Delete(ctx, id); err != nil {
		s.log.Error("failed to delete item", "item_id", id, "error", err)
		return false
	}
	return true
}

// Claim marks an available item as claimed by userID. The second return is
// false when the item is missing or somebody else got there first.
func (s *ItemService) Claim(ctx context.Context, id, userID uuid.UUID) (*item.Item, bool) {
	it, err := s.repos.Items().Claim(ctx, id, userID)
	if err != nil {
		s.logClaimFailure("claim", id, userID, err)
		return nil, false
	}
	s.log.Info("item claimed", "item_id", id, "user_id", userID)
	return it, true
}

// Unclaim releases an item held by userID
func (s *ItemService) Unclaim(ctx context.Context, id, userID uuid.UUID) (*item.Item, bool) {
	it, err := s.repos.Items().Unclaim(ctx, id, userID)
	if err != nil {
		s.logClaimFailure("unclaim", id, userID, err)
		return nil, false
	}
	s.log.Info("item released", "item_id", id, "user_id", userID)
	return it, true
}

func (s *ItemService) logClaimFailure(op string, id, userID uuid.UUID, err error) {
	if errors.Is(err, common.ErrNotClaimable) || errors.Is(err, common.ErrNotFound) {
		s.log.Info(op+" rejected", "item_id", id, "user_id", userID, "reason", err)
		return
	}
	s.log.Error("failed to "+op+" item", "item_id", id, "user_id", userID, "error", err)
}
