package services

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/activity"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
)

// ActivityService records and reads the feed
type ActivityService struct {
	activityRepo postgres.ActivityRepository
	log          *log.Logger
}

func NewActivityService(activityRepo postgres.ActivityRepository) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		log:          logger.Service("activities"),
	}
}

// ActivityFilter selects a timeline by event or by user. EventID wins when both are set.
type ActivityFilter struct {
	EventID *uuid.UUID
	UserID  *uuid.UUID
}

func (s *ActivityService) List(ctx context.Context, filter ActivityFilter) []*activity.Activity {
	var (
		items []*activity.Activity
		err   error
	)
	switch {
	case filter.EventID != nil:
		items, err = s.activityRepo.GetByEventID(ctx, *filter.EventID)
	case filter.UserID != nil:
		items, err = s.activityRepo.GetByUserID(ctx, *filter.UserID)
	default:
		items, err = s.activityRepo.GetRecent(ctx, 0)
	}
	return emptyOnError(s.log, "activities", items, err)
}

func (s *ActivityService) ListRecent(ctx context.Context, limit int) []*activity.Activity {
	items, err := s.activityRepo.GetRecent(ctx, limit)
	return emptyOnError(s.log, "activities", items, err)
}

// Record appends an activity. Details may be nil.
func (s *ActivityService) Record(ctx context.Context, t activity.Type, eventID, userID uuid.UUID, userName string, details map[string]any) *activity.Activity {
	a := activity.New(t, eventID, userID, userName, details)
	if err := s.activityRepo.Create(ctx, a); err != nil {
		s.log.Error("failed to record activity", "type", t, "event_id", eventID, "error", err)
		return nil
	}
	return a
}
