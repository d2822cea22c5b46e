package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/activity"
	"github.com/gravadigital/wisha-api/internal/domain/event"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
)

// DashboardActivityLimit caps the merged timeline
const DashboardActivityLimit = 50

// EventSummary is one row of the dashboard
type EventSummary struct {
	*event.Event
	MessageCount int `json:"messageCount"`
	TotalItems   int `json:"totalItems"`
}

// Summary is everything the dashboard page shows for one user
type Summary struct {
	Events     []EventSummary       `json:"events"`
	Activities []*activity.Activity `json:"activities"`
	Totals     struct {
		Events   int `json:"events"`
		Messages int `json:"messages"`
		Items    int `json:"items"`
	} `json:"totals"`
}

type DashboardService struct {
	repos postgres.RepositoryContainer
	log   *log.Logger
}

func NewDashboardService(repos postgres.RepositoryContainer) *DashboardService {
	return &DashboardService{
		repos: repos,
		log:   logger.Service("dashboard"),
	}
}

// Summary loads the user's events and aggregates them with one query per
// concern instead of one per event.
func (s *DashboardService) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	s.log.Debug("building dashboard", "user_id", userID)

	events, err := s.repos.Events().GetByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	out := &Summary{
		Events:     make([]EventSummary, 0, len(events)),
		Activities: []*activity.Activity{},
	}
	if len(events) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}

	messages, err := s.repos.Messages().CountByEventIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}
	items, err := s.repos.Items().CountByEventIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	timeline, err := s.repos.Activities().GetByEventIDs(ctx, ids, DashboardActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}

	for _, e := range events {
		row := EventSummary{Event: e, MessageCount: messages[e.ID], TotalItems: items[e.ID]}
		out.Events = append(out.Events, row)
		out.Totals.Messages += row.MessageCount
		out.Totals.Items += row.TotalItems
	}
	out.Totals.Events = len(events)

	activity.SortNewestFirst(timeline)
	if timeline != nil {
		out.Activities = timeline
	}

	s.log.Info("dashboard built", "user_id", userID, "events", len(events))
	return out, nil
}
