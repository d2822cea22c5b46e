package services

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/domain/event"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/storage/postgres"
	"github.com/gravadigital/wisha-api/internal/validation"
)

// EventService maneja la lógica de negocio de eventos
type EventService struct {
	eventRepo postgres.EventRepository
	validator validation.EventValidation
	log       *log.Logger
}

// NewEventService crea una nueva instancia del servicio de eventos
func NewEventService(eventRepo postgres.EventRepository) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		validator: validation.EventValidation{},
		log:       logger.Service("events"),
	}
}

// EventFilter narrows List. A nil CreatorID lists every event.
type EventFilter struct {
	CreatorID *uuid.UUID
}

// CreateEventInput representa una solicitud para crear un evento
type CreateEventInput struct {
	Title        string
	Type         string
	Description  string
	Instructions *string
	Date         *time.Time
	CoverImage   *string
	CreatorID    uuid.UUID
}

func (s *EventService) List(ctx context.Context, filter EventFilter) []*event.Event {
	if filter.CreatorID == nil {
		return s.ListAll(ctx)
	}
	events, err := s.eventRepo.GetByCreator(ctx, *filter.CreatorID)
	return emptyOnError(s.log, "events", events, err)
}

func (s *EventService) ListAll(ctx context.Context) []*event.Event {
	events, err := s.eventRepo.GetAll(ctx)
	return emptyOnError(s.log, "events", events, err)
}

func (s *EventService) GetByID(ctx context.Context, id uuid.UUID) *event.Event {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		logMiss(s.log, "event", id, err)
		return nil
	}
	return e
}

// Create crea un nuevo evento. Counters always start at zero.
func (s *EventService) Create(ctx context.Context, in CreateEventInput) *event.Event {
	if err := s.validator.ValidateEventName(in.Title); err != nil {
		s.log.Warn("rejected event", "error", err)
		return nil
	}

	instructions := in.Instructions
	if instructions != nil && strings.TrimSpace(*instructions) == "" {
		instructions = nil
	}

	e := event.NewEvent(strings.TrimSpace(in.Title), in.Type, instructions, in.CreatorID)
	e.Description = in.Description
	e.CoverImage = in.CoverImage
	if in.Date != nil {
		e.Date = *in.Date
	}

	if err := s.eventRepo.Create(ctx, e); err != nil {
		s.log.Error("failed to create event", "title", in.Title, "creator_id", in.CreatorID, "error", err)
		return nil
	}

	s.log.Info("event created", "event_id", e.ID, "creator_id", e.CreatorID)
	return e
}

// Update sends only the provided fields; updated_at is always refreshed
func (s *EventService) Update(ctx context.Context, id uuid.UUID, patch event.Patch) *event.Event {
	if patch.Title != nil {
		if err := s.validator.ValidateEventName(*patch.Title); err != nil {
			s.log.Warn("rejected event update", "event_id", id, "error", err)
			return nil
		}
	}

	e, err := s.eventRepo.Update(ctx, id, patch)
	if err != nil {
		s.log.Error("failed to update event", "event_id", id, "error", err)
		return nil
	}
	return e
}

func (s *EventService) Delete(ctx context.Context, id uuid.UUID) bool {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		s.log.Error("failed to delete event", "event_id", id, "error", err)
		return false
	}
	return true
}
