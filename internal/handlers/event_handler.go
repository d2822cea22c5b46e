package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/wisha-api/internal/auth"
	"github.com/gravadigital/wisha-api/internal/domain/activity"
	"github.com/gravadigital/wisha-api/internal/domain/event"
	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/middleware"
	"github.com/gravadigital/wisha-api/internal/response"
	"github.com/gravadigital/wisha-api/internal/services"
	"github.com/gravadigital/wisha-api/internal/session"
	"github.com/gravadigital/wisha-api/internal/storage/cache"
	"github.com/gravadigital/wisha-api/internal/workflow"
)

// IdempotencyHeader carries the client key that makes POST /events retry safe
const IdempotencyHeader = "Idempotency-Key"

type EventHandler struct {
	events      *services.EventService
	activities  *services.ActivityService
	idempotency *cache.IdempotencyStore
	log         *log.Logger
}

func NewEventHandler(events *services.EventService, activities *services.ActivityService, idempotency *cache.IdempotencyStore) *EventHandler {
	return &EventHandler{
		events:      events,
		activities:  activities,
		idempotency: idempotency,
		log:         logger.Handler("events"),
	}
}

// CreateEventRequest is both wizard pages in one body. Credentials may be
// omitted by authenticated callers.
type CreateEventRequest struct {
	workflow.Details
	Credentials *workflow.Credentials `json:"credentials"`
}

// CreateEventResponse reports where the wizard ended up
type CreateEventResponse struct {
	Step    string        `json:"step"`
	Event   *event.Event  `json:"event,omitempty"`
	Session *auth.Session `json:"session,omitempty"`
}

// CreateEvent handles POST /api/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "Invalid request payload")
		return
	}

	sess := middleware.SessionFrom(c)
	out := response.OutcomeFrom(c)
	wizard := workflow.New(workflow.Deps{
		Session:     sess,
		Events:      h.events,
		Activities:  h.activities,
		Idempotency: h.idempotency,
		Navigator:   out,
		Notifier:    out,
	}).WithIdempotencyKey(c.GetHeader(IdempotencyHeader))

	ctx := c.Request.Context()
	created, err := wizard.SubmitDetails(ctx, req.Details)
	if err != nil {
		h.wizardError(c, err)
		return
	}

	if created == nil {
		if req.Credentials == nil {
			// el cliente debe mostrar el paso de credenciales
			response.SuccessResponse(c, http.StatusAccepted, "Credentials required", CreateEventResponse{
				Step: wizard.Step().String(),
			})
			return
		}
		wizard.ProbeEmail(ctx, req.Credentials.Email)
		created, err = wizard.SubmitCredentials(ctx, *req.Credentials)
		if err != nil {
			h.wizardError(c, err)
			return
		}
	}

	response.SuccessResponse(c, http.StatusCreated, "Event created", CreateEventResponse{
		Step:    wizard.Step().String(),
		Event:   created,
		Session: sess.Session(),
	})
}

func (h *EventHandler) wizardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrSubmitInProgress):
		response.ConflictError(c, err.Error())
	case errors.Is(err, workflow.ErrEventNotCreated):
		response.InternalServerError(c, response.GenericFailure)
	default:
		response.FromError(c, err)
	}
}

// ListEvents handles GET /api/events. ?creator=me or ?creator=<uuid> narrows
// the list to one creator.
func (h *EventHandler) ListEvents(c *gin.Context) {
	var filter services.EventFilter

	switch creator := c.Query("creator"); creator {
	case "":
	case "me":
		u := currentUser(c)
		if u == nil {
			response.UnauthorizedError(c, "Please log in to continue")
			return
		}
		filter.CreatorID = &u.ID
	default:
		id, err := uuid.Parse(creator)
		if err != nil {
			response.BadRequestError(c, "creator must be 'me' or a valid UUID")
			return
		}
		filter.CreatorID = &id
	}

	events := h.events.List(c.Request.Context(), filter)
	response.SuccessResponse(c, http.StatusOK, "", gin.H{
		"events": events,
		"count":  len(events),
	})
}

// GetEvent handles GET /api/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	e, ok := h.loadEvent(c)
	if !ok {
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", e)
}

type UpdateEventRequest struct {
	Title        *string    `json:"title" validate:"omitempty,max=120"`
	Description  *string    `json:"description" validate:"omitempty,max=2000"`
	Instructions *string    `json:"instructions" validate:"omitempty,max=2000"`
	Date         *time.Time `json:"date"`
	Type         *string    `json:"type"`
	CoverImage   *string    `json:"coverImage" validate:"omitempty,url"`
}

func (r UpdateEventRequest) patch() event.Patch {
	return event.Patch{
		Title:        r.Title,
		Description:  r.Description,
		Instructions: r.Instructions,
		Date:         r.Date,
		Type:         r.Type,
		CoverImage:   r.CoverImage,
	}
}

// UpdateEvent handles PATCH /api/events/:id. Only the creator may edit.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	e, ok := h.ownedEvent(c)
	if !ok {
		return
	}

	var req UpdateEventRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := req.patch()
	if patch.IsEmpty() {
		response.BadRequestError(c, "Nothing to update")
		return
	}
	if patch.Type != nil && !event.IsKnownCategory(*patch.Type) {
		response.BadRequestError(c, "Unknown category")
		return
	}

	ctx := c.Request.Context()
	updated := h.events.Update(ctx, e.ID, patch)
	if updated == nil {
		response.FromError(c, errUpdateFailed)
		return
	}

	u := currentUser(c)
	h.activities.Record(ctx, activity.TypeUpdateEvent, e.ID, u.ID, u.Name, map[string]any{
		"fields": changedFields(patch),
	})

	notify(c, session.NoticeSuccess, "Event updated", "")
	response.SuccessResponse(c, http.StatusOK, "", updated)
}

// DeleteEvent handles DELETE /api/events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	e, ok := h.ownedEvent(c)
	if !ok {
		return
	}

	if !h.events.Delete(c.Request.Context(), e.ID) {
		response.FromError(c, errDeleteFailed)
		return
	}

	h.log.Info("event deleted", "event_id", e.ID)
	out := response.OutcomeFrom(c)
	out.Navigate("/dashboard")
	notify(c, session.NoticeSuccess, "Event deleted", "")
	response.SuccessResponse(c, http.StatusOK, "", nil)
}

// ListActivities handles GET /api/events/:id/activities
func (h *EventHandler) ListActivities(c *gin.Context) {
	e, ok := h.loadEvent(c)
	if !ok {
		return
	}

	activities := h.activities.List(c.Request.Context(), services.ActivityFilter{EventID: &e.ID})
	response.SuccessResponse(c, http.StatusOK, "", gin.H{
		"activities": activities,
		"count":      len(activities),
	})
}

// Categories handles GET /api/categories
func (h *EventHandler) Categories(c *gin.Context) {
	response.SuccessResponse(c, http.StatusOK, "", gin.H{
		"groups":     workflow.Categories(),
		"categories": event.Categories(),
	})
}

// loadEvent resolves the :id path parameter, answering 400/404 itself
func (h *EventHandler) loadEvent(c *gin.Context) (*event.Event, bool) {
	return loadEvent(c, h.events)
}

// ownedEvent is loadEvent restricted to the event creator
func (h *EventHandler) ownedEvent(c *gin.Context) (*event.Event, bool) {
	e, ok := h.loadEvent(c)
	if !ok {
		return nil, false
	}
	u := currentUser(c)
	if u == nil || !e.IsCreator(u.ID) {
		response.ForbiddenError(c, "Only the event creator can do this")
		return nil, false
	}
	return e, true
}

func loadEvent(c *gin.Context, events *services.EventService) (*event.Event, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	e := events.GetByID(c.Request.Context(), id)
	if e == nil {
		response.NotFoundError(c, "Event not found")
		return nil, false
	}
	return e, true
}

func changedFields(p event.Patch) []string {
	var fields []string
	if p.Title != nil {
		fields = append(fields, "title")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Instructions != nil {
		fields = append(fields, "instructions")
	}
	if p.Date != nil {
		fields = append(fields, "date")
	}
	if p.Type != nil {
		fields = append(fields, "type")
	}
	if p.CoverImage != nil {
		fields = append(fields, "coverImage")
	}
	return fields
}
