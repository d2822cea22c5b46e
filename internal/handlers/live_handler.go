package handlers

import (
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/gravadigital/wisha-api/internal/logger"
	"github.com/gravadigital/wisha-api/internal/realtime"
	"github.com/gravadigital/wisha-api/internal/services"
)

// LiveHandler upgrades board viewers to a websocket fed by the hub
type LiveHandler struct {
	hub      *realtime.Hub
	events   *services.EventService
	upgrader websocket.Upgrader
	log      *log.Logger
}

func NewLiveHandler(hub *realtime.Hub, events *services.EventService, origins []string) *LiveHandler {
	return &LiveHandler{
		hub:      hub,
		events:   events,
		upgrader: realtime.NewUpgrader(origins),
		log:      logger.Handler("live"),
	}
}

// Subscribe handles GET /api/events/:id/live
func (h *LiveHandler) Subscribe(c *gin.Context) {
	e, ok := loadEvent(c, h.events)
	if !ok {
		return
	}
	// the upgrader has already answered the client on failure
	if err := h.hub.Serve(&h.upgrader, c.Writer, c.Request, e.ID); err != nil {
		h.log.Warn("websocket upgrade failed", "event_id", e.ID, "error", err)
	}
}
