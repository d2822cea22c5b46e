package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/wisha-api/internal/response"
	"github.com/gravadigital/wisha-api/internal/services"
	"github.com/gravadigital/wisha-api/internal/storage/cache"
)

// PreferenceHandler serves the display settings of an event board.
// Anyone can read them; only the creator can change them.
type PreferenceHandler struct {
	prefs  *cache.PreferenceStore
	events *services.EventService
}

func NewPreferenceHandler(prefs *cache.PreferenceStore, events *services.EventService) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs, events: events}
}

type PreferencesRequest struct {
	Font            string `json:"font" validate:"max=80"`
	BackgroundColor string `json:"background_color" validate:"omitempty,hexcolor|rgb|rgba"`
	BackgroundImage string `json:"background_image" validate:"omitempty,url"`
}

// GetPreferences handles GET /api/events/:id/preferences
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	e, ok := loadEvent(c, h.events)
	if !ok {
		return
	}
	prefs, err := h.prefs.Get(c.Request.Context(), e.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", prefs)
}

// SavePreferences handles PUT /api/events/:id/preferences. Empty fields keep
// their stored value.
func (h *PreferenceHandler) SavePreferences(c *gin.Context) {
	e, ok := loadEvent(c, h.events)
	if !ok {
		return
	}
	if !e.IsCreator(currentUser(c).ID) {
		response.ForbiddenError(c, "Only the event creator can change the board style")
		return
	}

	var req PreferencesRequest
	if !bindJSON(c, &req) {
		return
	}

	prefs, err := h.prefs.Save(c.Request.Context(), e.ID, cache.Preferences{
		Font:            req.Font,
		BackgroundColor: req.BackgroundColor,
		BackgroundImage: req.BackgroundImage,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", prefs)
}
