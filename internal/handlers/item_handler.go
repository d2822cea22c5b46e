package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/wisha-api/internal/domain/common"
	"github.com/gravadigital/wisha-api/internal/domain/item"
	"github.com/gravadigital/wisha-api/internal/response"
	"github.com/gravadigital/wisha-api/internal/services"
	"github.com/gravadigital/wisha-api/internal/session"
)

// ItemHandler serves the wishlist of an event. The event creator manages
// the list; any signed in user can claim.
type ItemHandler struct {
	items  *services.ItemService
	events *services.EventService
}

func NewItemHandler(items *services.ItemService, events *services.EventService) *ItemHandler {
	return &ItemHandler{items: items, events: events}
}

type CreateItemRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	URL         string `json:"url" validate:"omitempty,url"`
	Image       string `json:"image" validate:"omitempty,url"`
	Price       string `json:"price" validate:"max=40"`
}

type UpdateItemRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	URL         *string `json:"url" validate:"omitempty,url"`
	Image       *string `json:"image" validate:"omitempty,url"`
	Price       *string `json:"price" validate:"omitempty,max=40"`
}

// ListItems handles GET /api/events/:id/items
func (h *ItemHandler) ListItems(c *gin.Context) {
	e, ok := loadEvent(c, h.events)
	if !ok {
		return
	}
	items := h.items.ListByEvent(c.Request.Context(), e.ID)
	response.SuccessResponse(c, http.StatusOK, "", gin.H{
		"items": items,
		"count": len(items),
	})
}

// CreateItem handles POST /api/events/:id/items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	e, ok := loadEvent(c, h.events)
	if !ok {
		return
	}
	u := currentUser(c)
	if !e.IsCreator(u.ID) {
		response.ForbiddenError(c, "Only the event creator can add items")
		return
	}

	var req CreateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	it := h.items.Create(c.Request.Context(), services.CreateItemInput{
		EventID:     e.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		URL:         req.URL,
		Image:       req.Image,
		Price:       req.Price,
	}, u.AsAuthor())
	if it == nil {
		response.InternalServerError(c, response.GenericFailure)
		return
	}

	notify(c, session.NoticeSuccess, "Item added", it.Name)
	response.SuccessResponse(c, http.StatusCreated, "", it)
}

// UpdateItem handles PATCH /api/items/:id
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	it, ok := h.managedItem(c)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := item.Patch{
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
		Image:       req.Image,
		Price:       req.Price,
	}
	if patch.IsEmpty() {
		response.BadRequestError(c, "Nothing to update")
		return
	}

	updated := h.items.Update(c.Request.Context(), it.ID, patch)
	if updated == nil {
		response.FromError(c, errUpdateFailed)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "", updated)
}

// DeleteItem handles DELETE /api/items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	it, ok := h.managedItem(c)
	if !ok {
		return
	}
	if !h.items.Delete(c.Request.Context(), it.ID) {
		response.FromError(c, errDeleteFailed)
		return
	}
	notify(c, session.NoticeSuccess, "Item removed", it.Name)
	response.SuccessResponse(c, http.StatusOK, "", nil)
}

// ClaimItem handles POST /api/items/:id/claim
func (h *ItemHandler) ClaimItem(c *gin.Context) {
	h.toggleClaim(c, true)
}

// UnclaimItem handles POST /api/items/:id/unclaim
func (h *ItemHandler) UnclaimItem(c *gin.Context) {
	h.toggleClaim(c, false)
}

func (h *ItemHandler) toggleClaim(c *gin.Context, claim bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	u := currentUser(c)

	var (
		it     *item.Item
		worked bool
	)
	if claim {
		it, worked = h.items.Claim(ctx, id, u.ID)
	} else {
		it, worked = h.items.Unclaim(ctx, id, u.ID)
	}
	if !worked {
		// distinguish a missing item from a lost race
		if h.items.GetByID(ctx, id) == nil {
			response.NotFoundError(c, "Item not found")
			return
		}
		response.FromError(c, common.ErrNotClaimable)
		return
	}

	if claim {
		notify(c, session.NoticeSuccess, "Item claimed", it.Name)
	} else {
		notify(c, session.NoticeInfo, "Item released", it.Name)
	}
	response.SuccessResponse(c, http.StatusOK, "", it)
}

// managedItem loads the :id item and checks the caller created its event
func (h *ItemHandler) managedItem(c *gin.Context) (*item.Item, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	ctx := c.Request.Context()
	it := h.items.GetByID(ctx, id)
	if it == nil {
		response.NotFoundError(c, "Item not found")
		return nil, false
	}
	e := h.events.GetByID(ctx, it.EventID)
	if e == nil {
		response.NotFoundError(c, "Event not found")
		return nil, false
	}
	if !e.IsCreator(currentUser(c).ID) {
		response.ForbiddenError(c, "Only the event creator can manage items")
		return nil, false
	}
	return it, true
}
