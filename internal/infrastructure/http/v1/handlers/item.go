package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/domain/lots"
	"stockpulse/internal/domain/reports"
	"stockpulse/internal/infrastructure/http/v1/dto"
)

// ItemService is the lifecycle side of item endpoints.
type ItemService interface {
	GetItem(ctx context.Context, id int64) (*inventory.Item, error)
	UpdateItem(ctx context.Context, id int64, patch lots.ItemPatch) (*inventory.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	MarkServiceUse(ctx context.Context, itemID int64, at *time.Time) (*inventory.Sale, error)
}

// ItemReader lists items with metrics.
type ItemReader interface {
	ListItems(ctx context.Context, q reports.ListQuery) ([]reports.ItemView, error)
}

// ItemHandler handles HTTP requests for items.
type ItemHandler struct {
	*BaseHandler
	service ItemService
	reader  ItemReader
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service ItemService, reader ItemReader) *ItemHandler {
	return &ItemHandler{
		BaseHandler: base,
		service:     service,
		reader:      reader,
	}
}

// List handles GET /items
func (h *ItemHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	q, err := req.ToListQuery()
	if err != nil {
		h.Error(c, err)
		return
	}

	views, err := h.reader.ListItems(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(views))
}

// Get handles GET /items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, item)
}

// Update handles PUT /items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, item)
}

// Delete handles DELETE /items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// ServiceUse handles POST /items/:id/service-use
func (h *ItemHandler) ServiceUse(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.ServiceUseRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}

	sale, err := h.service.MarkServiceUse(c.Request.Context(), id, req.Date.Ptr())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, sale)
}

// RegisterRoutes registers item routes.
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/service-use", h.ServiceUse)
}
