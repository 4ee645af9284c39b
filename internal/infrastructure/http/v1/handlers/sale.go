package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/domain/lots"
	"stockpulse/internal/infrastructure/http/v1/dto"
)

// SaleService registers and amends sales.
type SaleService interface {
	RegisterSale(ctx context.Context, in lots.NewSale) (*inventory.Sale, error)
	UpdateSale(ctx context.Context, id int64, patch lots.SalePatch) (*inventory.Sale, error)
	DeleteSale(ctx context.Context, id int64) error
}

// SaleHandler handles HTTP requests for sales.
type SaleHandler struct {
	*BaseHandler
	service SaleService
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service SaleService) *SaleHandler {
	return &SaleHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /sales
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sale, err := h.service.RegisterSale(c.Request.Context(), req.ToNewSale())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, sale)
}

// Update handles PUT /sales/:id
func (h *SaleHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.UpdateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sale, err := h.service.UpdateSale(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sale)
}

// Delete handles DELETE /sales/:id
func (h *SaleHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSale(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers sale routes.
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
