package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/domain/lots"
	"stockpulse/internal/infrastructure/http/v1/dto"
)

// SyncService ingests batches pushed by the billing system.
type SyncService interface {
	ImportPurchases(ctx context.Context, records []lots.PurchaseRecord) lots.ImportPurchasesResult
	ImportSales(ctx context.Context, records []lots.SaleRecord) lots.ImportSalesResult
	UnsoldSerials(ctx context.Context) ([]inventory.UnsoldItem, error)
}

// SyncHandler handles the billing-system integration endpoints.
type SyncHandler struct {
	*BaseHandler
	service SyncService
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(base *BaseHandler, service SyncService) *SyncHandler {
	return &SyncHandler{
		BaseHandler: base,
		service:     service,
	}
}

// ImportPurchases handles POST /sync/purchases
// Partial failures are reported in the body; the response is 200 whenever the batch was read.
func (h *SyncHandler) ImportPurchases(c *gin.Context) {
	var req dto.ImportPurchasesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res := h.service.ImportPurchases(c.Request.Context(), req.ToRecords())
	h.OK(c, res)
}

// ImportSales handles POST /sync/sales
func (h *SyncHandler) ImportSales(c *gin.Context) {
	var req dto.ImportSalesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res := h.service.ImportSales(c.Request.Context(), req.ToRecords())
	h.OK(c, res)
}

// UnsoldSerials handles GET /sync/unsold-serials
func (h *SyncHandler) UnsoldSerials(c *gin.Context) {
	items, err := h.service.UnsoldSerials(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// RegisterRoutes registers sync routes.
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/purchases", h.ImportPurchases)
	rg.POST("/sales", h.ImportSales)
	rg.GET("/unsold-serials", h.UnsoldSerials)
}
