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

// PurchaseService is the lifecycle side of purchase endpoints.
type PurchaseService interface {
	CreatePurchase(ctx context.Context, in lots.NewPurchase) (*inventory.Lot, error)
	UpdatePurchase(ctx context.Context, id int64, patch lots.PurchasePatch) (*inventory.Purchase, error)
	MarkArrived(ctx context.Context, id int64, at *time.Time) (*inventory.Purchase, error)
	FlagProblem(ctx context.Context, id int64, problem inventory.ProblemType, description string) (*inventory.Purchase, error)
	ClearProblem(ctx context.Context, id int64) (*inventory.Purchase, error)
	DeletePurchase(ctx context.Context, id int64) error
	AddItem(ctx context.Context, purchaseID int64, in lots.NewItem) (*inventory.Item, error)
}

// PurchaseReader is the metrics side of purchase endpoints.
type PurchaseReader interface {
	ListPurchases(ctx context.Context, q reports.ListQuery) ([]reports.PurchaseView, error)
	GetPurchase(ctx context.Context, purchaseID int64, asOf *time.Time) (*reports.PurchaseDetail, error)
}

// PurchaseHandler handles HTTP requests for purchases.
type PurchaseHandler struct {
	*BaseHandler
	service PurchaseService
	reader  PurchaseReader
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service PurchaseService, reader PurchaseReader) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler: base,
		service:     service,
		reader:      reader,
	}
}

// List handles GET /purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	q, err := req.ToListQuery()
	if err != nil {
		h.Error(c, err)
		return
	}

	views, err := h.reader.ListPurchases(c.Request.Context(), q)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(views))
}

// Create handles POST /purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lot, err := h.service.CreatePurchase(c.Request.Context(), req.ToNewPurchase())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, lot)
}

// Get handles GET /purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	asOf, err := dto.ParseAsOf(c.Query("asOf"))
	if err != nil {
		h.Error(c, err)
		return
	}

	detail, err := h.reader.GetPurchase(c.Request.Context(), id, asOf)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, detail)
}

// Update handles PUT /purchases/:id
func (h *PurchaseHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.UpdatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdatePurchase(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Delete handles DELETE /purchases/:id
func (h *PurchaseHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePurchase(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// MarkArrived handles POST /purchases/:id/arrived
func (h *PurchaseHandler) MarkArrived(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.MarkArrivedRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}

	p, err := h.service.MarkArrived(c.Request.Context(), id, req.DeliveryDate.Ptr())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// FlagProblem handles POST /purchases/:id/problem
func (h *PurchaseHandler) FlagProblem(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.FlagProblemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.FlagProblem(c.Request.Context(), id, req.Type, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// ClearProblem handles DELETE /purchases/:id/problem
func (h *PurchaseHandler) ClearProblem(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}

	p, err := h.service.ClearProblem(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// AddItem handles POST /purchases/:id/items
func (h *PurchaseHandler) AddItem(c *gin.Context) {
	id, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), id, req.ToNewItem())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, item)
}

// RegisterRoutes registers purchase routes.
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/arrived", h.MarkArrived)
	rg.POST("/:id/problem", h.FlagProblem)
	rg.DELETE("/:id/problem", h.ClearProblem)
	rg.POST("/:id/items", h.AddItem)
}
