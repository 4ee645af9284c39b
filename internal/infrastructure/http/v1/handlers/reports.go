package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"stockpulse/internal/core/apperror"
	"stockpulse/internal/domain/reports"
	"stockpulse/internal/infrastructure/export"
	"stockpulse/internal/infrastructure/http/v1/dto"
)

// ReportsService computes the classification reports.
type ReportsService interface {
	ListPurchases(ctx context.Context, q reports.ListQuery) ([]reports.PurchaseView, error)
	ListItems(ctx context.Context, q reports.ListQuery) ([]reports.ItemView, error)
	Performance(ctx context.Context) ([]reports.PerformanceRow, error)
	Rollup(ctx context.Context, g reports.Granularity) ([]reports.RollupBucket, error)
	Staleness(ctx context.Context, asOf *time.Time) ([]reports.StaleItem, error)
	CriticalMargin(ctx context.Context) ([]reports.CriticalMarginRow, error)
	DataQuality(ctx context.Context) ([]reports.DataQualityRow, error)
	Dashboard(ctx context.Context, asOf *time.Time) (*reports.Dashboard, error)
}

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service ReportsService
	now     func() time.Time
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service ReportsService) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
		now:         time.Now,
	}
}

// Performance handles GET /reports/performance
func (h *ReportsHandler) Performance(c *gin.Context) {
	rows, err := h.service.Performance(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(rows))
}

// Rollup handles GET /reports/rollup
func (h *ReportsHandler) Rollup(c *gin.Context) {
	var req dto.ReportRequest
	if !h.BindQuery(c, &req) {
		return
	}
	g, err := req.ParseGranularity()
	if err != nil {
		h.Error(c, err)
		return
	}

	buckets, err := h.service.Rollup(c.Request.Context(), g)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(buckets))
}

// Staleness handles GET /reports/staleness
func (h *ReportsHandler) Staleness(c *gin.Context) {
	asOf, err := dto.ParseAsOf(c.Query("asOf"))
	if err != nil {
		h.Error(c, err)
		return
	}

	items, err := h.service.Staleness(c.Request.Context(), asOf)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// CriticalMargin handles GET /reports/critical-margin
func (h *ReportsHandler) CriticalMargin(c *gin.Context) {
	rows, err := h.service.CriticalMargin(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(rows))
}

// DataQuality handles GET /reports/data-quality
func (h *ReportsHandler) DataQuality(c *gin.Context) {
	rows, err := h.service.DataQuality(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(rows))
}

// Dashboard handles GET /reports/dashboard
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	asOf, err := dto.ParseAsOf(c.Query("asOf"))
	if err != nil {
		h.Error(c, err)
		return
	}

	d, err := h.service.Dashboard(c.Request.Context(), asOf)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// Export handles GET /reports/:name/export and streams an xlsx workbook.
func (h *ReportsHandler) Export(c *gin.Context) {
	name := c.Param("name")
	sheet, err := h.sheet(c, name)
	if err != nil {
		h.Error(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", name, h.now().Format(dto.DateLayout))
	c.Header("Content-Type", export.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.Write(c.Writer, sheet); err != nil {
		h.Error(c, fmt.Errorf("export %s: %w", name, err))
		return
	}
}

func (h *ReportsHandler) sheet(c *gin.Context, name string) (export.Sheet, error) {
	ctx := c.Request.Context()
	asOf, err := dto.ParseAsOf(c.Query("asOf"))
	if err != nil {
		return export.Sheet{}, err
	}

	switch name {
	case "purchases", "items":
		var req dto.ListRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			return export.Sheet{}, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error())
		}
		q, err := req.ToListQuery()
		if err != nil {
			return export.Sheet{}, err
		}
		if name == "items" {
			views, err := h.service.ListItems(ctx, q)
			return export.ItemsSheet(views), err
		}
		views, err := h.service.ListPurchases(ctx, q)
		return export.PurchasesSheet(views), err
	case "performance":
		rows, err := h.service.Performance(ctx)
		return export.PerformanceSheet(rows), err
	case "rollup":
		req := dto.ReportRequest{Granularity: c.Query("granularity")}
		g, err := req.ParseGranularity()
		if err != nil {
			return export.Sheet{}, err
		}
		buckets, err := h.service.Rollup(ctx, g)
		return export.RollupSheet(buckets), err
	case "staleness":
		items, err := h.service.Staleness(ctx, asOf)
		return export.StalenessSheet(items), err
	case "critical-margin":
		rows, err := h.service.CriticalMargin(ctx)
		return export.CriticalMarginSheet(rows), err
	case "data-quality":
		rows, err := h.service.DataQuality(ctx)
		return export.DataQualitySheet(rows), err
	default:
		return export.Sheet{}, apperror.NewNotFound("report", name)
	}
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/performance", h.Performance)
	rg.GET("/rollup", h.Rollup)
	rg.GET("/staleness", h.Staleness)
	rg.GET("/critical-margin", h.CriticalMargin)
	rg.GET("/data-quality", h.DataQuality)
	rg.GET("/dashboard", h.Dashboard)
	rg.GET("/:name/export", h.Export)
}
