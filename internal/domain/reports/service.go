package reports

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockpulse/internal/core/apperror"
	"stockpulse/internal/domain/inventory"
)

var tracer = otel.Tracer("stockpulse/reports")

// Service provides report generation operations.
// Each call loads fresh lot snapshots; nothing is cached.
type Service struct {
	repo       Repository
	thresholds Thresholds
	now        func() time.Time
}

// NewService creates a new reports service classifying with the given limits.
func NewService(repo Repository, thresholds Thresholds) *Service {
	return &Service{repo: repo, thresholds: thresholds, now: time.Now}
}

// WithClock overrides the clock used when no as-of date is given.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// asOfOrNow defaults the as-of date to the current time.
func (s *Service) asOfOrNow(asOf *time.Time) time.Time {
	if asOf != nil && !asOf.IsZero() {
		return *asOf
	}
	return s.now()
}

func (s *Service) load(ctx context.Context, report string) ([]inventory.Lot, trace.Span, error) {
	ctx, span := tracer.Start(ctx, "reports."+report)
	lots, err := s.repo.LoadLots(ctx)
	if err != nil {
		span.RecordError(err)
		span.End()
		return nil, nil, fmt.Errorf("load lots for %s: %w", report, err)
	}
	span.SetAttributes(attribute.Int("lots", len(lots)))
	return lots, span, nil
}

// ListQuery selects and orders lot or item listings.
type ListQuery struct {
	Status StatusFilter
	Sort   SortOrder
	AsOf   *time.Time
}

func (q ListQuery) normalized() ListQuery {
	if q.Status == "" {
		q.Status = FilterAll
	}
	if q.Sort == "" {
		q.Sort = SortCreatedDesc
	}
	return q
}

// ListPurchases returns filtered, sorted purchases with metrics.
func (s *Service) ListPurchases(ctx context.Context, q ListQuery) ([]PurchaseView, error) {
	lots, span, err := s.load(ctx, "list_purchases")
	if err != nil {
		return nil, err
	}
	defer span.End()

	q = q.normalized()
	return ListPurchases(lots, q.Status, q.Sort, s.asOfOrNow(q.AsOf), s.thresholds), nil
}

// ListItems returns the items of filtered, sorted purchases with metrics.
func (s *Service) ListItems(ctx context.Context, q ListQuery) ([]ItemView, error) {
	lots, span, err := s.load(ctx, "list_items")
	if err != nil {
		return nil, err
	}
	defer span.End()

	q = q.normalized()
	return ListItems(lots, q.Status, q.Sort, s.asOfOrNow(q.AsOf)), nil
}

// PurchaseDetail is one lot with its metrics and per-item metrics.
type PurchaseDetail struct {
	PurchaseView
	Items []ItemView `json:"items"`
}

// GetPurchase computes metrics for a single lot.
func (s *Service) GetPurchase(ctx context.Context, purchaseID int64, asOf *time.Time) (*PurchaseDetail, error) {
	ctx, span := tracer.Start(ctx, "reports.get_purchase")
	defer span.End()

	lot, err := s.repo.LoadLot(ctx, purchaseID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("purchase", purchaseID)
		}
		return nil, fmt.Errorf("load lot %d: %w", purchaseID, err)
	}

	at := s.asOfOrNow(asOf)
	detail := &PurchaseDetail{
		PurchaseView: PurchaseView{Purchase: lot.Purchase, Metrics: ComputeMetrics(lot, at, s.thresholds)},
		Items:        ListItems([]inventory.Lot{*lot}, FilterAll, SortCreatedDesc, at),
	}
	return detail, nil
}

// Performance classifies every arrived lot.
func (s *Service) Performance(ctx context.Context) ([]PerformanceRow, error) {
	lots, span, err := s.load(ctx, "performance")
	if err != nil {
		return nil, err
	}
	defer span.End()
	return ClassifyPerformance(lots, s.thresholds), nil
}

// Rollup aggregates lots by arrival week or month.
func (s *Service) Rollup(ctx context.Context, g Granularity) ([]RollupBucket, error) {
	if g == "" {
		g = Month
	}
	if !g.Valid() {
		return nil, apperror.NewValidation("granularity must be week or month").
			WithDetail("granularity", string(g))
	}
	lots, span, err := s.load(ctx, "rollup")
	if err != nil {
		return nil, err
	}
	defer span.End()
	return PeriodRollup(lots, g), nil
}

// Staleness lists stale unsold items.
func (s *Service) Staleness(ctx context.Context, asOf *time.Time) ([]StaleItem, error) {
	lots, span, err := s.load(ctx, "staleness")
	if err != nil {
		return nil, err
	}
	defer span.End()
	return StalenessReport(lots, s.asOfOrNow(asOf)), nil
}

// CriticalMargin lists lots selling below the margin threshold.
func (s *Service) CriticalMargin(ctx context.Context) ([]CriticalMarginRow, error) {
	lots, span, err := s.load(ctx, "critical_margin")
	if err != nil {
		return nil, err
	}
	defer span.End()
	return CriticalMarginReport(lots, s.thresholds), nil
}

// DataQuality lists items with more than one sale.
func (s *Service) DataQuality(ctx context.Context) ([]DataQualityRow, error) {
	lots, span, err := s.load(ctx, "data_quality")
	if err != nil {
		return nil, err
	}
	defer span.End()
	return DataQualityReport(lots), nil
}

// Dashboard summarizes all lots.
func (s *Service) Dashboard(ctx context.Context, asOf *time.Time) (*Dashboard, error) {
	lots, span, err := s.load(ctx, "dashboard")
	if err != nil {
		return nil, err
	}
	defer span.End()
	d := BuildDashboard(lots, s.asOfOrNow(asOf))
	return &d, nil
}
