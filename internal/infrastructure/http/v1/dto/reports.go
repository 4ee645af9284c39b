package dto

import (
	"time"

	"stockpulse/internal/core/apperror"
	"stockpulse/internal/domain/reports"
)

// ListRequest selects and orders purchase or item listings.
type ListRequest struct {
	Status string `form:"status"`
	Sort   string `form:"sort"`
	AsOf   string `form:"asOf"`
}

// ToListQuery validates the query values.
func (r *ListRequest) ToListQuery() (reports.ListQuery, error) {
	status, ok := reports.ParseStatusFilter(r.Status)
	if !ok {
		return reports.ListQuery{}, apperror.NewValidation("unknown status filter").
			WithDetail("field", "status").
			WithDetail("value", r.Status)
	}
	order, ok := reports.ParseSortOrder(r.Sort)
	if !ok {
		return reports.ListQuery{}, apperror.NewValidation("unknown sort order").
			WithDetail("field", "sort").
			WithDetail("value", r.Sort)
	}
	asOf, err := ParseAsOf(r.AsOf)
	if err != nil {
		return reports.ListQuery{}, err
	}
	return reports.ListQuery{Status: status, Sort: order, AsOf: asOf}, nil
}

// ParseAsOf parses the optional asOf query value; empty means now.
func ParseAsOf(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, apperror.NewValidation("invalid asOf date").
			WithDetail("field", "asOf").
			WithDetail("value", s)
	}
	return &t, nil
}

// ReportRequest carries the shared report query parameters.
type ReportRequest struct {
	AsOf        string `form:"asOf"`
	Granularity string `form:"granularity"`
}

// ParseGranularity defaults to month.
func (r *ReportRequest) ParseGranularity() (reports.Granularity, error) {
	if r.Granularity == "" {
		return reports.Month, nil
	}
	g := reports.Granularity(r.Granularity)
	if !g.Valid() {
		return "", apperror.NewValidation("granularity must be week or month").
			WithDetail("field", "granularity").
			WithDetail("value", r.Granularity)
	}
	return g, nil
}
