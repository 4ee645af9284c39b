package metrics

import (
	"fmt"
	"time"

	"stockpulse/internal/domain/inventory"
)

// SaleGrade classifies a single sale by its margin.
type SaleGrade string

const (
	GradeServiceUse SaleGrade = "service_use"
	GradeExcellent  SaleGrade = "excellent"
	GradeGood       SaleGrade = "good"
	GradeAcceptable SaleGrade = "acceptable"
	GradeCritical   SaleGrade = "critical"
)

// GradeSale grades a sale by SaleMarginPct.
func GradeSale(lot *inventory.Lot, s *inventory.Sale) SaleGrade {
	if s.IsServiceUse() {
		return GradeServiceUse
	}
	pct := SaleMarginPct(lot, s)
	switch {
	case pct.GreaterThanOrEqual(pct25):
		return GradeExcellent
	case pct.GreaterThanOrEqual(pct15):
		return GradeGood
	case pct.GreaterThanOrEqual(pct5):
		return GradeAcceptable
	default:
		return GradeCritical
	}
}

// SaleSpeed classifies the time from arrival to sale.
type SaleSpeed string

const (
	SpeedUnknown  SaleSpeed = "unknown"
	SpeedVeryFast SaleSpeed = "very_fast"
	SpeedFast     SaleSpeed = "fast"
	SpeedNormal   SaleSpeed = "normal"
	SpeedSlow     SaleSpeed = "slow"
	SpeedVerySlow SaleSpeed = "very_slow"
)

// ClassifySpeed maps days-to-sale onto a speed tier.
func ClassifySpeed(days *int) SaleSpeed {
	if days == nil {
		return SpeedUnknown
	}
	switch d := *days; {
	case d <= 7:
		return SpeedVeryFast
	case d <= 30:
		return SpeedFast
	case d <= 60:
		return SpeedNormal
	case d <= 90:
		return SpeedSlow
	default:
		return SpeedVerySlow
	}
}

// Alerts lists human-readable attention points for a lot.
func Alerts(lot *inventory.Lot, asOf time.Time) []string {
	p := &lot.Purchase
	alerts := make([]string, 0, 3)

	if p.ProblemFlagged {
		alerts = append(alerts, p.ProblemType.Title())
	} else if !p.HasArrived() {
		alerts = append(alerts, "Not arrived")
	}

	if n := lot.MissingSerialCount(); n > 0 {
		alerts = append(alerts, fmt.Sprintf("%d missing serials", n))
	}

	if age := StockAge(p, asOf); age != nil && lot.UnsoldCount() > 0 {
		switch {
		case *age > 60:
			alerts = append(alerts, "Very slow sale")
		case *age > 30:
			alerts = append(alerts, "Slow sale")
		}
	}

	return alerts
}
