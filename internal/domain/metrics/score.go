package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"stockpulse/internal/domain/inventory"
)

// Urgency weights.
const (
	flaggedProblemBase  = 50
	missingSerialWeight = 10
	missingSerialCap    = 30
	slowSaleThreshold   = 30
	slowSaleStep        = 15
	slowSaleWeight      = 10
	slowSaleCap         = 30
)

// Severity is the urgency bonus for a flagged problem type.
func Severity(t inventory.ProblemType) int {
	switch t {
	case inventory.ProblemLostPackage, inventory.ProblemDamagedGoods:
		return 30
	case inventory.ProblemNonConformingGoods, inventory.ProblemSellerDispute:
		return 20
	case inventory.ProblemDelayedDelivery:
		return 15
	default:
		return 0
	}
}

func waitingBonus(days int) int {
	switch {
	case days > 21:
		return 40
	case days > 14:
		return 30
	case days > 7:
		return 20
	default:
		return 0
	}
}

// UrgencyScore ranks how urgently a lot needs attention, 0 to 100.
// A flagged problem replaces the not-arrived term.
func UrgencyScore(lot *inventory.Lot, asOf time.Time) int {
	p := &lot.Purchase
	score := 0

	if p.ProblemFlagged {
		score += flaggedProblemBase + Severity(p.ProblemType)
	} else if w := WaitingDays(p, asOf); w != nil {
		score += waitingBonus(*w)
	}

	score += min(missingSerialCap, missingSerialWeight*lot.MissingSerialCount())

	if age := StockAge(p, asOf); age != nil && *age > slowSaleThreshold && lot.UnsoldCount() > 0 {
		score += min(slowSaleCap, (*age-slowSaleThreshold)/slowSaleStep*slowSaleWeight)
	}

	return clamp(score)
}

var (
	pct25 = decimal.NewFromInt(25)
	pct15 = decimal.NewFromInt(15)
	pct5  = decimal.NewFromInt(5)
)

func marginBonus(pct decimal.Decimal) int {
	switch {
	case pct.GreaterThanOrEqual(pct25):
		return 30
	case pct.GreaterThanOrEqual(pct15):
		return 20
	case pct.GreaterThanOrEqual(pct5):
		return 10
	default:
		return -10
	}
}

var (
	days30 = decimal.NewFromInt(30)
	days60 = decimal.NewFromInt(60)
)

func speedBonus(days decimal.Decimal) int {
	switch {
	case days.LessThanOrEqual(days30):
		return 20
	case days.LessThanOrEqual(days60):
		return 10
	default:
		return -10
	}
}

// PerformanceScore rates a lot once at least one item has sold; nil before.
// The speed tier applies only when every business item is sold.
func PerformanceScore(lot *inventory.Lot) *int {
	if lot.SoldCount() == 0 {
		return nil
	}
	score := 50 + marginBonus(BusinessMarginPct(lot))

	business := BusinessItems(lot)
	if len(business) > 0 && BusinessSoldCount(lot) == len(business) {
		if mean := MeanDaysToSale(lot); mean != nil {
			score += speedBonus(*mean)
		}
	}

	score = clamp(score)
	return &score
}

func clamp(score int) int {
	return max(0, min(100, score))
}
