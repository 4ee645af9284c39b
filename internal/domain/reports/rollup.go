package reports

import (
	"fmt"
	"sort"
	"time"

	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/domain/metrics"
)

// PeriodLabel returns the bucket key of t: "2024-W05" or "2024-03".
// Labels sort lexically in chronological order.
func PeriodLabel(t time.Time, g Granularity) string {
	if g == Week {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	}
	return t.Format("2006-01")
}

// PeriodRollup groups arrived lots with business items by the period of
// their arrival date. Buckets come newest first.
func PeriodRollup(lots []inventory.Lot, g Granularity) []RollupBucket {
	buckets := make(map[string]*RollupBucket)
	for i := range lots {
		lot := &lots[i]
		if !lot.Purchase.HasArrived() || len(metrics.BusinessItems(lot)) == 0 {
			continue
		}
		label := PeriodLabel(*lot.Purchase.DeliveryDate, g)
		b, ok := buckets[label]
		if !ok {
			b = &RollupBucket{Period: label, Investment: types.Zero(), Revenue: types.Zero()}
			buckets[label] = b
		}
		b.Count++
		b.Investment = b.Investment.Add(metrics.BusinessCost(lot))
		b.Revenue = b.Revenue.Add(metrics.BusinessRevenue(lot))
	}

	result := make([]RollupBucket, 0, len(buckets))
	for _, b := range buckets {
		b.Margin = b.Revenue.Sub(b.Investment)
		b.MarginPct = types.Percent(b.Margin, b.Investment)
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Period > result[j].Period
	})
	return result
}
