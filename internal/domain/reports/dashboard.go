package reports

import (
	"time"

	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/domain/metrics"
)

// UrgentScore is the urgency score from which a lot counts as urgent.
const UrgentScore = 50

// BuildDashboard summarizes all lots. Margin and ROI cover lots with at
// least one business sale.
func BuildDashboard(lots []inventory.Lot, asOf time.Time) Dashboard {
	d := Dashboard{
		AsOf:       asOf,
		Purchases:  len(lots),
		Investment: types.Zero(),
		Revenue:    types.Zero(),
		Margin:     types.Zero(),
	}
	soldCost := types.Zero()

	for i := range lots {
		lot := &lots[i]
		if lot.SaleCount() > 0 {
			d.PurchasesWithSales++
		}
		d.ItemsSold += lot.SoldCount()
		d.ItemsInStock += lot.UnsoldCount()
		d.Investment = d.Investment.Add(metrics.TotalCost(&lot.Purchase))
		d.Revenue = d.Revenue.Add(metrics.BusinessRevenue(lot))

		if metrics.HasBusinessSale(lot) {
			d.Margin = d.Margin.Add(metrics.BusinessMargin(lot))
			soldCost = soldCost.Add(metrics.BusinessCost(lot))
		}
		if metrics.UrgencyScore(lot, asOf) >= UrgentScore {
			d.UrgentPurchases++
		}
	}

	d.PurchasesNoSales = d.Purchases - d.PurchasesWithSales
	d.ROIPct = types.Percent(d.Margin, soldCost)
	return d
}
