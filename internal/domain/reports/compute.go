package reports

import (
	"time"

	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/domain/metrics"
)

// ComputeMetrics derives every metric of a lot as of the given date.
func ComputeMetrics(lot *inventory.Lot, asOf time.Time, th Thresholds) PurchaseMetrics {
	p := &lot.Purchase
	m := PurchaseMetrics{
		TotalCost:         metrics.TotalCost(p),
		BusinessCost:      metrics.BusinessCost(lot),
		UnitCost:          metrics.UnitCost(lot),
		Revenue:           metrics.BusinessRevenue(lot),
		Margin:            metrics.BusinessMargin(lot),
		MarginPct:         metrics.BusinessMarginPct(lot),
		TotalRevenue:      metrics.Revenue(lot),
		ItemCount:         len(lot.Items),
		SoldCount:         lot.SoldCount(),
		BusinessItems:     len(metrics.BusinessItems(lot)),
		BusinessSold:      metrics.BusinessSoldCount(lot),
		MissingSerial:     lot.MissingSerialCount(),
		StockAge:          metrics.StockAge(p, asOf),
		WaitingDays:       metrics.WaitingDays(p, asOf),
		AverageDaysToSale: metrics.AverageDaysToSale(lot),
		UrgencyScore:      metrics.UrgencyScore(lot, asOf),
		PerformanceScore:  metrics.PerformanceScore(lot),
		Issues:            []string{},
		Alerts:            metrics.Alerts(lot, asOf),
	}
	if row, ok := classify(lot, th); ok {
		m.Issues = row.Issues
	}
	return m
}

// ComputeItemMetrics derives the metrics of one item of the lot.
func ComputeItemMetrics(lot *inventory.Lot, item *inventory.LotItem, asOf time.Time) ItemMetrics {
	daysToSale := metrics.DaysToSale(lot, item)
	grades := make([]metrics.SaleGrade, len(item.Sales))
	for i := range item.Sales {
		grades[i] = metrics.GradeSale(lot, &item.Sales[i])
	}
	return ItemMetrics{
		UnitCost:      metrics.UnitCost(lot),
		Revenue:       metrics.ItemRevenue(item),
		Margin:        metrics.ItemMargin(lot, item),
		MarginPct:     metrics.ItemMarginPct(lot, item),
		DaysInStock:   metrics.DaysInStock(lot, item, asOf),
		DaysToSale:    daysToSale,
		Speed:         metrics.ClassifySpeed(daysToSale),
		Sold:          item.IsSold(),
		ServiceUse:    item.IsServiceUse(),
		MultipleSales: item.HasMultipleSales(),
		SaleCount:     len(item.Sales),
		Grades:        grades,
	}
}

// ListPurchases filters and sorts lots. The input slice is not modified.
func ListPurchases(lots []inventory.Lot, filter StatusFilter, order SortOrder, asOf time.Time, th Thresholds) []PurchaseView {
	selected := selectLots(lots, filter, order, asOf)
	views := make([]PurchaseView, 0, len(selected))
	for i := range selected {
		views = append(views, PurchaseView{
			Purchase: selected[i].Purchase,
			Metrics:  ComputeMetrics(&selected[i], asOf, th),
		})
	}
	return views
}

// ListItems flattens the items of the filtered, sorted lots, keeping lot order.
func ListItems(lots []inventory.Lot, filter StatusFilter, order SortOrder, asOf time.Time) []ItemView {
	selected := selectLots(lots, filter, order, asOf)
	views := make([]ItemView, 0, len(selected))
	for i := range selected {
		lot := &selected[i]
		for j := range lot.Items {
			views = append(views, ItemView{
				Item:         lot.Items[j].Item,
				PurchaseCode: lot.Purchase.Code,
				Metrics:      ComputeItemMetrics(lot, &lot.Items[j], asOf),
			})
		}
	}
	return views
}

func selectLots(lots []inventory.Lot, filter StatusFilter, order SortOrder, asOf time.Time) []inventory.Lot {
	selected := make([]inventory.Lot, 0, len(lots))
	for i := range lots {
		if filter.Match(&lots[i], asOf) {
			selected = append(selected, lots[i])
		}
	}
	order.Sort(selected, asOf)
	return selected
}
