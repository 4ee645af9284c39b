package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/domain/metrics"
)

var staleAfter = decimal.NewFromInt(StaleAfterDays)

// classify builds the performance row of an arrived lot with business items.
func classify(lot *inventory.Lot, th Thresholds) (PerformanceRow, bool) {
	if !lot.Purchase.HasArrived() {
		return PerformanceRow{}, false
	}
	total := len(metrics.BusinessItems(lot))
	if total == 0 {
		return PerformanceRow{}, false
	}

	sold := metrics.BusinessSoldCount(lot)
	row := PerformanceRow{
		PurchaseID:        lot.Purchase.ID,
		PurchaseCode:      lot.Purchase.Code,
		BusinessItems:     total,
		BusinessSold:      sold,
		Complete:          sold == total,
		AverageDaysToSale: metrics.AverageDaysToSale(lot),
		Investment:        metrics.BusinessCost(lot),
		Revenue:           metrics.BusinessRevenue(lot),
		Margin:            metrics.BusinessMargin(lot),
		MarginPct:         metrics.BusinessMarginPct(lot),
		PerformanceScore:  metrics.PerformanceScore(lot),
		Issues:            []string{},
	}

	if !row.Complete {
		row.Issues = append(row.Issues, fmt.Sprintf("partial sale (%d/%d)", sold, total))
	} else if mean := metrics.MeanDaysToSale(lot); mean != nil && mean.GreaterThan(staleAfter) {
		row.Issues = append(row.Issues, fmt.Sprintf("slow sale (%s days)", mean.Round(1).String()))
	}
	if th.IsLowMargin(row.MarginPct) {
		row.Issues = append(row.Issues, fmt.Sprintf("low margin (%s%%)", row.MarginPct.StringFixed(1)))
	}

	row.Status = StatusOK
	if len(row.Issues) > 0 {
		row.Status = StatusProblems
	}
	return row, true
}

// ClassifyPerformance classifies every arrived lot with business items,
// problematic lots first, then by ascending margin.
func ClassifyPerformance(lots []inventory.Lot, th Thresholds) []PerformanceRow {
	rows := make([]PerformanceRow, 0, len(lots))
	for i := range lots {
		if row, ok := classify(&lots[i], th); ok {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := rows[i].Status == StatusProblems, rows[j].Status == StatusProblems
		if pi != pj {
			return pi
		}
		return rows[i].MarginPct.LessThan(rows[j].MarginPct)
	})
	return rows
}

// StalenessReport lists unsold business items of lots that arrived more than
// StaleAfterDays ago, oldest first.
func StalenessReport(lots []inventory.Lot, asOf time.Time) []StaleItem {
	var stale []StaleItem
	for i := range lots {
		lot := &lots[i]
		age := metrics.StockAge(&lot.Purchase, asOf)
		if age == nil || *age <= StaleAfterDays {
			continue
		}
		unitCost := metrics.UnitCost(lot)
		for _, item := range metrics.BusinessItems(lot) {
			if item.IsSold() {
				continue
			}
			stale = append(stale, StaleItem{
				Item:         item.Item,
				PurchaseID:   lot.Purchase.ID,
				PurchaseCode: lot.Purchase.Code,
				StockAgeDays: *age,
				UnitCost:     unitCost,
			})
		}
	}
	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].StockAgeDays > stale[j].StockAgeDays
	})
	return stale
}

// CriticalMarginReport lists lots with at least one business sale and a
// business margin below the low-margin limit, lowest margin first.
func CriticalMarginReport(lots []inventory.Lot, th Thresholds) []CriticalMarginRow {
	var rows []CriticalMarginRow
	for i := range lots {
		lot := &lots[i]
		if !metrics.HasBusinessSale(lot) {
			continue
		}
		pct := metrics.BusinessMarginPct(lot)
		if !th.IsLowMargin(pct) {
			continue
		}
		rows = append(rows, CriticalMarginRow{
			PurchaseID:         lot.Purchase.ID,
			PurchaseCode:       lot.Purchase.Code,
			BusinessItemsTotal: len(metrics.BusinessItems(lot)),
			BusinessItemsSold:  metrics.BusinessSoldCount(lot),
			Investment:         metrics.BusinessCost(lot),
			Revenue:            metrics.BusinessRevenue(lot),
			Margin:             metrics.BusinessMargin(lot),
			MarginPct:          pct,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].MarginPct.LessThan(rows[j].MarginPct)
	})
	return rows
}

// DataQualityReport lists items carrying more than one sale.
func DataQualityReport(lots []inventory.Lot) []DataQualityRow {
	var rows []DataQualityRow
	for i := range lots {
		lot := &lots[i]
		for j := range lot.Items {
			item := &lot.Items[j]
			if !item.HasMultipleSales() {
				continue
			}
			channels := make([]string, 0, len(item.Sales))
			for _, s := range item.Sales {
				channels = append(channels, s.Channel)
			}
			rows = append(rows, DataQualityRow{
				ItemID:       item.Item.ID,
				Serial:       item.Item.Serial,
				Description:  item.Item.Description,
				PurchaseCode: lot.Purchase.Code,
				SaleCount:    len(item.Sales),
				Channels:     channels,
				Revenue:      metrics.ItemRevenue(item),
			})
		}
	}
	return rows
}
