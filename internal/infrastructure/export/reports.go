package export

import (
	"strings"

	"github.com/shopspring/decimal"

	"stockpulse/internal/domain/reports"
)

const dateLayout = "2006-01-02"

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func pct(d decimal.Decimal) float64 {
	return d.Round(1).InexactFloat64()
}

// optInt renders a missing value as an empty cell.
func optInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

// PurchasesSheet lists purchases with their headline metrics.
func PurchasesSheet(views []reports.PurchaseView) Sheet {
	sh := Sheet{
		Name: "Purchases",
		Headings: []string{
			"Code", "Source", "Seller", "Buyer", "Payment date", "Delivery date",
			"Items", "Sold", "Total cost", "Revenue", "Margin", "Margin %",
			"Stock age", "Urgency", "Performance", "Alerts",
		},
	}
	for _, v := range views {
		p, m := v.Purchase, v.Metrics
		payment, delivery := "", ""
		if p.PaymentDate != nil {
			payment = p.PaymentDate.Format(dateLayout)
		}
		if p.DeliveryDate != nil {
			delivery = p.DeliveryDate.Format(dateLayout)
		}
		sh.Rows = append(sh.Rows, []any{
			p.Code, p.Source, p.Seller, p.Buyer, payment, delivery,
			m.ItemCount, m.SoldCount, money(m.TotalCost), money(m.Revenue), money(m.Margin), pct(m.MarginPct),
			optInt(m.StockAge), m.UrgencyScore, optInt(m.PerformanceScore), strings.Join(m.Alerts, "; "),
		})
	}
	return sh
}

// ItemsSheet lists items with their metrics and sale grades.
func ItemsSheet(views []reports.ItemView) Sheet {
	sh := Sheet{
		Name: "Items",
		Headings: []string{
			"Code", "Serial", "Description", "Unit cost", "Revenue", "Margin", "Margin %",
			"Days in stock", "Days to sale", "Speed", "Grade",
		},
	}
	for _, v := range views {
		m := v.Metrics
		grades := make([]string, len(m.Grades))
		for i, g := range m.Grades {
			grades[i] = string(g)
		}
		sh.Rows = append(sh.Rows, []any{
			v.PurchaseCode, v.Item.Serial, v.Item.Description,
			money(m.UnitCost), money(m.Revenue), money(m.Margin), pct(m.MarginPct),
			optInt(m.DaysInStock), optInt(m.DaysToSale), string(m.Speed), strings.Join(grades, ", "),
		})
	}
	return sh
}

// PerformanceSheet renders the performance classification.
func PerformanceSheet(rows []reports.PerformanceRow) Sheet {
	sh := Sheet{
		Name: "Performance",
		Headings: []string{
			"Code", "Items", "Sold", "Avg days to sale", "Investment", "Revenue",
			"Margin", "Margin %", "Score", "Status", "Issues",
		},
	}
	for _, r := range rows {
		sh.Rows = append(sh.Rows, []any{
			r.PurchaseCode, r.BusinessItems, r.BusinessSold, optInt(r.AverageDaysToSale),
			money(r.Investment), money(r.Revenue), money(r.Margin), pct(r.MarginPct),
			optInt(r.PerformanceScore), r.Status, strings.Join(r.Issues, "; "),
		})
	}
	return sh
}

// RollupSheet renders period buckets.
func RollupSheet(buckets []reports.RollupBucket) Sheet {
	sh := Sheet{
		Name:     "Rollup",
		Headings: []string{"Period", "Purchases", "Investment", "Revenue", "Margin", "Margin %"},
	}
	for _, b := range buckets {
		sh.Rows = append(sh.Rows, []any{
			b.Period, b.Count, money(b.Investment), money(b.Revenue), money(b.Margin), pct(b.MarginPct),
		})
	}
	return sh
}

// StalenessSheet renders unsold items of old lots.
func StalenessSheet(items []reports.StaleItem) Sheet {
	sh := Sheet{
		Name:     "Staleness",
		Headings: []string{"Code", "Serial", "Description", "Stock age", "Unit cost"},
	}
	for _, s := range items {
		sh.Rows = append(sh.Rows, []any{
			s.PurchaseCode, s.Item.Serial, s.Item.Description, s.StockAgeDays, money(s.UnitCost),
		})
	}
	return sh
}

// CriticalMarginSheet renders lots under the margin threshold.
func CriticalMarginSheet(rows []reports.CriticalMarginRow) Sheet {
	sh := Sheet{
		Name:     "Critical margin",
		Headings: []string{"Code", "Items", "Sold", "Investment", "Revenue", "Margin", "Margin %"},
	}
	for _, r := range rows {
		sh.Rows = append(sh.Rows, []any{
			r.PurchaseCode, r.BusinessItemsTotal, r.BusinessItemsSold,
			money(r.Investment), money(r.Revenue), money(r.Margin), pct(r.MarginPct),
		})
	}
	return sh
}

// DataQualitySheet renders items with more than one sale.
func DataQualitySheet(rows []reports.DataQualityRow) Sheet {
	sh := Sheet{
		Name:     "Data quality",
		Headings: []string{"Code", "Serial", "Description", "Sales", "Channels", "Revenue"},
	}
	for _, r := range rows {
		sh.Rows = append(sh.Rows, []any{
			r.PurchaseCode, r.Serial, r.Description, r.SaleCount, strings.Join(r.Channels, ", "), money(r.Revenue),
		})
	}
	return sh
}
