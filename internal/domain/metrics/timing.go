package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/inventory"
)

// StockAge is the number of days since the lot arrived, nil if it has not.
func StockAge(p *inventory.Purchase, asOf time.Time) *int {
	if !p.HasArrived() {
		return nil
	}
	return types.IntPtr(types.DaysBetween(*p.DeliveryDate, asOf))
}

// WaitingDays is the number of days a not-yet-arrived lot has been waiting,
// counted from the payment date or, failing that, the creation date.
// Nil once the lot has arrived.
func WaitingDays(p *inventory.Purchase, asOf time.Time) *int {
	if p.HasArrived() {
		return nil
	}
	since := p.CreatedAt
	if p.PaymentDate != nil {
		since = *p.PaymentDate
	}
	return types.IntPtr(types.DaysBetween(since, asOf))
}

// DaysInStock is nil for sold items and for lots that have not arrived.
func DaysInStock(lot *inventory.Lot, item *inventory.LotItem, asOf time.Time) *int {
	if item.IsSold() {
		return nil
	}
	return StockAge(&lot.Purchase, asOf)
}

// SaleDays is the number of days from arrival to the given sale.
func SaleDays(lot *inventory.Lot, s *inventory.Sale) *int {
	if !lot.Purchase.HasArrived() {
		return nil
	}
	return types.IntPtr(types.DaysBetween(*lot.Purchase.DeliveryDate, s.SaleDate))
}

// DaysToSale measures arrival to the latest non-service-use sale.
// Nil for unsold and service-use items and for lots that never arrived.
func DaysToSale(lot *inventory.Lot, item *inventory.LotItem) *int {
	if !item.IsSold() || item.IsServiceUse() || !lot.Purchase.HasArrived() {
		return nil
	}
	var latest *inventory.Sale
	for i := range item.Sales {
		s := &item.Sales[i]
		if s.IsServiceUse() {
			continue
		}
		if latest == nil || s.SaleDate.After(latest.SaleDate) {
			latest = s
		}
	}
	if latest == nil {
		return nil
	}
	return SaleDays(lot, latest)
}

// MeanDaysToSale is the exact mean DaysToSale over sold business items.
// Thresholds compare against this value, never the rounded one.
func MeanDaysToSale(lot *inventory.Lot) *decimal.Decimal {
	total, count := 0, 0
	for _, item := range BusinessItems(lot) {
		if d := DaysToSale(lot, item); d != nil {
			total += *d
			count++
		}
	}
	if count == 0 {
		return nil
	}
	mean := decimal.NewFromInt(int64(total)).Div(decimal.NewFromInt(int64(count)))
	return &mean
}

// AverageDaysToSale is MeanDaysToSale rounded to whole days, for display.
func AverageDaysToSale(lot *inventory.Lot) *int {
	mean := MeanDaysToSale(lot)
	if mean == nil {
		return nil
	}
	return types.IntPtr(int(mean.Round(0).IntPart()))
}
