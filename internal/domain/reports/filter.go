package reports

import (
	"sort"
	"time"

	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/domain/metrics"
)

// StatusFilter selects lots by sale and arrival state. Exactly one is active.
type StatusFilter string

const (
	FilterAll            StatusFilter = "all"
	FilterInStock        StatusFilter = "in_stock"
	FilterFullySold      StatusFilter = "fully_sold"
	FilterPartiallySold  StatusFilter = "partially_sold"
	FilterMissingSerials StatusFilter = "missing_serials"
	FilterNotArrived     StatusFilter = "not_arrived"
	FilterProblematic    StatusFilter = "problematic"
)

// ParseStatusFilter maps a query value onto a filter; empty means all.
func ParseStatusFilter(s string) (StatusFilter, bool) {
	switch f := StatusFilter(s); f {
	case "":
		return FilterAll, true
	case FilterAll, FilterInStock, FilterFullySold, FilterPartiallySold,
		FilterMissingSerials, FilterNotArrived, FilterProblematic:
		return f, true
	default:
		return "", false
	}
}

// Match reports whether the lot passes the filter as of the given date.
func (f StatusFilter) Match(lot *inventory.Lot, asOf time.Time) bool {
	sold, unsold := lot.SoldCount(), lot.UnsoldCount()
	switch f {
	case FilterInStock:
		return unsold > 0
	case FilterFullySold:
		return len(lot.Items) > 0 && unsold == 0
	case FilterPartiallySold:
		return sold > 0 && unsold > 0
	case FilterMissingSerials:
		return lot.MissingSerialCount() > 0
	case FilterNotArrived:
		return !lot.Purchase.HasArrived()
	case FilterProblematic:
		return isProblematic(lot, asOf)
	default:
		return true
	}
}

// isProblematic: a business item lacks a real serial, the lot has not
// arrived, or it arrived over StaleAfterDays ago with unsold business items.
func isProblematic(lot *inventory.Lot, asOf time.Time) bool {
	if !lot.Purchase.HasArrived() {
		return true
	}
	business := metrics.BusinessItems(lot)
	for _, item := range business {
		if !item.Item.HasRealSerial() {
			return true
		}
	}
	if age := metrics.StockAge(&lot.Purchase, asOf); *age > StaleAfterDays {
		for _, item := range business {
			if !item.IsSold() {
				return true
			}
		}
	}
	return false
}

// SortOrder orders lot listings.
type SortOrder string

const (
	SortCreatedDesc  SortOrder = "created_desc"
	SortPaymentAsc   SortOrder = "payment_asc"
	SortPaymentDesc  SortOrder = "payment_desc"
	SortArrivalAsc   SortOrder = "arrival_asc"
	SortArrivalDesc  SortOrder = "arrival_desc"
	SortCostDesc     SortOrder = "cost_desc"
	SortUrgency      SortOrder = "urgency"
	SortUrgencyScore SortOrder = "urgency_score"
)

// ParseSortOrder maps a query value onto a sort order; empty means newest first.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch o := SortOrder(s); o {
	case "":
		return SortCreatedDesc, true
	case SortCreatedDesc, SortPaymentAsc, SortPaymentDesc, SortArrivalAsc,
		SortArrivalDesc, SortCostDesc, SortUrgency, SortUrgencyScore:
		return o, true
	default:
		return "", false
	}
}

// compareDates orders nil dates last regardless of direction.
func compareDates(a, b *time.Time, desc bool) (less, decided bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return false, true
	case b == nil:
		return true, true
	case a.Equal(*b):
		return false, false
	case desc:
		return a.After(*b), true
	default:
		return a.Before(*b), true
	}
}

func createdDesc(a, b *inventory.Lot) bool {
	return a.Purchase.CreatedAt.After(b.Purchase.CreatedAt)
}

// Sort orders lots in place. Ties keep newest-created first, then input order.
func (o SortOrder) Sort(lots []inventory.Lot, asOf time.Time) {
	var scores map[int64]int
	if o == SortUrgencyScore {
		scores = make(map[int64]int, len(lots))
		for i := range lots {
			scores[lots[i].Purchase.ID] = metrics.UrgencyScore(&lots[i], asOf)
		}
	}

	sort.SliceStable(lots, func(i, j int) bool {
		a, b := &lots[i], &lots[j]
		switch o {
		case SortPaymentAsc, SortPaymentDesc:
			if less, ok := compareDates(a.Purchase.PaymentDate, b.Purchase.PaymentDate, o == SortPaymentDesc); ok {
				return less
			}
		case SortArrivalAsc, SortArrivalDesc:
			if less, ok := compareDates(a.Purchase.DeliveryDate, b.Purchase.DeliveryDate, o == SortArrivalDesc); ok {
				return less
			}
		case SortCostDesc:
			ca, cb := metrics.TotalCost(&a.Purchase), metrics.TotalCost(&b.Purchase)
			if !ca.Equal(cb) {
				return ca.GreaterThan(cb)
			}
		case SortUrgency:
			if a.Purchase.HasArrived() != b.Purchase.HasArrived() {
				return !a.Purchase.HasArrived()
			}
		case SortUrgencyScore:
			if sa, sb := scores[a.Purchase.ID], scores[b.Purchase.ID]; sa != sb {
				return sa > sb
			}
		}
		return createdDesc(a, b)
	})
}
