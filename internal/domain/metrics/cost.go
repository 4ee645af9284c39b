// Package metrics derives costs, margins, stock age and scores from lot
// snapshots. Every function is pure: the same lot and as-of date always
// produce the same result, and degenerate inputs resolve to 0 or nil
// instead of an error.
package metrics

import (
	"github.com/shopspring/decimal"

	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/inventory"
)

// TotalCost is base cost plus accessory cost.
func TotalCost(p *inventory.Purchase) types.Money {
	return p.BaseCost.Add(p.AccessoryCost)
}

// UnitCost spreads the total cost equally over every item of the lot,
// service-use items included. An empty lot has unit cost 0.
func UnitCost(lot *inventory.Lot) types.Money {
	if len(lot.Items) == 0 {
		return types.Zero()
	}
	return TotalCost(&lot.Purchase).Div(decimal.NewFromInt(int64(len(lot.Items))))
}

// NetRevenue is gross price minus commission. It may be negative.
func NetRevenue(s *inventory.Sale) types.Money {
	return s.GrossPrice.Sub(s.Commission)
}

// ItemRevenue sums the net revenue of every sale of the item.
func ItemRevenue(item *inventory.LotItem) types.Money {
	total := types.Zero()
	for i := range item.Sales {
		total = total.Add(NetRevenue(&item.Sales[i]))
	}
	return total
}

// ItemMargin is item revenue minus the allocated unit cost.
func ItemMargin(lot *inventory.Lot, item *inventory.LotItem) types.Money {
	return ItemRevenue(item).Sub(UnitCost(lot))
}

// ItemMarginPct is the item margin relative to unit cost, 0 when unit cost is 0.
func ItemMarginPct(lot *inventory.Lot, item *inventory.LotItem) decimal.Decimal {
	return types.Percent(ItemMargin(lot, item), UnitCost(lot))
}

// SaleMargin is the margin of a single sale against the item's unit cost.
func SaleMargin(lot *inventory.Lot, s *inventory.Sale) types.Money {
	return NetRevenue(s).Sub(UnitCost(lot))
}

// SaleMarginPct is SaleMargin relative to unit cost.
func SaleMarginPct(lot *inventory.Lot, s *inventory.Sale) decimal.Decimal {
	return types.Percent(SaleMargin(lot, s), UnitCost(lot))
}

// --- Business subset (service-use items excluded) ---

// BusinessItems returns the items that were not consumed internally.
func BusinessItems(lot *inventory.Lot) []*inventory.LotItem {
	items := make([]*inventory.LotItem, 0, len(lot.Items))
	for i := range lot.Items {
		if !lot.Items[i].IsServiceUse() {
			items = append(items, &lot.Items[i])
		}
	}
	return items
}

// BusinessSoldCount returns the number of sold business items.
func BusinessSoldCount(lot *inventory.Lot) int {
	n := 0
	for _, item := range BusinessItems(lot) {
		if item.IsSold() {
			n++
		}
	}
	return n
}

// BusinessCost is the unit cost times the number of business items.
// The cost is never re-divided over the smaller subset.
func BusinessCost(lot *inventory.Lot) types.Money {
	return UnitCost(lot).Mul(decimal.NewFromInt(int64(len(BusinessItems(lot)))))
}

// BusinessRevenue sums the net revenue of business items.
func BusinessRevenue(lot *inventory.Lot) types.Money {
	total := types.Zero()
	for _, item := range BusinessItems(lot) {
		total = total.Add(ItemRevenue(item))
	}
	return total
}

// BusinessMargin is business revenue minus business cost.
func BusinessMargin(lot *inventory.Lot) types.Money {
	return BusinessRevenue(lot).Sub(BusinessCost(lot))
}

// BusinessMarginPct is the business margin relative to business cost,
// 0 when business cost is 0.
func BusinessMarginPct(lot *inventory.Lot) decimal.Decimal {
	return types.Percent(BusinessMargin(lot), BusinessCost(lot))
}

// HasBusinessSale reports whether any sale of the lot is not service-use.
func HasBusinessSale(lot *inventory.Lot) bool {
	for i := range lot.Items {
		for j := range lot.Items[i].Sales {
			if !lot.Items[i].Sales[j].IsServiceUse() {
				return true
			}
		}
	}
	return false
}

// Revenue sums the net revenue of every sale in the lot.
func Revenue(lot *inventory.Lot) types.Money {
	total := types.Zero()
	for i := range lot.Items {
		total = total.Add(ItemRevenue(&lot.Items[i]))
	}
	return total
}
