package lots

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"stockpulse/internal/core/apperror"
	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/domain/metrics"
)

const serviceUseNote = "Consumed for repairs - neutral margin"

// ServiceUseRef is the external reference of the synthetic service-use sale.
func ServiceUseRef(itemID int64) string {
	return "SERVICE-USE-" + strconv.FormatInt(itemID, 10)
}

// MarkServiceUse books an unsold item as consumed internally. The synthetic
// sale is priced at the item's allocated unit cost, rounded to cents.
func (s *Service) MarkServiceUse(ctx context.Context, itemID int64, at *time.Time) (*inventory.Sale, error) {
	var created *inventory.Sale
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		item, err := s.items.GetByID(ctx, itemID)
		if err != nil {
			return normalizeGetErr(err, "item", itemID)
		}
		lot, err := s.lots.LoadLot(ctx, item.PurchaseID)
		if err != nil {
			return fmt.Errorf("load lot %d: %w", item.PurchaseID, err)
		}
		date := types.DateOf(s.now())
		if at != nil {
			date = types.DateOf(*at)
		}
		created, err = s.serviceUseSale(lot, itemID, date)
		if err != nil {
			return err
		}
		if err := s.sales.Create(ctx, created); err != nil {
			return fmt.Errorf("create service-use sale: %w", err)
		}
		return s.audit(ctx, "item", itemID, ActionServiceUse, map[string]any{
			"saleId": created.ID,
			"price":  created.GrossPrice.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// bookServiceUse creates the synthetic sale inside an open transaction.
func (s *Service) bookServiceUse(ctx context.Context, lot *inventory.Lot, itemID int64, at time.Time) error {
	sale, err := s.serviceUseSale(lot, itemID, at)
	if err != nil {
		return err
	}
	if err := s.sales.Create(ctx, sale); err != nil {
		return fmt.Errorf("create service-use sale: %w", err)
	}
	return nil
}

func (s *Service) serviceUseSale(lot *inventory.Lot, itemID int64, at time.Time) (*inventory.Sale, error) {
	item, ok := lot.FindItem(itemID)
	if !ok {
		return nil, apperror.NewNotFound("item", itemID)
	}
	if item.IsSold() {
		return nil, apperror.NewBusinessRule(apperror.CodeAlreadySold, "item already has a sale").
			WithDetail("item_id", itemID).
			WithDetail("sales", len(item.Sales))
	}
	ref := ServiceUseRef(itemID)
	return &inventory.Sale{
		ItemID:      itemID,
		ExternalRef: &ref,
		SaleDate:    types.DateOf(at),
		Channel:     inventory.ChannelServiceUse,
		GrossPrice:  types.RoundMoney(metrics.UnitCost(lot)),
		Commission:  types.Zero(),
		Note:        serviceUseNote,
	}, nil
}
