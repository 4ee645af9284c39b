package lots

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockpulse/internal/core/apperror"
	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/inventory"
)

// NewSale registers a sale against an item.
type NewSale struct {
	ItemID      int64
	ExternalRef string
	SaleDate    time.Time
	Channel     string
	GrossPrice  types.Money
	Commission  types.Money
	Note        string
}

// SalePatch amends an unreconciled sale; nil fields are left untouched.
type SalePatch struct {
	SaleDate   *time.Time
	Channel    *string
	GrossPrice *types.Money
	Commission *types.Money
	Note       *string
}

func optionalRef(ref string) *string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	return &ref
}

func (in NewSale) sale(imported bool) *inventory.Sale {
	return &inventory.Sale{
		ItemID:      in.ItemID,
		ExternalRef: optionalRef(in.ExternalRef),
		SaleDate:    types.DateOf(in.SaleDate),
		Channel:     strings.TrimSpace(in.Channel),
		GrossPrice:  in.GrossPrice,
		Commission:  in.Commission,
		Note:        in.Note,
		Imported:    imported,
	}
}

func rejectServiceUseChannel(channel string) error {
	if strings.EqualFold(strings.TrimSpace(channel), inventory.ChannelServiceUse) {
		return apperror.NewValidation("service-use sales are booked by marking the item as service-use").
			WithDetail("field", "channel")
	}
	return nil
}

// RegisterSale records a manual sale.
func (s *Service) RegisterSale(ctx context.Context, in NewSale) (*inventory.Sale, error) {
	sale := in.sale(false)
	if err := sale.Validate(ctx); err != nil {
		return nil, err
	}
	if err := rejectServiceUseChannel(sale.Channel); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.items.GetByID(ctx, sale.ItemID); err != nil {
			return normalizeGetErr(err, "item", sale.ItemID)
		}
		if err := s.checkExternalRef(ctx, sale.ExternalRef); err != nil {
			return err
		}
		if err := s.sales.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		return s.audit(ctx, "sale", sale.ID, ActionCreate, map[string]any{
			"itemId":     sale.ItemID,
			"channel":    sale.Channel,
			"grossPrice": sale.GrossPrice.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *Service) checkExternalRef(ctx context.Context, ref *string) error {
	if ref == nil {
		return nil
	}
	exists, err := s.sales.ExistsByExternalRef(ctx, *ref)
	if err != nil {
		return fmt.Errorf("check external ref: %w", err)
	}
	if exists {
		return apperror.NewDuplicate("sale", "externalRef", *ref)
	}
	return nil
}

// UpdateSale amends a sale that did not come from the billing import.
func (s *Service) UpdateSale(ctx context.Context, id int64, patch SalePatch) (*inventory.Sale, error) {
	var updated *inventory.Sale
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.sales.GetByID(ctx, id)
		if err != nil {
			return normalizeGetErr(err, "sale", id)
		}
		if sale.Imported {
			return apperror.NewBusinessRule(apperror.CodeSaleImported, "imported sales are reconciled and cannot be modified").
				WithDetail("sale_id", id)
		}

		changes := map[string]any{}
		if patch.SaleDate != nil {
			sale.SaleDate = types.DateOf(*patch.SaleDate)
			changes["saleDate"] = sale.SaleDate
		}
		if patch.Channel != nil && !sale.IsServiceUse() {
			if err := rejectServiceUseChannel(*patch.Channel); err != nil {
				return err
			}
			sale.Channel = strings.TrimSpace(*patch.Channel)
			changes["channel"] = sale.Channel
		}
		if patch.GrossPrice != nil {
			changes["grossPrice"] = map[string]any{"old": sale.GrossPrice.String(), "new": patch.GrossPrice.String()}
			sale.GrossPrice = *patch.GrossPrice
		}
		if patch.Commission != nil {
			changes["commission"] = map[string]any{"old": sale.Commission.String(), "new": patch.Commission.String()}
			sale.Commission = *patch.Commission
		}
		if patch.Note != nil {
			sale.Note = *patch.Note
			changes["note"] = sale.Note
		}
		if err := sale.Validate(ctx); err != nil {
			return err
		}
		if err := s.sales.Update(ctx, sale); err != nil {
			return fmt.Errorf("update sale: %w", err)
		}
		updated = sale
		return s.audit(ctx, "sale", id, ActionUpdate, changes)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSale removes a sale. Always allowed; the item becomes unsold again.
func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.sales.GetByID(ctx, id)
		if err != nil {
			return normalizeGetErr(err, "sale", id)
		}
		if err := s.sales.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}
		return s.audit(ctx, "sale", id, ActionDelete, map[string]any{
			"itemId":  sale.ItemID,
			"channel": sale.Channel,
		})
	})
}
