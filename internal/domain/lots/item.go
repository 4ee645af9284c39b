package lots

import (
	"context"
	"fmt"
	"strings"

	"stockpulse/internal/core/apperror"
	"stockpulse/internal/domain/inventory"
)

// ItemPatch amends an unsold item; nil fields are left untouched.
type ItemPatch struct {
	Serial      *string
	Description *string
	Note        *string
}

// AddItem adds an item to an existing purchase, e.g. when back-filling
// serials that were missing at registration.
func (s *Service) AddItem(ctx context.Context, purchaseID int64, in NewItem) (*inventory.Item, error) {
	item := in.item(purchaseID)
	if err := item.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.checkSerial(ctx, item.Serial, 0); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.purchases.GetForUpdate(ctx, purchaseID)
		if err != nil {
			return normalizeGetErr(err, "purchase", purchaseID)
		}
		if err := s.items.Create(ctx, item); err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		if in.ServiceUse {
			lot, err := s.lots.LoadLot(ctx, purchaseID)
			if err != nil {
				return fmt.Errorf("load lot %d: %w", purchaseID, err)
			}
			if err := s.bookServiceUse(ctx, lot, item.ID, s.serviceUseDate(p)); err != nil {
				return err
			}
		}
		return s.audit(ctx, "item", item.ID, ActionCreate, map[string]any{
			"purchaseId": purchaseID,
			"serial":     item.Serial,
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem returns an item by id.
func (s *Service) GetItem(ctx context.Context, id int64) (*inventory.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, normalizeGetErr(err, "item", id)
	}
	return item, nil
}

// UpdateItem amends descriptive fields. Sold items are immutable.
func (s *Service) UpdateItem(ctx context.Context, id int64, patch ItemPatch) (*inventory.Item, error) {
	var updated *inventory.Item
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		item, err := s.items.GetByID(ctx, id)
		if err != nil {
			return normalizeGetErr(err, "item", id)
		}
		count, err := s.sales.CountByItem(ctx, id)
		if err != nil {
			return fmt.Errorf("count item sales: %w", err)
		}
		if count > 0 {
			return apperror.NewItemSold(id)
		}

		changes := map[string]any{}
		if patch.Serial != nil {
			serial := inventory.NormalizeSerial(*patch.Serial)
			if err := s.checkSerial(ctx, serial, id); err != nil {
				return err
			}
			changes["serial"] = map[string]any{"old": item.Serial, "new": serial}
			item.Serial = serial
		}
		if patch.Description != nil {
			item.Description = strings.TrimSpace(*patch.Description)
			changes["description"] = item.Description
		}
		if patch.Note != nil {
			item.Note = *patch.Note
			changes["note"] = item.Note
		}
		if err := item.Validate(ctx); err != nil {
			return err
		}
		if err := s.items.Update(ctx, item); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		updated = item
		return s.audit(ctx, "item", id, ActionUpdate, changes)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem removes an unsold item. The error names the blocking sales.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		item, err := s.items.GetByID(ctx, id)
		if err != nil {
			return normalizeGetErr(err, "item", id)
		}
		count, err := s.sales.CountByItem(ctx, id)
		if err != nil {
			return fmt.Errorf("count item sales: %w", err)
		}
		if count > 0 {
			return apperror.NewHasSales("item", id, count)
		}
		if err := s.items.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		return s.audit(ctx, "item", id, ActionDelete, map[string]any{
			"purchaseId": item.PurchaseID,
			"serial":     item.Serial,
		})
	})
}
