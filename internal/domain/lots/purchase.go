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

// NewPurchase registers a batch together with its initial items.
type NewPurchase struct {
	Code          string
	Source        string
	Seller        string
	Buyer         string
	BaseCost      types.Money
	AccessoryCost types.Money
	PaymentDate   *time.Time
	DeliveryDate  *time.Time
	Note          string
	Items         []NewItem
}

// NewItem describes an item to add to a purchase.
type NewItem struct {
	Serial      string
	Description string
	Note        string

	// ServiceUse books the item as consumed internally right away.
	ServiceUse bool
}

// PurchasePatch amends a purchase; nil fields are left untouched.
type PurchasePatch struct {
	Source        *string
	Seller        *string
	Buyer         *string
	BaseCost      *types.Money
	AccessoryCost *types.Money
	PaymentDate   *time.Time
	DeliveryDate  *time.Time
	Note          *string

	ClearPaymentDate  bool
	ClearDeliveryDate bool
}

func (in NewPurchase) purchase() *inventory.Purchase {
	buyer := strings.TrimSpace(in.Buyer)
	if buyer == "" {
		buyer = inventory.DefaultBuyer
	}
	return &inventory.Purchase{
		Code:          strings.TrimSpace(in.Code),
		Source:        strings.TrimSpace(in.Source),
		Seller:        strings.TrimSpace(in.Seller),
		Buyer:         buyer,
		BaseCost:      in.BaseCost,
		AccessoryCost: in.AccessoryCost,
		PaymentDate:   in.PaymentDate,
		DeliveryDate:  in.DeliveryDate,
		Note:          in.Note,
	}
}

func (in NewItem) item(purchaseID int64) *inventory.Item {
	return &inventory.Item{
		PurchaseID:  purchaseID,
		Serial:      inventory.NormalizeSerial(in.Serial),
		Description: strings.TrimSpace(in.Description),
		Note:        in.Note,
	}
}

// CreatePurchase registers a purchase and its items in one transaction.
// Duplicate codes and serials are rejected naming the conflicting value.
func (s *Service) CreatePurchase(ctx context.Context, in NewPurchase) (*inventory.Lot, error) {
	p := in.purchase()
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(in.Items))
	for i, ni := range in.Items {
		item := ni.item(0)
		if err := item.Validate(ctx); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return nil, appErr.WithDetail("item", i)
			}
			return nil, err
		}
		if item.HasRealSerial() {
			if _, dup := seen[item.Serial]; dup {
				return nil, apperror.NewDuplicate("item", "serial", item.Serial)
			}
			seen[item.Serial] = struct{}{}
		}
	}

	exists, err := s.purchases.ExistsByCode(ctx, p.Code)
	if err != nil {
		return nil, fmt.Errorf("check purchase code: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("purchase", "code", p.Code)
	}
	for serial := range seen {
		if err := s.checkSerial(ctx, serial, 0); err != nil {
			return nil, err
		}
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.purchases.Create(ctx, p); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		if _, err := s.createItems(ctx, p, in.Items); err != nil {
			return err
		}
		return s.audit(ctx, "purchase", p.ID, ActionCreate, map[string]any{
			"code":  p.Code,
			"items": len(in.Items),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.Lot(ctx, p.ID)
}

// createItems inserts items and books the synthetic sale of service-use
// items at the unit cost of the final item count. Returns the number of
// service-use sales created.
func (s *Service) createItems(ctx context.Context, p *inventory.Purchase, items []NewItem) (int, error) {
	var serviceUse []*inventory.Item
	for _, ni := range items {
		item := ni.item(p.ID)
		if err := s.items.Create(ctx, item); err != nil {
			return 0, fmt.Errorf("create item: %w", err)
		}
		if ni.ServiceUse {
			serviceUse = append(serviceUse, item)
		}
	}
	if len(serviceUse) == 0 {
		return 0, nil
	}

	lot, err := s.lots.LoadLot(ctx, p.ID)
	if err != nil {
		return 0, fmt.Errorf("load lot %d: %w", p.ID, err)
	}
	at := s.serviceUseDate(p)
	for _, item := range serviceUse {
		if err := s.bookServiceUse(ctx, lot, item.ID, at); err != nil {
			return 0, err
		}
	}
	return len(serviceUse), nil
}

// serviceUseDate is the arrival date, or today for lots still in transit.
func (s *Service) serviceUseDate(p *inventory.Purchase) time.Time {
	if p.DeliveryDate != nil {
		return *p.DeliveryDate
	}
	return types.DateOf(s.now())
}

// GetPurchase returns a purchase by id.
func (s *Service) GetPurchase(ctx context.Context, id int64) (*inventory.Purchase, error) {
	p, err := s.purchases.GetByID(ctx, id)
	if err != nil {
		return nil, normalizeGetErr(err, "purchase", id)
	}
	return p, nil
}

// UpdatePurchase amends costs, dates and descriptive fields.
func (s *Service) UpdatePurchase(ctx context.Context, id int64, patch PurchasePatch) (*inventory.Purchase, error) {
	return s.mutatePurchase(ctx, id, ActionUpdate, func(p *inventory.Purchase) map[string]any {
		changes := map[string]any{}
		if patch.Source != nil {
			p.Source = strings.TrimSpace(*patch.Source)
			changes["source"] = p.Source
		}
		if patch.Seller != nil {
			p.Seller = strings.TrimSpace(*patch.Seller)
			changes["seller"] = p.Seller
		}
		if patch.Buyer != nil {
			p.Buyer = strings.TrimSpace(*patch.Buyer)
			changes["buyer"] = p.Buyer
		}
		if patch.BaseCost != nil {
			changes["baseCost"] = map[string]any{"old": p.BaseCost.String(), "new": patch.BaseCost.String()}
			p.BaseCost = *patch.BaseCost
		}
		if patch.AccessoryCost != nil {
			changes["accessoryCost"] = map[string]any{"old": p.AccessoryCost.String(), "new": patch.AccessoryCost.String()}
			p.AccessoryCost = *patch.AccessoryCost
		}
		switch {
		case patch.ClearPaymentDate:
			p.PaymentDate = nil
			changes["paymentDate"] = nil
		case patch.PaymentDate != nil:
			p.PaymentDate = patch.PaymentDate
			changes["paymentDate"] = patch.PaymentDate
		}
		switch {
		case patch.ClearDeliveryDate:
			p.DeliveryDate = nil
			changes["deliveryDate"] = nil
		case patch.DeliveryDate != nil:
			p.DeliveryDate = patch.DeliveryDate
			changes["deliveryDate"] = patch.DeliveryDate
		}
		if patch.Note != nil {
			p.Note = *patch.Note
			changes["note"] = p.Note
		}
		return changes
	})
}

// MarkArrived sets the delivery date, today when at is nil.
func (s *Service) MarkArrived(ctx context.Context, id int64, at *time.Time) (*inventory.Purchase, error) {
	arrived := types.DateOf(s.now())
	if at != nil {
		arrived = types.DateOf(*at)
	}
	return s.mutatePurchase(ctx, id, ActionUpdate, func(p *inventory.Purchase) map[string]any {
		p.DeliveryDate = &arrived
		return map[string]any{"deliveryDate": arrived}
	})
}

// FlagProblem records a manual problem report on the purchase.
func (s *Service) FlagProblem(ctx context.Context, id int64, problem inventory.ProblemType, description string) (*inventory.Purchase, error) {
	if !problem.Valid() {
		return nil, apperror.NewValidation("unknown problem type").WithDetail("problemType", string(problem))
	}
	at := s.now().UTC()
	return s.mutatePurchase(ctx, id, ActionUpdate, func(p *inventory.Purchase) map[string]any {
		p.FlagProblem(problem, description, at)
		return map[string]any{"problemType": problem, "problemDescription": description}
	})
}

// ClearProblem removes a flagged problem.
func (s *Service) ClearProblem(ctx context.Context, id int64) (*inventory.Purchase, error) {
	return s.mutatePurchase(ctx, id, ActionUpdate, func(p *inventory.Purchase) map[string]any {
		p.ClearProblem()
		return map[string]any{"problemFlagged": false}
	})
}

func (s *Service) mutatePurchase(
	ctx context.Context,
	id int64,
	action string,
	apply func(p *inventory.Purchase) map[string]any,
) (*inventory.Purchase, error) {
	var updated *inventory.Purchase
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.purchases.GetForUpdate(ctx, id)
		if err != nil {
			return normalizeGetErr(err, "purchase", id)
		}
		changes := apply(p)
		if err := p.Validate(ctx); err != nil {
			return err
		}
		if err := s.purchases.Update(ctx, p); err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}
		updated = p
		return s.audit(ctx, "purchase", p.ID, action, changes)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePurchase removes a purchase and its items. Rejected while any item
// has a sale; the error names the number of blocking sales.
func (s *Service) DeletePurchase(ctx context.Context, id int64) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.purchases.GetForUpdate(ctx, id)
		if err != nil {
			return normalizeGetErr(err, "purchase", id)
		}
		count, err := s.sales.CountByPurchase(ctx, id)
		if err != nil {
			return fmt.Errorf("count purchase sales: %w", err)
		}
		if count > 0 {
			return apperror.NewHasSales("purchase", id, count)
		}
		if err := s.purchases.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete purchase: %w", err)
		}
		return s.audit(ctx, "purchase", id, ActionDelete, map[string]any{"code": p.Code})
	})
}
