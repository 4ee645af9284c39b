package lots

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"stockpulse/internal/core/apperror"
	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/inventory"
	"stockpulse/pkg/logger"
)

// PurchaseRecord is one purchase of an import batch.
type PurchaseRecord struct {
	Code          string       `json:"code" validate:"required"`
	Source        string       `json:"source" validate:"required"`
	Seller        string       `json:"seller" validate:"required"`
	Buyer         string       `json:"buyer"`
	BaseCost      types.Money  `json:"baseCost"`
	AccessoryCost types.Money  `json:"accessoryCost"`
	PaymentDate   *time.Time   `json:"paymentDate"`
	DeliveryDate  *time.Time   `json:"deliveryDate"`
	Note          string       `json:"note"`
	Items         []ItemRecord `json:"items" validate:"dive"`
}

// ItemRecord is one item of an imported purchase.
type ItemRecord struct {
	Serial      string `json:"serial"`
	Description string `json:"description" validate:"required"`
	Note        string `json:"note"`
	ServiceUse  bool   `json:"serviceUse"`
}

// SaleRecord is one sale pulled from the billing system.
type SaleRecord struct {
	ExternalRef string      `json:"externalRef" validate:"required"`
	Serial      string      `json:"serial" validate:"required"`
	SaleDate    time.Time   `json:"saleDate" validate:"required"`
	Channel     string      `json:"channel" validate:"required"`
	GrossPrice  types.Money `json:"grossPrice"`
	Commission  types.Money `json:"commission"`
	Note        string      `json:"note"`
}

// RecordError reports why one record of a batch was not applied.
type RecordError struct {
	Index   int    `json:"index"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

// ImportPurchasesResult summarizes a purchase import batch.
type ImportPurchasesResult struct {
	BatchID        string        `json:"batchId"`
	Received       int           `json:"received"`
	Inserted       int           `json:"inserted"`
	ItemsInserted  int           `json:"itemsInserted"`
	ServiceUseSold int           `json:"serviceUseSold"`
	Skipped        int           `json:"skipped"`
	Errors         []RecordError `json:"errors"`
}

// ImportSalesResult summarizes a sales import batch.
type ImportSalesResult struct {
	BatchID       string        `json:"batchId"`
	Received      int           `json:"received"`
	Inserted      int           `json:"inserted"`
	AlreadySynced int           `json:"alreadySynced"`
	Errors        []RecordError `json:"errors"`
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s is %s", fe.Namespace(), fe.Tag()))
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}

func errorMessage(err error) string {
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// ImportPurchases ingests purchases one record per transaction. Existing
// codes are skipped; items with an already used serial are reported and
// left out while the rest of the record is kept.
func (s *Service) ImportPurchases(ctx context.Context, records []PurchaseRecord) ImportPurchasesResult {
	res := ImportPurchasesResult{
		BatchID:  uuid.NewString(),
		Received: len(records),
		Errors:   []RecordError{},
	}

	for i, rec := range records {
		key := strings.TrimSpace(rec.Code)
		fail := func(msg string) {
			res.Errors = append(res.Errors, RecordError{Index: i, Key: key, Message: msg})
		}

		if err := s.validate.Struct(rec); err != nil {
			fail(validationMessage(err))
			continue
		}

		exists, err := s.purchases.ExistsByCode(ctx, key)
		if err != nil {
			fail(errorMessage(err))
			continue
		}
		if exists {
			res.Skipped++
			continue
		}

		in, itemErrs := s.purchaseFromRecord(ctx, rec)
		for _, msg := range itemErrs {
			fail(msg)
		}

		items, serviceUse, err := s.importPurchase(ctx, in)
		if err != nil {
			fail(errorMessage(err))
			continue
		}
		res.Inserted++
		res.ItemsInserted += items
		res.ServiceUseSold += serviceUse
	}

	logger.Info(ctx, "purchases imported",
		"batch_id", res.BatchID,
		"received", res.Received,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
		"errors", len(res.Errors),
	)
	return res
}

// purchaseFromRecord drops items whose serial is already taken, inside the
// record or in storage, and reports them.
func (s *Service) purchaseFromRecord(ctx context.Context, rec PurchaseRecord) (NewPurchase, []string) {
	in := NewPurchase{
		Code:          rec.Code,
		Source:        rec.Source,
		Seller:        rec.Seller,
		Buyer:         rec.Buyer,
		BaseCost:      rec.BaseCost,
		AccessoryCost: rec.AccessoryCost,
		PaymentDate:   rec.PaymentDate,
		DeliveryDate:  rec.DeliveryDate,
		Note:          rec.Note,
	}

	var errs []string
	seen := map[string]struct{}{}
	for _, ir := range rec.Items {
		serial := inventory.NormalizeSerial(ir.Serial)
		if serial != "" {
			if _, dup := seen[serial]; dup {
				errs = append(errs, fmt.Sprintf("serial %s already exists", serial))
				continue
			}
			if err := s.checkSerial(ctx, serial, 0); err != nil {
				errs = append(errs, fmt.Sprintf("serial %s: %s", serial, errorMessage(err)))
				continue
			}
			seen[serial] = struct{}{}
		}
		in.Items = append(in.Items, NewItem{
			Serial:      serial,
			Description: ir.Description,
			Note:        ir.Note,
			ServiceUse:  ir.ServiceUse,
		})
	}
	return in, errs
}

func (s *Service) importPurchase(ctx context.Context, in NewPurchase) (items, serviceUse int, err error) {
	p := in.purchase()
	if err := p.Validate(ctx); err != nil {
		return 0, 0, err
	}
	// Imported batches date from their arrival when known.
	if p.DeliveryDate != nil {
		p.CreatedAt = *p.DeliveryDate
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.purchases.Create(ctx, p); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		n, err := s.createItems(ctx, p, in.Items)
		if err != nil {
			return err
		}
		serviceUse = n
		return s.audit(ctx, "purchase", p.ID, ActionImport, map[string]any{
			"code":  p.Code,
			"items": len(in.Items),
		})
	})
	if err != nil {
		return 0, 0, err
	}
	return len(in.Items), serviceUse, nil
}

// ImportSales ingests sales matched to items by exact serial. A known
// external reference is counted as already synchronized, never inserted twice.
func (s *Service) ImportSales(ctx context.Context, records []SaleRecord) ImportSalesResult {
	res := ImportSalesResult{
		BatchID:  uuid.NewString(),
		Received: len(records),
		Errors:   []RecordError{},
	}

	for i, rec := range records {
		key := strings.TrimSpace(rec.ExternalRef)
		fail := func(msg string) {
			res.Errors = append(res.Errors, RecordError{Index: i, Key: key, Message: msg})
		}

		if err := s.validate.Struct(rec); err != nil {
			fail(validationMessage(err))
			continue
		}

		inserted, err := s.importSale(ctx, rec)
		switch {
		case err != nil:
			fail(errorMessage(err))
		case inserted:
			res.Inserted++
		default:
			res.AlreadySynced++
		}
	}

	logger.Info(ctx, "sales imported",
		"batch_id", res.BatchID,
		"received", res.Received,
		"inserted", res.Inserted,
		"already_synced", res.AlreadySynced,
		"errors", len(res.Errors),
	)
	return res
}

var errAlreadySynced = errors.New("sale already synchronized")

func (s *Service) importSale(ctx context.Context, rec SaleRecord) (bool, error) {
	serial := inventory.NormalizeSerial(rec.Serial)
	if serial == "" {
		return false, apperror.NewValidation("serial is missing")
	}

	inserted := false
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.sales.ExistsByExternalRef(ctx, strings.TrimSpace(rec.ExternalRef))
		if err != nil {
			return fmt.Errorf("check external ref: %w", err)
		}
		if exists {
			return errAlreadySynced
		}

		item, err := s.items.FindBySerial(ctx, serial)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("item", serial).WithDetail("serial", serial)
			}
			return fmt.Errorf("find item by serial: %w", err)
		}

		channel := strings.TrimSpace(rec.Channel)
		if err := rejectServiceUseChannel(channel); err != nil {
			return err
		}
		sale := NewSale{
			ItemID:      item.ID,
			ExternalRef: rec.ExternalRef,
			SaleDate:    rec.SaleDate,
			Channel:     channel,
			GrossPrice:  rec.GrossPrice,
			Commission:  rec.Commission,
			Note:        rec.Note,
		}.sale(true)
		if err := sale.Validate(ctx); err != nil {
			return err
		}
		if err := s.sales.Create(ctx, sale); err != nil {
			// A concurrent import of the same reference won the race.
			if apperror.IsDuplicate(err) {
				return errAlreadySynced
			}
			return fmt.Errorf("create sale: %w", err)
		}
		inserted = true
		return s.audit(ctx, "sale", sale.ID, ActionImport, map[string]any{
			"externalRef": rec.ExternalRef,
			"serial":      serial,
		})
	})
	if errors.Is(err, errAlreadySynced) {
		return false, nil
	}
	return inserted, err
}
