// Package lots implements the lifecycle of purchases, items and sales:
// registration, amendments, service-use marking and batch import.
// Every mutation runs validate → uniqueness checks → transaction → audit.
package lots

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"stockpulse/internal/core/apperror"
	"stockpulse/internal/core/tx"
	"stockpulse/internal/domain/inventory"
)

// Audit actions.
const (
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionServiceUse = "service_use"
	ActionImport     = "import"
)

// Auditor records mutations. Implemented by the postgres audit service.
type Auditor interface {
	LogChange(ctx context.Context, entityType string, entityID int64, action string, changes map[string]any) error
}

// Config wires the service dependencies.
type Config struct {
	TxManager tx.Manager
	Purchases inventory.PurchaseRepository
	Items     inventory.ItemRepository
	Sales     inventory.SaleRepository
	Lots      inventory.LotReader

	// Auditor is optional.
	Auditor Auditor

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Service provides lifecycle operations over purchases, items and sales.
type Service struct {
	txm       tx.Manager
	purchases inventory.PurchaseRepository
	items     inventory.ItemRepository
	sales     inventory.SaleRepository
	lots      inventory.LotReader
	auditor   Auditor
	now       func() time.Time
	validate  *validator.Validate
}

// NewService creates a new lots service.
func NewService(cfg Config) *Service {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		txm:       cfg.TxManager,
		purchases: cfg.Purchases,
		items:     cfg.Items,
		sales:     cfg.Sales,
		lots:      cfg.Lots,
		auditor:   cfg.Auditor,
		now:       now,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) audit(ctx context.Context, entityType string, entityID int64, action string, changes map[string]any) error {
	if s.auditor == nil {
		return nil
	}
	if err := s.auditor.LogChange(ctx, entityType, entityID, action, changes); err != nil {
		return fmt.Errorf("audit %s %d: %w", entityType, entityID, err)
	}
	return nil
}

// normalizeGetErr maps repository lookups onto entity-named errors.
func normalizeGetErr(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(entity, id)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", entity).WithDetail("id", id)
}

// Lot loads a lot snapshot.
func (s *Service) Lot(ctx context.Context, purchaseID int64) (*inventory.Lot, error) {
	lot, err := s.lots.LoadLot(ctx, purchaseID)
	if err != nil {
		return nil, normalizeGetErr(err, "purchase", purchaseID)
	}
	return lot, nil
}

// UnsoldSerials lists items with a real serial and no sale, the feed the
// billing sync matches incoming sales against.
func (s *Service) UnsoldSerials(ctx context.Context) ([]inventory.UnsoldItem, error) {
	items, err := s.items.ListUnsold(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unsold items: %w", err)
	}
	return items, nil
}

// checkSerial rejects a real serial already used by another item.
func (s *Service) checkSerial(ctx context.Context, serial string, excludeID int64) error {
	if !inventory.SerialIsReal(serial) {
		return nil
	}
	exists, err := s.items.SerialExists(ctx, serial, excludeID)
	if err != nil {
		return fmt.Errorf("check serial: %w", err)
	}
	if exists {
		return apperror.NewDuplicate("item", "serial", serial)
	}
	return nil
}
