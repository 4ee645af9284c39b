package inventory_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/infrastructure/storage/postgres"
)

var _ inventory.SaleRepository = (*SaleRepo)(nil)

// SaleRepo persists sales.
type SaleRepo struct {
	baseRepo[inventory.Sale]
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{newBaseRepo[inventory.Sale](txm, "sales", "sale")}
}

func refKey(s *inventory.Sale) any {
	if s.ExternalRef != nil {
		return *s.ExternalRef
	}
	return s.ID
}

// Create inserts s and sets its ID. A reused external reference yields a
// DUPLICATE_ENTRY error.
func (r *SaleRepo) Create(ctx context.Context, s *inventory.Sale) error {
	id, err := r.insert(ctx, s, &s.Timestamps, refKey(s))
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// Update writes every mutable column of s.
func (r *SaleRepo) Update(ctx context.Context, s *inventory.Sale) error {
	return r.update(ctx, s, &s.Timestamps, s.ID, refKey(s))
}

// Delete removes a sale.
func (r *SaleRepo) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}

// GetByID retrieves a sale by id.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*inventory.Sale, error) {
	return r.get(ctx, r.baseSelect().Where(squirrel.Eq{"id": id}), id)
}

// ListByItem returns the sales of an item by sale date.
func (r *SaleRepo) ListByItem(ctx context.Context, itemID int64) ([]inventory.Sale, error) {
	return r.list(ctx, r.baseSelect().
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("sale_date", "id"))
}

// CountByItem counts the sales of an item.
func (r *SaleRepo) CountByItem(ctx context.Context, itemID int64) (int, error) {
	return r.count(ctx, Builder().
		Select("COUNT(*)").
		From(r.tableName).
		Where(squirrel.Eq{"item_id": itemID}))
}

// CountByPurchase counts the sales of every item of a purchase.
func (r *SaleRepo) CountByPurchase(ctx context.Context, purchaseID int64) (int, error) {
	return r.count(ctx, countByPurchaseQuery(purchaseID))
}

func countByPurchaseQuery(purchaseID int64) squirrel.SelectBuilder {
	return Builder().
		Select("COUNT(*)").
		From("sales s").
		Join("items i ON i.id = s.item_id").
		Where(squirrel.Eq{"i.purchase_id": purchaseID})
}

// ExistsByExternalRef checks if a sale with the billing reference exists.
func (r *SaleRepo) ExistsByExternalRef(ctx context.Context, ref string) (bool, error) {
	return r.exists(ctx, Builder().
		Select("1").
		From(r.tableName).
		Where(squirrel.Eq{"external_ref": ref}))
}
