package inventory_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/infrastructure/storage/postgres"
)

var _ inventory.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo persists purchases in the purchases table.
type PurchaseRepo struct {
	baseRepo[inventory.Purchase]
}

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{newBaseRepo[inventory.Purchase](txm, "purchases", "purchase")}
}

// Create inserts p and sets its ID. A CreatedAt already set is kept.
func (r *PurchaseRepo) Create(ctx context.Context, p *inventory.Purchase) error {
	id, err := r.insert(ctx, p, &p.Timestamps, p.Code)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// Update writes every mutable column of p.
func (r *PurchaseRepo) Update(ctx context.Context, p *inventory.Purchase) error {
	return r.update(ctx, p, &p.Timestamps, p.ID, p.Code)
}

// Delete removes the purchase; its items are removed by cascade.
func (r *PurchaseRepo) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}

// GetByID retrieves a purchase by id.
func (r *PurchaseRepo) GetByID(ctx context.Context, id int64) (*inventory.Purchase, error) {
	return r.get(ctx, r.baseSelect().Where(squirrel.Eq{"id": id}), id)
}

// GetByCode retrieves a purchase by its business code.
func (r *PurchaseRepo) GetByCode(ctx context.Context, code string) (*inventory.Purchase, error) {
	return r.get(ctx, r.baseSelect().Where(squirrel.Eq{"code": code}), code)
}

// GetForUpdate retrieves purchase with row lock.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id int64) (*inventory.Purchase, error) {
	return r.get(ctx, r.forUpdateQuery(id), id)
}

func (r *PurchaseRepo) forUpdateQuery(id int64) squirrel.SelectBuilder {
	return r.baseSelect().
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE")
}

// ExistsByCode checks if a purchase with the given code exists.
func (r *PurchaseRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, Builder().
		Select("1").
		From(r.tableName).
		Where(squirrel.Eq{"code": code}))
}
