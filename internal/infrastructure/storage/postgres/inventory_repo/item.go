package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/infrastructure/storage/postgres"
)

var _ inventory.ItemRepository = (*ItemRepo)(nil)

// ItemRepo persists items. Placeholder serials are stored as ''.
type ItemRepo struct {
	baseRepo[inventory.Item]
}

// NewItemRepo creates a new item repository.
func NewItemRepo(txm *postgres.TxManager) *ItemRepo {
	return &ItemRepo{newBaseRepo[inventory.Item](txm, "items", "item")}
}

// Create inserts item and sets its ID.
func (r *ItemRepo) Create(ctx context.Context, item *inventory.Item) error {
	id, err := r.insert(ctx, item, &item.Timestamps, item.Serial)
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

// Update writes every mutable column of item.
func (r *ItemRepo) Update(ctx context.Context, item *inventory.Item) error {
	return r.update(ctx, item, &item.Timestamps, item.ID, item.Serial)
}

// Delete removes an item. Items with sales are protected by a foreign key.
func (r *ItemRepo) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, id)
}

// GetByID retrieves an item by id.
func (r *ItemRepo) GetByID(ctx context.Context, id int64) (*inventory.Item, error) {
	return r.get(ctx, r.baseSelect().Where(squirrel.Eq{"id": id}), id)
}

// ListByPurchase returns the items of a purchase in insertion order.
func (r *ItemRepo) ListByPurchase(ctx context.Context, purchaseID int64) ([]inventory.Item, error) {
	return r.list(ctx, r.baseSelect().
		Where(squirrel.Eq{"purchase_id": purchaseID}).
		OrderBy("id"))
}

// FindBySerial matches the trimmed serial exactly.
func (r *ItemRepo) FindBySerial(ctx context.Context, serial string) (*inventory.Item, error) {
	return r.get(ctx, r.baseSelect().
		Where(squirrel.Eq{"serial": serial}).
		Where(squirrel.NotEq{"serial": ""}), serial)
}

// SerialExists ignores the item with id excludeID (0 to check all).
func (r *ItemRepo) SerialExists(ctx context.Context, serial string, excludeID int64) (bool, error) {
	return r.exists(ctx, r.serialExistsQuery(serial, excludeID))
}

func (r *ItemRepo) serialExistsQuery(serial string, excludeID int64) squirrel.SelectBuilder {
	q := Builder().
		Select("1").
		From(r.tableName).
		Where(squirrel.Eq{"serial": serial})
	if excludeID != 0 {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}
	return q
}

// ListUnsold returns items with a real serial and no sale, oldest first.
func (r *ItemRepo) ListUnsold(ctx context.Context) ([]inventory.UnsoldItem, error) {
	sql, args, err := unsoldQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []inventory.UnsoldItem{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list unsold items: %w", err)
	}
	return items, nil
}

func unsoldQuery() squirrel.SelectBuilder {
	return Builder().
		Select("i.id AS item_id", "i.serial", "i.description", "p.code AS purchase_code").
		From("items i").
		Join("purchases p ON p.id = i.purchase_id").
		LeftJoin("sales s ON s.item_id = i.id").
		Where(squirrel.NotEq{"i.serial": ""}).
		Where(squirrel.Eq{"s.id": nil}).
		OrderBy("i.created_at", "i.id")
}
