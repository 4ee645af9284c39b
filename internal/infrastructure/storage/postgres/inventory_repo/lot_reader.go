package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockpulse/internal/core/apperror"
	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/infrastructure/storage/postgres"
)

var _ inventory.LotReader = (*LotReader)(nil)

// LotReader loads purchases, items and sales in one batched round-trip and
// assembles them into lot snapshots.
type LotReader struct {
	txm       *postgres.TxManager
	purchases baseRepo[inventory.Purchase]
	items     baseRepo[inventory.Item]
	sales     baseRepo[inventory.Sale]
}

// NewLotReader creates a new lot reader.
func NewLotReader(txm *postgres.TxManager) *LotReader {
	return &LotReader{
		txm:       txm,
		purchases: newBaseRepo[inventory.Purchase](txm, "purchases", "purchase"),
		items:     newBaseRepo[inventory.Item](txm, "items", "item"),
		sales:     newBaseRepo[inventory.Sale](txm, "sales", "sale"),
	}
}

// lotQueries builds the three snapshot queries, optionally scoped to one purchase.
func (r *LotReader) lotQueries(purchaseID int64) [3]squirrel.SelectBuilder {
	purchases := r.purchases.baseSelect().OrderBy("id")
	items := r.items.baseSelect().OrderBy("purchase_id", "id")
	sales := Builder().
		Select(prefixed("s", r.sales.selectCols)...).
		From("sales s").
		OrderBy("s.item_id", "s.sale_date", "s.id")

	if purchaseID != 0 {
		purchases = purchases.Where(squirrel.Eq{"id": purchaseID})
		items = items.Where(squirrel.Eq{"purchase_id": purchaseID})
		sales = sales.
			Join("items i ON i.id = s.item_id").
			Where(squirrel.Eq{"i.purchase_id": purchaseID})
	}
	return [3]squirrel.SelectBuilder{purchases, items, sales}
}

func prefixed(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

// LoadLot loads the snapshot of one purchase.
func (r *LotReader) LoadLot(ctx context.Context, purchaseID int64) (*inventory.Lot, error) {
	lots, err := r.load(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return nil, apperror.NewNotFound("purchase", purchaseID)
	}
	return &lots[0], nil
}

// LoadLots loads every lot, oldest purchase first.
func (r *LotReader) LoadLots(ctx context.Context) ([]inventory.Lot, error) {
	return r.load(ctx, 0)
}

func (r *LotReader) load(ctx context.Context, purchaseID int64) ([]inventory.Lot, error) {
	queries := r.lotQueries(purchaseID)

	batch := &pgx.Batch{}
	for _, q := range queries {
		sql, args, err := q.ToSql()
		if err != nil {
			return nil, fmt.Errorf("build lot query: %w", err)
		}
		batch.Queue(sql, args...)
	}

	var (
		purchases []inventory.Purchase
		items     []inventory.Item
		sales     []inventory.Sale
	)

	// Joins the outer transaction when called from a mutation.
	err := r.txm.ReadOnly(ctx, func(ctx context.Context) error {
		results := r.txm.GetTx(ctx).SendBatch(ctx, batch)
		defer results.Close()

		if err := scanBatch(results, &purchases); err != nil {
			return fmt.Errorf("scan purchases: %w", err)
		}
		if err := scanBatch(results, &items); err != nil {
			return fmt.Errorf("scan items: %w", err)
		}
		if err := scanBatch(results, &sales); err != nil {
			return fmt.Errorf("scan sales: %w", err)
		}
		return results.Close()
	})
	if err != nil {
		return nil, err
	}

	return AssembleLots(purchases, items, sales), nil
}

func scanBatch[T any](results pgx.BatchResults, dst *[]T) error {
	rows, err := results.Query()
	if err != nil {
		return err
	}
	return pgxscan.ScanAll(dst, rows)
}

// AssembleLots groups items under their purchase and sales under their item,
// keeping the input order.
func AssembleLots(purchases []inventory.Purchase, items []inventory.Item, sales []inventory.Sale) []inventory.Lot {
	salesByItem := make(map[int64][]inventory.Sale, len(items))
	for _, s := range sales {
		salesByItem[s.ItemID] = append(salesByItem[s.ItemID], s)
	}

	itemsByPurchase := make(map[int64][]inventory.LotItem, len(purchases))
	for _, item := range items {
		itemsByPurchase[item.PurchaseID] = append(itemsByPurchase[item.PurchaseID], inventory.LotItem{
			Item:  item,
			Sales: salesByItem[item.ID],
		})
	}

	lots := make([]inventory.Lot, 0, len(purchases))
	for _, p := range purchases {
		lots = append(lots, inventory.Lot{
			Purchase: p,
			Items:    itemsByPurchase[p.ID],
		})
	}
	return lots
}
