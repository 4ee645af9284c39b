package inventory_repo

import (
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/inventory"
)

func toSQL(t *testing.T, q squirrel.Sqlizer) (string, []any) {
	t.Helper()
	sql, args, err := q.ToSql()
	require.NoError(t, err)
	return sql, args
}

func TestSelectQueries(t *testing.T) {
	purchases := NewPurchaseRepo(nil)
	items := NewItemRepo(nil)
	purchaseCols := strings.Join(purchases.selectCols, ", ")

	tests := []struct {
		name     string
		query    squirrel.Sqlizer
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "purchase for update",
			query:    purchases.forUpdateQuery(4),
			wantSQL:  "SELECT " + purchaseCols + " FROM purchases WHERE id = $1 FOR UPDATE",
			wantArgs: []any{int64(4)},
		},
		{
			name:     "serial exists",
			query:    items.serialExistsQuery("SN-1", 0),
			wantSQL:  "SELECT 1 FROM items WHERE serial = $1",
			wantArgs: []any{"SN-1"},
		},
		{
			name:     "serial exists excluding item",
			query:    items.serialExistsQuery("SN-1", 9),
			wantSQL:  "SELECT 1 FROM items WHERE serial = $1 AND id <> $2",
			wantArgs: []any{"SN-1", int64(9)},
		},
		{
			name: "unsold serials",
			query: unsoldQuery(),
			wantSQL: "SELECT i.id AS item_id, i.serial, i.description, p.code AS purchase_code " +
				"FROM items i JOIN purchases p ON p.id = i.purchase_id " +
				"LEFT JOIN sales s ON s.item_id = i.id " +
				"WHERE i.serial <> $1 AND s.id IS NULL ORDER BY i.created_at, i.id",
			wantArgs: []any{""},
		},
		{
			name:     "sales of a purchase",
			query:    countByPurchaseQuery(3),
			wantSQL:  "SELECT COUNT(*) FROM sales s JOIN items i ON i.id = s.item_id WHERE i.purchase_id = $1",
			wantArgs: []any{int64(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := toSQL(t, tt.query)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestInsertQuerySkipsID(t *testing.T) {
	repo := NewPurchaseRepo(nil)
	p := &inventory.Purchase{ID: 99, Code: "ACQ-1", Source: "eBay", Seller: "s", BaseCost: types.MustMoney("10")}

	sql, args := toSQL(t, repo.insertQuery(p))

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO purchases (accessory_cost,base_cost,buyer,code,"), sql)
	assert.True(t, strings.HasSuffix(sql, " RETURNING id"), sql)
	assert.NotContains(t, sql, "(id,")
	assert.Len(t, args, len(repo.selectCols)-1)
	assert.NotContains(t, args, int64(99))
}

func TestUpdateQueryKeepsCreatedAt(t *testing.T) {
	repo := NewSaleRepo(nil)
	s := &inventory.Sale{ID: 12, ItemID: 3, Channel: "eBay", SaleDate: time.Now()}

	sql, args := toSQL(t, repo.updateQuery(s, s.ID))

	assert.True(t, strings.HasPrefix(sql, "UPDATE sales SET channel = $1, commission = $2"), sql)
	assert.NotContains(t, sql, "created_at")
	assert.True(t, strings.HasSuffix(sql, "WHERE id = $10"), sql)
	assert.Equal(t, int64(12), args[len(args)-1])
}

func TestLotQueries(t *testing.T) {
	r := NewLotReader(nil)

	all := r.lotQueries(0)
	sql, args := toSQL(t, all[2])
	assert.Equal(t, "SELECT "+strings.Join(prefixed("s", r.sales.selectCols), ", ")+
		" FROM sales s ORDER BY s.item_id, s.sale_date, s.id", sql)
	assert.Empty(t, args)

	one := r.lotQueries(7)
	sql, args = toSQL(t, one[0])
	assert.True(t, strings.HasSuffix(sql, "FROM purchases WHERE id = $1 ORDER BY id"), sql)
	assert.Equal(t, []any{int64(7)}, args)

	sql, _ = toSQL(t, one[1])
	assert.True(t, strings.HasSuffix(sql, "FROM items WHERE purchase_id = $1 ORDER BY purchase_id, id"), sql)

	sql, args = toSQL(t, one[2])
	assert.Contains(t, sql, "FROM sales s JOIN items i ON i.id = s.item_id WHERE i.purchase_id = $1")
	assert.Equal(t, []any{int64(7)}, args)
}

func TestAssembleLots(t *testing.T) {
	purchases := []inventory.Purchase{{ID: 1, Code: "A"}, {ID: 2, Code: "B"}}
	items := []inventory.Item{
		{ID: 10, PurchaseID: 1},
		{ID: 11, PurchaseID: 1},
		{ID: 12, PurchaseID: 3},
	}
	sales := []inventory.Sale{
		{ID: 100, ItemID: 11},
		{ID: 101, ItemID: 11},
		{ID: 102, ItemID: 12},
	}

	lots := AssembleLots(purchases, items, sales)

	require.Len(t, lots, 2)
	assert.Equal(t, "A", lots[0].Purchase.Code)
	require.Len(t, lots[0].Items, 2)
	assert.Empty(t, lots[0].Items[0].Sales)
	assert.Len(t, lots[0].Items[1].Sales, 2)
	assert.Empty(t, lots[1].Items, "orphans of unknown purchases are dropped")
}
