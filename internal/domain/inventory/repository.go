package inventory

import (
	"context"
)

// PurchaseRepository persists purchases.
type PurchaseRepository interface {
	Create(ctx context.Context, p *Purchase) error
	Update(ctx context.Context, p *Purchase) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Purchase, error)
	GetByCode(ctx context.Context, code string) (*Purchase, error)

	// GetForUpdate retrieves purchase with row lock.
	GetForUpdate(ctx context.Context, id int64) (*Purchase, error)

	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// ItemRepository persists items.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Item, error)
	ListByPurchase(ctx context.Context, purchaseID int64) ([]Item, error)

	// FindBySerial matches the trimmed serial exactly.
	FindBySerial(ctx context.Context, serial string) (*Item, error)

	// SerialExists ignores the item with id excludeID (0 to check all).
	SerialExists(ctx context.Context, serial string, excludeID int64) (bool, error)

	// ListUnsold returns items with a real serial and no sale, oldest first.
	ListUnsold(ctx context.Context) ([]UnsoldItem, error)
}

// SaleRepository persists sales.
type SaleRepository interface {
	Create(ctx context.Context, s *Sale) error
	Update(ctx context.Context, s *Sale) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Sale, error)
	ListByItem(ctx context.Context, itemID int64) ([]Sale, error)
	CountByItem(ctx context.Context, itemID int64) (int, error)
	CountByPurchase(ctx context.Context, purchaseID int64) (int, error)
	ExistsByExternalRef(ctx context.Context, ref string) (bool, error)
}

// LotReader loads lot snapshots for the metrics engine.
type LotReader interface {
	LoadLot(ctx context.Context, purchaseID int64) (*Lot, error)
	LoadLots(ctx context.Context) ([]Lot, error)
}

// UnsoldItem is a row of the unsold-serials feed consumed by the billing sync.
type UnsoldItem struct {
	ItemID       int64  `db:"item_id" json:"itemId"`
	Serial       string `db:"serial" json:"serial"`
	Description  string `db:"description" json:"description"`
	PurchaseCode string `db:"purchase_code" json:"purchaseCode"`
}
