package lots

import (
	"context"
	"sort"
	"strings"
	"sync"

	"stockpulse/internal/core/apperror"
	"stockpulse/internal/domain/inventory"
)

// memStore is an in-memory implementation of the inventory repositories.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	purchases map[int64]inventory.Purchase
	items     map[int64]inventory.Item
	sales     map[int64]inventory.Sale
	audits    []string
}

func newMemStore() *memStore {
	return &memStore{
		purchases: map[int64]inventory.Purchase{},
		items:     map[int64]inventory.Item{},
		sales:     map[int64]inventory.Sale{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// RunInTransaction implements tx.Manager without isolation.
func (m *memStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memStore) LogChange(_ context.Context, entityType string, _ int64, action string, _ map[string]any) error {
	m.audits = append(m.audits, entityType+":"+action)
	return nil
}

type purchaseRepo struct{ *memStore }

func (r purchaseRepo) Create(_ context.Context, p *inventory.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.purchases {
		if existing.Code == p.Code {
			return apperror.NewDuplicate("purchase", "code", p.Code)
		}
	}
	p.ID = r.id()
	r.purchases[p.ID] = *p
	return nil
}

func (r purchaseRepo) Update(_ context.Context, p *inventory.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purchases[p.ID] = *p
	return nil
}

func (r purchaseRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.purchases, id)
	for itemID, item := range r.items {
		if item.PurchaseID == id {
			delete(r.items, itemID)
		}
	}
	return nil
}

func (r purchaseRepo) GetByID(_ context.Context, id int64) (*inventory.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[id]
	if !ok {
		return nil, apperror.NewNotFound("purchase", id)
	}
	return &p, nil
}

func (r purchaseRepo) GetForUpdate(ctx context.Context, id int64) (*inventory.Purchase, error) {
	return r.GetByID(ctx, id)
}

func (r purchaseRepo) GetByCode(_ context.Context, code string) (*inventory.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.purchases {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, apperror.NewNotFound("purchase", code)
}

func (r purchaseRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	return err == nil, nil
}

type itemRepo struct{ *memStore }

func (r itemRepo) Create(_ context.Context, item *inventory.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = r.id()
	r.items[item.ID] = *item
	return nil
}

func (r itemRepo) Update(_ context.Context, item *inventory.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = *item
	return nil
}

func (r itemRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r itemRepo) GetByID(_ context.Context, id int64) (*inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, apperror.NewNotFound("item", id)
	}
	return &item, nil
}

func (r itemRepo) ListByPurchase(_ context.Context, purchaseID int64) ([]inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []inventory.Item
	for _, item := range r.items {
		if item.PurchaseID == purchaseID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r itemRepo) FindBySerial(_ context.Context, serial string) (*inventory.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if strings.TrimSpace(item.Serial) == serial {
			return &item, nil
		}
	}
	return nil, apperror.NewNotFound("item", serial)
}

func (r itemRepo) SerialExists(_ context.Context, serial string, excludeID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID != excludeID && item.Serial == serial {
			return true, nil
		}
	}
	return false, nil
}

func (r itemRepo) ListUnsold(_ context.Context) ([]inventory.UnsoldItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sold := map[int64]bool{}
	for _, s := range r.sales {
		sold[s.ItemID] = true
	}
	var out []inventory.UnsoldItem
	for _, item := range r.items {
		if sold[item.ID] || !inventory.SerialIsReal(item.Serial) {
			continue
		}
		out = append(out, inventory.UnsoldItem{
			ItemID:       item.ID,
			Serial:       item.Serial,
			Description:  item.Description,
			PurchaseCode: r.purchases[item.PurchaseID].Code,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

type saleRepo struct{ *memStore }

func (r saleRepo) Create(_ context.Context, s *inventory.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ExternalRef != nil {
		for _, existing := range r.sales {
			if existing.ExternalRef != nil && *existing.ExternalRef == *s.ExternalRef {
				return apperror.NewDuplicate("sale", "externalRef", *s.ExternalRef)
			}
		}
	}
	s.ID = r.id()
	r.sales[s.ID] = *s
	return nil
}

func (r saleRepo) Update(_ context.Context, s *inventory.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales[s.ID] = *s
	return nil
}

func (r saleRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sales, id)
	return nil
}

func (r saleRepo) GetByID(_ context.Context, id int64) (*inventory.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, apperror.NewNotFound("sale", id)
	}
	return &s, nil
}

func (r saleRepo) ListByItem(_ context.Context, itemID int64) ([]inventory.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.Sale
	for _, s := range r.sales {
		if s.ItemID == itemID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r saleRepo) CountByItem(ctx context.Context, itemID int64) (int, error) {
	sales, err := r.ListByItem(ctx, itemID)
	return len(sales), err
}

func (r saleRepo) CountByPurchase(_ context.Context, purchaseID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sales {
		if r.items[s.ItemID].PurchaseID == purchaseID {
			n++
		}
	}
	return n, nil
}

func (r saleRepo) ExistsByExternalRef(_ context.Context, ref string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.ExternalRef != nil && *s.ExternalRef == ref {
			return true, nil
		}
	}
	return false, nil
}

type lotReader struct{ *memStore }

func (r lotReader) LoadLot(ctx context.Context, purchaseID int64) (*inventory.Lot, error) {
	p, err := purchaseRepo(r).GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	items, _ := itemRepo(r).ListByPurchase(ctx, purchaseID)
	lot := &inventory.Lot{Purchase: *p}
	for _, item := range items {
		sales, _ := saleRepo(r).ListByItem(ctx, item.ID)
		lot.Items = append(lot.Items, inventory.LotItem{Item: item, Sales: sales})
	}
	return lot, nil
}

func (r lotReader) LoadLots(ctx context.Context) ([]inventory.Lot, error) {
	var lots []inventory.Lot
	for id := int64(1); id <= r.nextID; id++ {
		if _, ok := r.purchases[id]; !ok {
			continue
		}
		lot, err := r.LoadLot(ctx, id)
		if err != nil {
			return nil, err
		}
		lots = append(lots, *lot)
	}
	return lots, nil
}
