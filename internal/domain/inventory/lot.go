package inventory

// Lot is a read-only snapshot of a purchase with its items and their sales.
// Metrics are always computed from a Lot, never from live records.
type Lot struct {
	Purchase Purchase  `json:"purchase"`
	Items    []LotItem `json:"items"`
}

// LotItem is an item together with its sales.
type LotItem struct {
	Item  Item   `json:"item"`
	Sales []Sale `json:"sales"`
}

// IsSold is true once at least one sale is attached.
func (li *LotItem) IsSold() bool {
	return len(li.Sales) > 0
}

// IsServiceUse is true if any sale was booked on the service-use channel.
func (li *LotItem) IsServiceUse() bool {
	for i := range li.Sales {
		if li.Sales[i].IsServiceUse() {
			return true
		}
	}
	return false
}

// HasMultipleSales flags a data-quality issue; it carries no business meaning.
func (li *LotItem) HasMultipleSales() bool {
	return len(li.Sales) > 1
}

// SaleCount returns the number of sales attached to every item of the lot.
func (l *Lot) SaleCount() int {
	n := 0
	for i := range l.Items {
		n += len(l.Items[i].Sales)
	}
	return n
}

// SoldCount returns the number of items with at least one sale.
func (l *Lot) SoldCount() int {
	n := 0
	for i := range l.Items {
		if l.Items[i].IsSold() {
			n++
		}
	}
	return n
}

// UnsoldCount returns the number of items without sales.
func (l *Lot) UnsoldCount() int {
	return len(l.Items) - l.SoldCount()
}

// MissingSerialCount returns the number of items without a real serial.
func (l *Lot) MissingSerialCount() int {
	n := 0
	for i := range l.Items {
		if !l.Items[i].Item.HasRealSerial() {
			n++
		}
	}
	return n
}

// FindItem returns the lot item with the given id.
func (l *Lot) FindItem(itemID int64) (*LotItem, bool) {
	for i := range l.Items {
		if l.Items[i].Item.ID == itemID {
			return &l.Items[i], true
		}
	}
	return nil, false
}
