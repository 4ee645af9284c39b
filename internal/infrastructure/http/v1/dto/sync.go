package dto

import (
	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/lots"
)

// ImportPurchasesRequest is a batch of purchases pushed by the billing sync.
type ImportPurchasesRequest struct {
	Records []PurchaseRecord `json:"records" binding:"required"`
}

// PurchaseRecord is one purchase of an import batch.
type PurchaseRecord struct {
	Code          string       `json:"code"`
	Source        string       `json:"source"`
	Seller        string       `json:"seller"`
	Buyer         string       `json:"buyer"`
	BaseCost      types.Money  `json:"baseCost"`
	AccessoryCost types.Money  `json:"accessoryCost"`
	PaymentDate   *Date        `json:"paymentDate"`
	DeliveryDate  *Date        `json:"deliveryDate"`
	Note          string       `json:"note"`
	Items         []ItemRecord `json:"items"`
}

// ItemRecord is one item of an imported purchase.
type ItemRecord struct {
	Serial      string `json:"serial"`
	Description string `json:"description"`
	Note        string `json:"note"`
	ServiceUse  bool   `json:"serviceUse"`
}

// ToRecords converts the batch; per-record validation happens in the service.
func (r *ImportPurchasesRequest) ToRecords() []lots.PurchaseRecord {
	out := make([]lots.PurchaseRecord, len(r.Records))
	for i, rec := range r.Records {
		items := make([]lots.ItemRecord, len(rec.Items))
		for j, it := range rec.Items {
			items[j] = lots.ItemRecord(it)
		}
		out[i] = lots.PurchaseRecord{
			Code:          rec.Code,
			Source:        rec.Source,
			Seller:        rec.Seller,
			Buyer:         rec.Buyer,
			BaseCost:      rec.BaseCost,
			AccessoryCost: rec.AccessoryCost,
			PaymentDate:   rec.PaymentDate.Ptr(),
			DeliveryDate:  rec.DeliveryDate.Ptr(),
			Note:          rec.Note,
			Items:         items,
		}
	}
	return out
}

// ImportSalesRequest is a batch of sales pushed by the billing sync.
type ImportSalesRequest struct {
	Records []SaleRecord `json:"records" binding:"required"`
}

// SaleRecord is one sale of an import batch.
type SaleRecord struct {
	ExternalRef string      `json:"externalRef"`
	Serial      string      `json:"serial"`
	SaleDate    Date        `json:"saleDate"`
	Channel     string      `json:"channel"`
	GrossPrice  types.Money `json:"grossPrice"`
	Commission  types.Money `json:"commission"`
	Note        string      `json:"note"`
}

// ToRecords converts the batch.
func (r *ImportSalesRequest) ToRecords() []lots.SaleRecord {
	out := make([]lots.SaleRecord, len(r.Records))
	for i, rec := range r.Records {
		out[i] = lots.SaleRecord{
			ExternalRef: rec.ExternalRef,
			Serial:      rec.Serial,
			SaleDate:    rec.SaleDate.Time,
			Channel:     rec.Channel,
			GrossPrice:  rec.GrossPrice,
			Commission:  rec.Commission,
			Note:        rec.Note,
		}
	}
	return out
}
