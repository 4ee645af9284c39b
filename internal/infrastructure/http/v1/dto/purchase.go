package dto

import (
	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/domain/lots"
)

// --- Request DTOs ---

// CreatePurchaseRequest registers a purchase with its initial items.
type CreatePurchaseRequest struct {
	Code          string              `json:"code" binding:"required"`
	Source        string              `json:"source" binding:"required"`
	Seller        string              `json:"seller" binding:"required"`
	Buyer         string              `json:"buyer"`
	BaseCost      types.Money         `json:"baseCost"`
	AccessoryCost types.Money         `json:"accessoryCost"`
	PaymentDate   *Date               `json:"paymentDate"`
	DeliveryDate  *Date               `json:"deliveryDate"`
	Note          string              `json:"note"`
	Items         []CreateItemRequest `json:"items" binding:"dive"`
}

// ToNewPurchase converts DTO to the service input.
func (r *CreatePurchaseRequest) ToNewPurchase() lots.NewPurchase {
	items := make([]lots.NewItem, len(r.Items))
	for i := range r.Items {
		items[i] = r.Items[i].ToNewItem()
	}
	return lots.NewPurchase{
		Code:          r.Code,
		Source:        r.Source,
		Seller:        r.Seller,
		Buyer:         r.Buyer,
		BaseCost:      r.BaseCost,
		AccessoryCost: r.AccessoryCost,
		PaymentDate:   r.PaymentDate.Ptr(),
		DeliveryDate:  r.DeliveryDate.Ptr(),
		Note:          r.Note,
		Items:         items,
	}
}

// UpdatePurchaseRequest amends a purchase. Absent fields are left untouched.
type UpdatePurchaseRequest struct {
	Source        *string      `json:"source"`
	Seller        *string      `json:"seller"`
	Buyer         *string      `json:"buyer"`
	BaseCost      *types.Money `json:"baseCost"`
	AccessoryCost *types.Money `json:"accessoryCost"`
	PaymentDate   *Date        `json:"paymentDate"`
	DeliveryDate  *Date        `json:"deliveryDate"`
	Note          *string      `json:"note"`

	ClearPaymentDate  bool `json:"clearPaymentDate"`
	ClearDeliveryDate bool `json:"clearDeliveryDate"`
}

// ToPatch converts DTO to the service patch.
func (r *UpdatePurchaseRequest) ToPatch() lots.PurchasePatch {
	return lots.PurchasePatch{
		Source:            r.Source,
		Seller:            r.Seller,
		Buyer:             r.Buyer,
		BaseCost:          r.BaseCost,
		AccessoryCost:     r.AccessoryCost,
		PaymentDate:       r.PaymentDate.Ptr(),
		DeliveryDate:      r.DeliveryDate.Ptr(),
		Note:              r.Note,
		ClearPaymentDate:  r.ClearPaymentDate,
		ClearDeliveryDate: r.ClearDeliveryDate,
	}
}

// MarkArrivedRequest sets the delivery date; today when omitted.
type MarkArrivedRequest struct {
	DeliveryDate *Date `json:"deliveryDate"`
}

// FlagProblemRequest records a manual problem report.
type FlagProblemRequest struct {
	Type        inventory.ProblemType `json:"type" binding:"required"`
	Description string                `json:"description"`
}
