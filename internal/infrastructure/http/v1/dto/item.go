package dto

import (
	"stockpulse/internal/domain/lots"
)

// CreateItemRequest adds an item to a purchase.
type CreateItemRequest struct {
	Serial      string `json:"serial"`
	Description string `json:"description" binding:"required"`
	Note        string `json:"note"`
	ServiceUse  bool   `json:"serviceUse"`
}

// ToNewItem converts DTO to the service input.
func (r *CreateItemRequest) ToNewItem() lots.NewItem {
	return lots.NewItem{
		Serial:      r.Serial,
		Description: r.Description,
		Note:        r.Note,
		ServiceUse:  r.ServiceUse,
	}
}

// UpdateItemRequest amends an unsold item.
type UpdateItemRequest struct {
	Serial      *string `json:"serial"`
	Description *string `json:"description"`
	Note        *string `json:"note"`
}

// ToPatch converts DTO to the service patch.
func (r *UpdateItemRequest) ToPatch() lots.ItemPatch {
	return lots.ItemPatch{
		Serial:      r.Serial,
		Description: r.Description,
		Note:        r.Note,
	}
}

// ServiceUseRequest marks an item as consumed internally; today when the date is omitted.
type ServiceUseRequest struct {
	Date *Date `json:"date"`
}
