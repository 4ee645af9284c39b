package dto

import (
	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/lots"
)

// CreateSaleRequest registers a sale against an item.
type CreateSaleRequest struct {
	ItemID      int64       `json:"itemId" binding:"required"`
	ExternalRef string      `json:"externalRef"`
	SaleDate    Date        `json:"saleDate"`
	Channel     string      `json:"channel" binding:"required"`
	GrossPrice  types.Money `json:"grossPrice"`
	Commission  types.Money `json:"commission"`
	Note        string      `json:"note"`
}

// ToNewSale converts DTO to the service input.
func (r *CreateSaleRequest) ToNewSale() lots.NewSale {
	return lots.NewSale{
		ItemID:      r.ItemID,
		ExternalRef: r.ExternalRef,
		SaleDate:    r.SaleDate.Time,
		Channel:     r.Channel,
		GrossPrice:  r.GrossPrice,
		Commission:  r.Commission,
		Note:        r.Note,
	}
}

// UpdateSaleRequest amends a manually registered sale.
type UpdateSaleRequest struct {
	SaleDate   *Date        `json:"saleDate"`
	Channel    *string      `json:"channel"`
	GrossPrice *types.Money `json:"grossPrice"`
	Commission *types.Money `json:"commission"`
	Note       *string      `json:"note"`
}

// ToPatch converts DTO to the service patch.
func (r *UpdateSaleRequest) ToPatch() lots.SalePatch {
	return lots.SalePatch{
		SaleDate:   r.SaleDate.Ptr(),
		Channel:    r.Channel,
		GrossPrice: r.GrossPrice,
		Commission: r.Commission,
		Note:       r.Note,
	}
}
