// Package inventory defines purchase batches, the items inside them and the
// sales recorded against those items.
package inventory

import (
	"context"
	"strings"
	"time"

	"stockpulse/internal/core/apperror"
	"stockpulse/internal/core/entity"
	"stockpulse/internal/core/types"
)

// ChannelServiceUse is the reserved sales channel of items consumed internally.
const ChannelServiceUse = "SERVICE-USE"

// DefaultBuyer is assigned to purchases registered without a buyer.
const DefaultBuyer = "Alessio"

// Purchase is a purchase batch ("lot").
type Purchase struct {
	ID int64 `db:"id" json:"id"`

	// Code is the caller-assigned business key, unique across purchases.
	Code string `db:"code" json:"code"`

	Source        string      `db:"source" json:"source"`
	Seller        string      `db:"seller" json:"seller"`
	Buyer         string      `db:"buyer" json:"buyer"`
	BaseCost      types.Money `db:"base_cost" json:"baseCost"`
	AccessoryCost types.Money `db:"accessory_cost" json:"accessoryCost"`

	PaymentDate *time.Time `db:"payment_date" json:"paymentDate,omitempty"`
	// DeliveryDate is nil until the batch arrives.
	DeliveryDate *time.Time `db:"delivery_date" json:"deliveryDate,omitempty"`

	Note string `db:"note" json:"note"`

	// Manually flagged problem. ProblemType is empty unless ProblemFlagged.
	ProblemFlagged     bool        `db:"problem_flagged" json:"problemFlagged"`
	ProblemType        ProblemType `db:"problem_type" json:"problemType,omitempty"`
	ProblemDescription string      `db:"problem_description" json:"problemDescription,omitempty"`
	ProblemReportedAt  *time.Time  `db:"problem_reported_at" json:"problemReportedAt,omitempty"`

	entity.Timestamps
}

// HasArrived reports whether the batch has a delivery date.
func (p *Purchase) HasArrived() bool {
	return p.DeliveryDate != nil
}

// FlagProblem records a manual problem report.
func (p *Purchase) FlagProblem(t ProblemType, description string, at time.Time) {
	p.ProblemFlagged = true
	p.ProblemType = t
	p.ProblemDescription = description
	p.ProblemReportedAt = &at
}

// ClearProblem removes a previously flagged problem.
func (p *Purchase) ClearProblem() {
	p.ProblemFlagged = false
	p.ProblemType = ""
	p.ProblemDescription = ""
	p.ProblemReportedAt = nil
}

// Validate implements entity.Validatable.
func (p *Purchase) Validate(_ context.Context) error {
	if strings.TrimSpace(p.Code) == "" {
		return apperror.NewValidation("code is required").WithDetail("field", "code")
	}
	if strings.TrimSpace(p.Source) == "" {
		return apperror.NewValidation("source is required").WithDetail("field", "source")
	}
	if strings.TrimSpace(p.Seller) == "" {
		return apperror.NewValidation("seller is required").WithDetail("field", "seller")
	}
	if p.BaseCost.IsNegative() {
		return apperror.NewValidation("base cost cannot be negative").
			WithDetail("field", "baseCost").
			WithDetail("value", p.BaseCost.String())
	}
	if p.AccessoryCost.IsNegative() {
		return apperror.NewValidation("accessory cost cannot be negative").
			WithDetail("field", "accessoryCost").
			WithDetail("value", p.AccessoryCost.String())
	}
	if p.ProblemFlagged && !p.ProblemType.Valid() {
		return apperror.NewValidation("unknown problem type").
			WithDetail("field", "problemType").
			WithDetail("value", string(p.ProblemType))
	}
	return nil
}

// Item is one physical unit inside a purchase.
type Item struct {
	ID int64 `db:"id" json:"id"`

	// PurchaseID is fixed at creation.
	PurchaseID int64 `db:"purchase_id" json:"purchaseId"`

	// Serial is optional; placeholder values count as "no serial".
	Serial      string `db:"serial" json:"serial"`
	Description string `db:"description" json:"description"`
	Note        string `db:"note" json:"note"`

	entity.Timestamps
}

// HasRealSerial reports whether the item carries a usable serial number.
func (i *Item) HasRealSerial() bool {
	return SerialIsReal(i.Serial)
}

// Validate implements entity.Validatable.
func (i *Item) Validate(_ context.Context) error {
	if strings.TrimSpace(i.Description) == "" {
		return apperror.NewValidation("description is required").WithDetail("field", "description")
	}
	return nil
}

// Sale is one revenue event against an item.
type Sale struct {
	ID     int64 `db:"id" json:"id"`
	ItemID int64 `db:"item_id" json:"itemId"`

	// ExternalRef identifies the sale in the billing system; unique when set.
	ExternalRef *string `db:"external_ref" json:"externalRef,omitempty"`

	SaleDate   time.Time   `db:"sale_date" json:"saleDate"`
	Channel    string      `db:"channel" json:"channel"`
	GrossPrice types.Money `db:"gross_price" json:"grossPrice"`
	Commission types.Money `db:"commission" json:"commission"`
	Note       string      `db:"note" json:"note"`

	// Imported marks sales that came from the external billing system.
	Imported bool `db:"imported" json:"imported"`

	entity.Timestamps
}

// IsServiceUse reports whether the sale records internal consumption.
func (s *Sale) IsServiceUse() bool {
	return s.Channel == ChannelServiceUse
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(_ context.Context) error {
	if s.ItemID == 0 {
		return apperror.NewValidation("item is required").WithDetail("field", "itemId")
	}
	if s.SaleDate.IsZero() {
		return apperror.NewValidation("sale date is required").WithDetail("field", "saleDate")
	}
	if strings.TrimSpace(s.Channel) == "" {
		return apperror.NewValidation("channel is required").WithDetail("field", "channel")
	}
	if s.GrossPrice.IsNegative() {
		return apperror.NewValidation("gross price cannot be negative").
			WithDetail("field", "grossPrice").
			WithDetail("value", s.GrossPrice.String())
	}
	if s.Commission.IsNegative() {
		return apperror.NewValidation("commission cannot be negative").
			WithDetail("field", "commission").
			WithDetail("value", s.Commission.String())
	}
	return nil
}

var placeholderSerials = map[string]struct{}{
	"":    {},
	"N/A": {},
	"???": {},
}

// SerialIsReal is false for empty, whitespace-only and placeholder serials.
func SerialIsReal(serial string) bool {
	_, placeholder := placeholderSerials[strings.TrimSpace(serial)]
	return !placeholder
}

// NormalizeSerial trims the serial and collapses placeholders to "".
func NormalizeSerial(serial string) string {
	if !SerialIsReal(serial) {
		return ""
	}
	return strings.TrimSpace(serial)
}
