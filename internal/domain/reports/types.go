// Package reports classifies lots and builds the filtered, sorted and
// period-bucketed views on top of the metrics engine.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/inventory"
	"stockpulse/internal/domain/metrics"
)

// Performance statuses.
const (
	StatusOK       = "OK"
	StatusProblems = "PROBLEMS"
)

// StaleAfterDays is the stock age beyond which unsold items count as stale.
const StaleAfterDays = 30

// DefaultLowMarginPct is the business margin below which a lot is critical.
const DefaultLowMarginPct = 25

// Thresholds holds the tunable classification limits.
type Thresholds struct {
	LowMarginPct decimal.Decimal
}

// DefaultThresholds returns the standard limits.
func DefaultThresholds() Thresholds {
	return Thresholds{LowMarginPct: decimal.NewFromInt(DefaultLowMarginPct)}
}

// IsLowMargin reports a business margin below the low-margin limit.
func (t Thresholds) IsLowMargin(pct decimal.Decimal) bool {
	return pct.LessThan(t.LowMarginPct)
}

// --- Purchase metrics ---

// PurchaseMetrics is the full derived view of one lot.
// Revenue, Margin and MarginPct cover the business subset.
type PurchaseMetrics struct {
	TotalCost    types.Money     `json:"totalCost"`
	BusinessCost types.Money     `json:"businessCost"`
	UnitCost     types.Money     `json:"unitCost"`
	Revenue      types.Money     `json:"revenue"`
	Margin       types.Money     `json:"margin"`
	MarginPct    decimal.Decimal `json:"marginPct"`

	// TotalRevenue includes service-use sales.
	TotalRevenue types.Money `json:"totalRevenue"`

	ItemCount     int `json:"itemCount"`
	SoldCount     int `json:"soldCount"`
	BusinessItems int `json:"businessItems"`
	BusinessSold  int `json:"businessSold"`
	MissingSerial int `json:"missingSerials"`

	StockAge          *int `json:"stockAge,omitempty"`
	WaitingDays       *int `json:"waitingDays,omitempty"`
	AverageDaysToSale *int `json:"averageDaysToSale,omitempty"`

	UrgencyScore     int  `json:"urgencyScore"`
	PerformanceScore *int `json:"performanceScore,omitempty"`

	// Issues come from the performance classification; Alerts are the
	// operator-facing attention points.
	Issues []string `json:"issues"`
	Alerts []string `json:"alerts"`
}

// PurchaseView pairs a purchase with its metrics.
type PurchaseView struct {
	Purchase inventory.Purchase `json:"purchase"`
	Metrics  PurchaseMetrics    `json:"metrics"`
}

// --- Item metrics ---

// ItemMetrics is the derived view of one item.
type ItemMetrics struct {
	UnitCost      types.Money       `json:"unitCost"`
	Revenue       types.Money       `json:"revenue"`
	Margin        types.Money       `json:"margin"`
	MarginPct     decimal.Decimal   `json:"marginPct"`
	DaysInStock   *int              `json:"daysInStock,omitempty"`
	DaysToSale    *int              `json:"daysToSale,omitempty"`
	Speed         metrics.SaleSpeed `json:"speed"`
	Sold          bool              `json:"sold"`
	ServiceUse    bool              `json:"serviceUse"`
	MultipleSales bool              `json:"multipleSales"`
	SaleCount     int               `json:"saleCount"`

	// Grades has one entry per sale, in sale order.
	Grades []metrics.SaleGrade `json:"grades"`
}

// ItemView is an item with its owning purchase and metrics.
type ItemView struct {
	Item         inventory.Item `json:"item"`
	PurchaseCode string         `json:"purchaseCode"`
	Metrics      ItemMetrics    `json:"metrics"`
}

// --- Classification ---

// PerformanceRow is the performance classification of one lot.
type PerformanceRow struct {
	PurchaseID        int64           `json:"purchaseId"`
	PurchaseCode      string          `json:"purchaseCode"`
	BusinessItems     int             `json:"businessItems"`
	BusinessSold      int             `json:"businessSold"`
	Complete          bool            `json:"complete"`
	AverageDaysToSale *int            `json:"averageDaysToSale,omitempty"`
	Investment        types.Money     `json:"investment"`
	Revenue           types.Money     `json:"revenue"`
	Margin            types.Money     `json:"margin"`
	MarginPct         decimal.Decimal `json:"marginPct"`
	PerformanceScore  *int            `json:"performanceScore,omitempty"`
	Issues            []string        `json:"issues"`
	Status            string          `json:"status"`
}

// Granularity selects the period rollup bucket size.
type Granularity string

const (
	Week  Granularity = "week"
	Month Granularity = "month"
)

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	return g == Week || g == Month
}

// RollupBucket aggregates the business subset of lots arrived in one period.
type RollupBucket struct {
	Period     string          `json:"period"`
	Count      int             `json:"count"`
	Investment types.Money     `json:"investment"`
	Revenue    types.Money     `json:"revenue"`
	Margin     types.Money     `json:"margin"`
	MarginPct  decimal.Decimal `json:"marginPct"`
}

// StaleItem is an unsold business item of a lot arrived long ago.
type StaleItem struct {
	Item         inventory.Item `json:"item"`
	PurchaseID   int64          `json:"purchaseId"`
	PurchaseCode string         `json:"purchaseCode"`
	StockAgeDays int            `json:"stockAgeDays"`
	UnitCost     types.Money    `json:"unitCost"`
}

// CriticalMarginRow is a lot whose business margin is below the low-margin limit.
type CriticalMarginRow struct {
	PurchaseID         int64           `json:"purchaseId"`
	PurchaseCode       string          `json:"purchaseCode"`
	BusinessItemsTotal int             `json:"businessItemsTotal"`
	BusinessItemsSold  int             `json:"businessItemsSold"`
	Investment         types.Money     `json:"investment"`
	Revenue            types.Money     `json:"revenue"`
	Margin             types.Money     `json:"margin"`
	MarginPct          decimal.Decimal `json:"marginPct"`
}

// DataQualityRow is an item with more than one sale.
type DataQualityRow struct {
	ItemID       int64       `json:"itemId"`
	Serial       string      `json:"serial"`
	Description  string      `json:"description"`
	PurchaseCode string      `json:"purchaseCode"`
	SaleCount    int         `json:"saleCount"`
	Channels     []string    `json:"channels"`
	Revenue      types.Money `json:"revenue"`
}

// Dashboard is the overall summary.
type Dashboard struct {
	AsOf               time.Time       `json:"asOf"`
	Purchases          int             `json:"purchases"`
	PurchasesWithSales int             `json:"purchasesWithSales"`
	PurchasesNoSales   int             `json:"purchasesNoSales"`
	ItemsInStock       int             `json:"itemsInStock"`
	ItemsSold          int             `json:"itemsSold"`
	Investment         types.Money     `json:"investment"`
	Revenue            types.Money     `json:"revenue"`
	Margin             types.Money     `json:"margin"`
	ROIPct             decimal.Decimal `json:"roiPct"`
	UrgentPurchases    int             `json:"urgentPurchases"`
}
