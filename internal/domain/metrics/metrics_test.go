package metrics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/inventory"
)

var asOf = time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := asOf.AddDate(0, 0, -n)
	return &t
}

func sale(at time.Time, channel, gross, commission string) inventory.Sale {
	return inventory.Sale{
		SaleDate:   at,
		Channel:    channel,
		GrossPrice: types.MustMoney(gross),
		Commission: types.MustMoney(commission),
	}
}

func newLot(base, accessory string, delivered *time.Time, items ...inventory.LotItem) *inventory.Lot {
	for i := range items {
		items[i].Item.ID = int64(i + 1)
		if items[i].Item.Serial == "" {
			items[i].Item.Serial = "SN-" + string(rune('A'+i))
		}
	}
	return &inventory.Lot{
		Purchase: inventory.Purchase{
			ID:            1,
			Code:          "P",
			BaseCost:      types.MustMoney(base),
			AccessoryCost: types.MustMoney(accessory),
			DeliveryDate:  delivered,
		},
		Items: items,
	}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, types.MustMoney(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestCostAllocation(t *testing.T) {
	t.Run("total and unit cost", func(t *testing.T) {
		lot := newLot("200", "20", daysAgo(40), inventory.LotItem{}, inventory.LotItem{})
		assertMoney(t, "220", TotalCost(&lot.Purchase))
		assertMoney(t, "110", UnitCost(lot))
	})

	t.Run("empty lot has zero unit cost", func(t *testing.T) {
		lot := newLot("50", "0", nil)
		assertMoney(t, "50", TotalCost(&lot.Purchase))
		assert.True(t, UnitCost(lot).IsZero())
		assert.True(t, BusinessMarginPct(lot).IsZero())
	})

	t.Run("unit cost times items approximates total", func(t *testing.T) {
		lot := newLot("100", "0", nil, inventory.LotItem{}, inventory.LotItem{}, inventory.LotItem{})
		back := UnitCost(lot).Mul(decimal.NewFromInt(3))
		assert.True(t, back.Sub(TotalCost(&lot.Purchase)).Abs().LessThan(types.MustMoney("0.000001")))
	})

	t.Run("zero cost lot yields zero percentages", func(t *testing.T) {
		lot := newLot("0", "0", daysAgo(3),
			inventory.LotItem{Sales: []inventory.Sale{sale(asOf, "eBay", "10", "0")}})
		assert.True(t, ItemMarginPct(lot, &lot.Items[0]).IsZero())
		assertMoney(t, "10", ItemMargin(lot, &lot.Items[0]))
	})
}

func TestNetRevenue(t *testing.T) {
	s := sale(asOf, "eBay", "10", "12.5")
	assertMoney(t, "-2.5", NetRevenue(&s))

	item := inventory.LotItem{Sales: []inventory.Sale{
		sale(asOf, "eBay", "100", "10"),
		sale(asOf, "Vinted", "20", "0"),
	}}
	assertMoney(t, "110", ItemRevenue(&item))
}

func TestServiceUseExclusion(t *testing.T) {
	business := func() []inventory.LotItem {
		return []inventory.LotItem{
			{Sales: []inventory.Sale{sale(asOf, "eBay", "130", "0")}},
			{Sales: []inventory.Sale{sale(asOf, "eBay", "120", "0")}},
		}
	}

	without := newLot("200", "0", daysAgo(20), business()...)

	items := append(business(), inventory.LotItem{
		Sales: []inventory.Sale{sale(asOf, inventory.ChannelServiceUse, "100", "0")},
	})
	with := newLot("300", "0", daysAgo(20), items...)

	assertMoney(t, "100", UnitCost(without))
	assertMoney(t, "100", UnitCost(with))
	assert.Len(t, BusinessItems(with), 2)
	assertMoney(t, "200", BusinessCost(with))
	assertMoney(t, "250", BusinessRevenue(with))
	assertMoney(t, "25", BusinessMarginPct(with))
	assert.True(t, BusinessMarginPct(with).Equal(BusinessMarginPct(without)))

	// The synthetic sale of a service-use item has zero margin.
	assert.True(t, ItemMargin(with, &with.Items[2]).IsZero())
}

func TestBusinessCostIsNotRedivided(t *testing.T) {
	lot := newLot("90", "0", daysAgo(5),
		inventory.LotItem{},
		inventory.LotItem{Sales: []inventory.Sale{sale(asOf, inventory.ChannelServiceUse, "30", "0")}},
		inventory.LotItem{},
	)
	assertMoney(t, "60", BusinessCost(lot))
	assert.False(t, HasBusinessSale(lot))
	assert.Equal(t, 0, BusinessSoldCount(lot))
}

func TestTiming(t *testing.T) {
	delivered := daysAgo(40)
	lot := newLot("200", "20", delivered,
		inventory.LotItem{Sales: []inventory.Sale{sale(delivered.AddDate(0, 0, 35), "eBay", "150", "0")}},
		inventory.LotItem{},
	)

	assert.Nil(t, DaysInStock(lot, &lot.Items[0], asOf))
	require.NotNil(t, DaysInStock(lot, &lot.Items[1], asOf))
	assert.Equal(t, 40, *DaysInStock(lot, &lot.Items[1], asOf))

	require.NotNil(t, DaysToSale(lot, &lot.Items[0]))
	assert.Equal(t, 35, *DaysToSale(lot, &lot.Items[0]))
	assert.Nil(t, DaysToSale(lot, &lot.Items[1]))
	assert.Equal(t, 35, *AverageDaysToSale(lot))

	assert.Equal(t, 40, *StockAge(&lot.Purchase, asOf))
	assert.Nil(t, WaitingDays(&lot.Purchase, asOf))
}

func TestDaysToSaleUsesLatestBusinessSale(t *testing.T) {
	delivered := daysAgo(100)
	lot := newLot("10", "0", delivered, inventory.LotItem{Sales: []inventory.Sale{
		sale(delivered.AddDate(0, 0, 10), "eBay", "5", "0"),
		sale(delivered.AddDate(0, 0, 50), "eBay", "5", "0"),
	}})
	assert.Equal(t, 50, *DaysToSale(lot, &lot.Items[0]))

	service := newLot("10", "0", delivered, inventory.LotItem{Sales: []inventory.Sale{
		sale(delivered.AddDate(0, 0, 3), inventory.ChannelServiceUse, "10", "0"),
	}})
	assert.Nil(t, DaysToSale(service, &service.Items[0]))
	assert.Nil(t, AverageDaysToSale(service))

	notArrived := newLot("10", "0", nil, inventory.LotItem{Sales: []inventory.Sale{sale(asOf, "eBay", "5", "0")}})
	assert.Nil(t, DaysToSale(notArrived, &notArrived.Items[0]))
	assert.Nil(t, DaysInStock(notArrived, &notArrived.Items[0], asOf))
}

func TestWaitingDays(t *testing.T) {
	p := &inventory.Purchase{PaymentDate: daysAgo(9)}
	p.CreatedAt = *daysAgo(20)
	assert.Equal(t, 9, *WaitingDays(p, asOf))

	p.PaymentDate = nil
	assert.Equal(t, 20, *WaitingDays(p, asOf))

	p.DeliveryDate = daysAgo(1)
	assert.Nil(t, WaitingDays(p, asOf))
}

func TestUrgencyScore(t *testing.T) {
	tests := []struct {
		name  string
		build func() *inventory.Lot
		want  int
	}{
		{
			name: "lost package without missing serials",
			build: func() *inventory.Lot {
				lot := newLot("10", "0", nil, inventory.LotItem{})
				lot.Purchase.PaymentDate = daysAgo(30)
				lot.Purchase.FlagProblem(inventory.ProblemLostPackage, "", asOf)
				return lot
			},
			want: 80,
		},
		{
			name: "delayed delivery",
			build: func() *inventory.Lot {
				lot := newLot("10", "0", nil, inventory.LotItem{})
				lot.Purchase.FlagProblem(inventory.ProblemDelayedDelivery, "", asOf)
				return lot
			},
			want: 65,
		},
		{
			name: "waiting 22 days",
			build: func() *inventory.Lot {
				lot := newLot("10", "0", nil, inventory.LotItem{})
				lot.Purchase.PaymentDate = daysAgo(22)
				return lot
			},
			want: 40,
		},
		{
			name: "waiting 15 days",
			build: func() *inventory.Lot {
				lot := newLot("10", "0", nil, inventory.LotItem{})
				lot.Purchase.PaymentDate = daysAgo(15)
				return lot
			},
			want: 30,
		},
		{
			name: "waiting 7 days",
			build: func() *inventory.Lot {
				lot := newLot("10", "0", nil, inventory.LotItem{})
				lot.Purchase.PaymentDate = daysAgo(7)
				return lot
			},
			want: 0,
		},
		{
			name: "missing serials are capped",
			build: func() *inventory.Lot {
				items := make([]inventory.LotItem, 4)
				for i := range items {
					items[i].Item.Serial = "N/A"
				}
				lot := newLot("10", "0", daysAgo(1), items...)
				for i := range lot.Items {
					lot.Items[i].Item.Serial = "???"
				}
				return lot
			},
			want: 30,
		},
		{
			name: "slow sale after 75 days",
			build: func() *inventory.Lot {
				return newLot("10", "0", daysAgo(75), inventory.LotItem{})
			},
			want: 30,
		},
		{
			name: "slow sale after 50 days",
			build: func() *inventory.Lot {
				return newLot("10", "0", daysAgo(50), inventory.LotItem{})
			},
			want: 10,
		},
		{
			name: "fully sold lot has no slow sale term",
			build: func() *inventory.Lot {
				return newLot("10", "0", daysAgo(200), inventory.LotItem{
					Sales: []inventory.Sale{sale(asOf, "eBay", "20", "0")},
				})
			},
			want: 0,
		},
		{
			name: "everything at once is clamped",
			build: func() *inventory.Lot {
				lot := newLot("10", "0", daysAgo(300), inventory.LotItem{}, inventory.LotItem{}, inventory.LotItem{})
				for i := range lot.Items {
					lot.Items[i].Item.Serial = ""
				}
				lot.Purchase.FlagProblem(inventory.ProblemDamagedGoods, "", asOf)
				return lot
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UrgencyScore(tt.build(), asOf))
		})
	}
}

func TestUrgencyScoreBounds(t *testing.T) {
	problems := []inventory.ProblemType{"", inventory.ProblemLostPackage, inventory.ProblemSellerDispute, inventory.ProblemOther}
	for _, problem := range problems {
		for _, delivered := range []*time.Time{nil, daysAgo(0), daysAgo(45), daysAgo(400), daysAgo(-5)} {
			for missing := 0; missing <= 5; missing++ {
				items := make([]inventory.LotItem, 6)
				lot := newLot("10", "0", delivered, items...)
				for i := 0; i < missing; i++ {
					lot.Items[i].Item.Serial = " "
				}
				lot.Purchase.CreatedAt = *daysAgo(60)
				if problem != "" {
					lot.Purchase.FlagProblem(problem, "", asOf)
				}
				score := UrgencyScore(lot, asOf)
				assert.GreaterOrEqual(t, score, 0)
				assert.LessOrEqual(t, score, 100)
			}
		}
	}
}

func TestPerformanceScore(t *testing.T) {
	delivered := daysAgo(90)

	t.Run("undefined before the first sale", func(t *testing.T) {
		assert.Nil(t, PerformanceScore(newLot("100", "0", delivered, inventory.LotItem{})))
	})

	t.Run("fast excellent sale", func(t *testing.T) {
		lot := newLot("100", "0", delivered, inventory.LotItem{
			Sales: []inventory.Sale{sale(delivered.AddDate(0, 0, 10), "eBay", "150", "0")},
		})
		assert.Equal(t, 100, *PerformanceScore(lot))
	})

	t.Run("slow loss", func(t *testing.T) {
		lot := newLot("100", "0", delivered, inventory.LotItem{
			Sales: []inventory.Sale{sale(delivered.AddDate(0, 0, 80), "eBay", "90", "0")},
		})
		assert.Equal(t, 30, *PerformanceScore(lot))
	})

	t.Run("partial sale skips speed tier", func(t *testing.T) {
		lot := newLot("100", "0", delivered,
			inventory.LotItem{Sales: []inventory.Sale{sale(delivered.AddDate(0, 0, 80), "eBay", "70", "0")}},
			inventory.LotItem{},
		)
		// business margin (70-100)/100 = -30%
		assert.Equal(t, 40, *PerformanceScore(lot))
	})

	t.Run("good margin sold within 60 days", func(t *testing.T) {
		lot := newLot("100", "0", delivered, inventory.LotItem{
			Sales: []inventory.Sale{sale(delivered.AddDate(0, 0, 45), "eBay", "118", "0")},
		})
		assert.Equal(t, 80, *PerformanceScore(lot))
	})
	soldAfter := func(days ...int) *inventory.Lot {
		items := make([]inventory.LotItem, len(days))
		for i, d := range days {
			items[i] = inventory.LotItem{Sales: []inventory.Sale{sale(delivered.AddDate(0, 0, d), "eBay", "150", "0")}}
		}
		return newLot("300", "0", delivered, items...)
	}

	speedTiers := []struct {
		name string
		days []int
		want int
	}{
		{name: "mean exactly 30 days", days: []int{30, 30, 30}, want: 100},
		{name: "mean just over 30 days", days: []int{30, 30, 31}, want: 90},
		{name: "mean exactly 60 days", days: []int{60, 60, 60}, want: 90},
		{name: "mean just over 60 days", days: []int{60, 60, 61}, want: 70},
	}
	for _, tt := range speedTiers {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, *PerformanceScore(soldAfter(tt.days...)))
		})
	}
}

func TestMeanDaysToSaleKeepsFraction(t *testing.T) {
	delivered := daysAgo(90)
	lot := newLot("300", "0", delivered,
		inventory.LotItem{Sales: []inventory.Sale{sale(delivered.AddDate(0, 0, 30), "eBay", "150", "0")}},
		inventory.LotItem{Sales: []inventory.Sale{sale(delivered.AddDate(0, 0, 30), "eBay", "150", "0")}},
		inventory.LotItem{Sales: []inventory.Sale{sale(delivered.AddDate(0, 0, 31), "eBay", "150", "0")}},
	)

	mean := MeanDaysToSale(lot)
	require.NotNil(t, mean)
	assert.True(t, mean.GreaterThan(decimal.NewFromInt(30)), "mean %s", mean)
	assert.Equal(t, "30.33", mean.StringFixed(2))
	assert.Equal(t, 30, *AverageDaysToSale(lot))

	assert.Nil(t, MeanDaysToSale(newLot("10", "0", delivered, inventory.LotItem{})))
}

func TestGradeSale(t *testing.T) {
	lot := newLot("100", "0", daysAgo(10), inventory.LotItem{})
	tests := []struct {
		gross   string
		channel string
		want    SaleGrade
	}{
		{"125", "eBay", GradeExcellent},
		{"115", "eBay", GradeGood},
		{"105", "eBay", GradeAcceptable},
		{"104.99", "eBay", GradeCritical},
		{"100", inventory.ChannelServiceUse, GradeServiceUse},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			s := sale(asOf, tt.channel, tt.gross, "0")
			assert.Equal(t, tt.want, GradeSale(lot, &s))
		})
	}
}

func TestClassifySpeed(t *testing.T) {
	assert.Equal(t, SpeedUnknown, ClassifySpeed(nil))
	assert.Equal(t, SpeedVeryFast, ClassifySpeed(types.IntPtr(7)))
	assert.Equal(t, SpeedFast, ClassifySpeed(types.IntPtr(30)))
	assert.Equal(t, SpeedNormal, ClassifySpeed(types.IntPtr(60)))
	assert.Equal(t, SpeedSlow, ClassifySpeed(types.IntPtr(90)))
	assert.Equal(t, SpeedVerySlow, ClassifySpeed(types.IntPtr(91)))
}

func TestAlerts(t *testing.T) {
	lot := newLot("10", "0", nil, inventory.LotItem{Item: inventory.Item{Serial: "N/A"}})
	lot.Items[0].Item.Serial = "N/A"
	assert.Equal(t, []string{"Not arrived", "1 missing serials"}, Alerts(lot, asOf))

	lot.Purchase.FlagProblem(inventory.ProblemSellerDispute, "refund pending", asOf)
	assert.Equal(t, []string{"Seller dispute", "1 missing serials"}, Alerts(lot, asOf))

	slow := newLot("10", "0", daysAgo(45), inventory.LotItem{})
	assert.Equal(t, []string{"Slow sale"}, Alerts(slow, asOf))

	verySlow := newLot("10", "0", daysAgo(61), inventory.LotItem{})
	assert.Equal(t, []string{"Very slow sale"}, Alerts(verySlow, asOf))
}
