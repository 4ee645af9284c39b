package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysBetween(t *testing.T) {
	from := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)

	tests := []struct {
		name string
		to   time.Time
		want int
	}{
		{"same day", time.Date(2024, 3, 1, 0, 1, 0, 0, time.UTC), 0},
		{"next day ignores clock", time.Date(2024, 3, 2, 0, 0, 1, 0, time.UTC), 1},
		{"leap february", time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC), -2},
		{"forty days", time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC), 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(from, tt.to))
		})
	}
}

func TestPercent(t *testing.T) {
	assert.True(t, Percent(MustMoney("10"), Zero()).IsZero())
	assert.Equal(t, "-10", Percent(MustMoney("-10"), MustMoney("100")).String())
	assert.Equal(t, "25", Percent(MustMoney("55"), MustMoney("220")).String())
}

func TestRoundMoney(t *testing.T) {
	third := MustMoney("100").Div(MustMoney("3"))
	assert.Equal(t, "33.33", RoundMoney(third).String())
	assert.Equal(t, "66.67", RoundMoney(third.Mul(MustMoney("2"))).String())
	assert.Equal(t, "12.5", RoundMoney(MustMoney("12.5")).String())
}
