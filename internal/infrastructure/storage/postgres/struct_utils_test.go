package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockpulse/internal/core/entity"
	"stockpulse/internal/core/types"
	"stockpulse/internal/domain/inventory"
)

func TestExtractDBColumns_Timestamps(t *testing.T) {
	cols := ExtractDBColumns[inventory.Item]()
	assert.Equal(t, []string{"id", "purchase_id", "serial", "description", "note", "created_at", "updated_at"}, cols)
}

func TestStructToMap(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ref := "INV-9"
	s := inventory.Sale{
		ID:          7,
		ItemID:      3,
		ExternalRef: &ref,
		SaleDate:    now,
		Channel:     "eBay",
		GrossPrice:  types.MustMoney("99.90"),
		Timestamps:  entity.Timestamps{CreatedAt: now, UpdatedAt: now},
	}

	m := StructToMap(&s)

	assert.Equal(t, int64(7), m["id"])
	assert.Equal(t, &ref, m["external_ref"])
	assert.Equal(t, "eBay", m["channel"])
	assert.Equal(t, now, m["created_at"])
	assert.Nil(t, StructToMap(42))
}

func TestPickColumns(t *testing.T) {
	data := map[string]any{"id": 1, "code": "A", "extra": true}
	got := PickColumns(data, []string{"id", "code", "missing"}, "id")
	assert.Equal(t, map[string]any{"code": "A"}, got)
}
