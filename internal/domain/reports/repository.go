package reports

import (
	"stockpulse/internal/domain/inventory"
)

// Repository defines report data access interface.
type Repository interface {
	inventory.LotReader
}
