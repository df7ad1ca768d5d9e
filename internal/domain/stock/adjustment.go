package stock

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentLine sets the counted quantity of one product
type AdjustmentLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// InventoryAdjustment is a physical count applied to one location
type InventoryAdjustment struct {
	ID         uuid.UUID
	Name       string
	ReportID   uuid.UUID
	LocationID uuid.UUID
	Lines      []AdjustmentLine
	Applied    bool
	AppliedAt  *time.Time
	CreatedAt  time.Time
}

// NewInventoryAdjustment builds an adjustment from a product→quantity
// total. Lines are ordered by product id so repeated runs are stable.
func NewInventoryAdjustment(name string, reportID, locationID uuid.UUID, totals map[uuid.UUID]decimal.Decimal) *InventoryAdjustment {
	lines := make([]AdjustmentLine, 0, len(totals))
	for pid, qty := range totals {
		lines = append(lines, AdjustmentLine{ProductID: pid, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})
	return &InventoryAdjustment{
		ID:         uuid.New(),
		Name:       name,
		ReportID:   reportID,
		LocationID: locationID,
		Lines:      lines,
		CreatedAt:  time.Now(),
	}
}

// Apply validates the count
func (a *InventoryAdjustment) Apply(at time.Time) {
	if a.Applied {
		return
	}
	a.Applied = true
	a.AppliedAt = &at
}
