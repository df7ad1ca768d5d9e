package stock

import (
	"fmt"
	"time"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoveState is the lifecycle state of a stock move
type MoveState string

const (
	MoveStateDraft     MoveState = "draft"
	MoveStateConfirmed MoveState = "confirmed"
	MoveStateAssigned  MoveState = "assigned"
	MoveStateDone      MoveState = "done"
)

// CanTransitionTo checks if the move can advance to target
func (s MoveState) CanTransitionTo(target MoveState) bool {
	switch s {
	case MoveStateDraft:
		return target == MoveStateConfirmed
	case MoveStateConfirmed:
		return target == MoveStateAssigned
	case MoveStateAssigned:
		return target == MoveStateDone
	}
	return false
}

// MoveKey is the natural key checked before a move is created
type MoveKey struct {
	ProductID           uuid.UUID
	Quantity            decimal.Decimal
	AdjustedDate        time.Time
	TransactionItemID   string
	FulfillmentCenterID *uuid.UUID
	ReasonCodeID        uuid.UUID
	SourceLocationID    uuid.UUID
	DestLocationID      uuid.UUID
}

// StockMove is a stock movement generated from an adjustment report line
type StockMove struct {
	ID                  uuid.UUID
	Name                string
	Origin              string
	ProductID           uuid.UUID
	Quantity            decimal.Decimal
	QuantityDone        decimal.Decimal
	State               MoveState
	SourceLocationID    uuid.UUID
	DestLocationID      uuid.UUID
	AdjustedDate        time.Time
	TransactionItemID   string
	FulfillmentCenterID *uuid.UUID
	ReasonCodeID        uuid.UUID
	CodeDescription     string
	ReportID            uuid.UUID
	CreatedAt           time.Time
	DoneAt              *time.Time
}

// NewStockMove builds a draft move from its natural key. The key quantity
// is stored as an absolute value.
func NewStockMove(key MoveKey, name, origin, codeDescription string, reportID uuid.UUID) (*StockMove, error) {
	if key.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if key.SourceLocationID == uuid.Nil || key.DestLocationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Source and destination locations are required")
	}
	return &StockMove{
		ID:                  uuid.New(),
		Name:                name,
		Origin:              origin,
		ProductID:           key.ProductID,
		Quantity:            key.Quantity.Abs(),
		QuantityDone:        decimal.Zero,
		State:               MoveStateDraft,
		SourceLocationID:    key.SourceLocationID,
		DestLocationID:      key.DestLocationID,
		AdjustedDate:        key.AdjustedDate,
		TransactionItemID:   key.TransactionItemID,
		FulfillmentCenterID: key.FulfillmentCenterID,
		ReasonCodeID:        key.ReasonCodeID,
		CodeDescription:     codeDescription,
		ReportID:            reportID,
		CreatedAt:           time.Now(),
	}, nil
}

func (m *StockMove) transition(target MoveState) error {
	if !m.State.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move stock move from %s to %s", m.State, target))
	}
	m.State = target
	return nil
}

// Confirm moves a draft to confirmed
func (m *StockMove) Confirm() error {
	return m.transition(MoveStateConfirmed)
}

// Assign reserves the quantity
func (m *StockMove) Assign() error {
	return m.transition(MoveStateAssigned)
}

// SetQuantityDone records the processed quantity on an assigned move
func (m *StockMove) SetQuantityDone(q decimal.Decimal) error {
	if m.State != MoveStateAssigned {
		return shared.NewDomainError("INVALID_STATE", "Quantity can only be recorded on assigned moves")
	}
	if q.IsNegative() || q.GreaterThan(m.Quantity) {
		return shared.NewDomainError("INVALID_QUANTITY", "Done quantity must be between zero and the move quantity")
	}
	m.QuantityDone = q
	return nil
}

// Finish marks the move done
func (m *StockMove) Finish(at time.Time) error {
	if err := m.transition(MoveStateDone); err != nil {
		return err
	}
	m.DoneAt = &at
	return nil
}

// Advance runs confirm, assign, quantity done and finish in order
func (m *StockMove) Advance(at time.Time) error {
	if m.State == MoveStateDraft {
		if err := m.Confirm(); err != nil {
			return err
		}
	}
	if err := m.Assign(); err != nil {
		return err
	}
	if err := m.SetQuantityDone(m.Quantity); err != nil {
		return err
	}
	return m.Finish(at)
}
