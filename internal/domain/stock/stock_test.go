package stock

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMoveKey() MoveKey {
	return MoveKey{
		ProductID:         uuid.New(),
		Quantity:          decimal.NewFromInt(-4),
		AdjustedDate:      time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		TransactionItemID: "T-1",
		ReasonCodeID:      uuid.New(),
		SourceLocationID:  uuid.New(),
		DestLocationID:    uuid.New(),
	}
}

func TestNewStockMove(t *testing.T) {
	m, err := NewStockMove(testMoveKey(), "Widget", "ADJ/000001", "Damaged", uuid.New())
	require.NoError(t, err)
	assert.True(t, m.Quantity.Equal(decimal.NewFromInt(4)), "quantity is stored absolute")
	assert.Equal(t, MoveStateDraft, m.State)

	key := testMoveKey()
	key.ProductID = uuid.Nil
	_, err = NewStockMove(key, "x", "o", "", uuid.New())
	assert.Error(t, err)

	key = testMoveKey()
	key.DestLocationID = uuid.Nil
	_, err = NewStockMove(key, "x", "o", "", uuid.New())
	assert.Error(t, err)
}

func TestStockMove_Advance(t *testing.T) {
	m, err := NewStockMove(testMoveKey(), "Widget", "ADJ/000001", "", uuid.New())
	require.NoError(t, err)

	at := time.Now()
	require.NoError(t, m.Advance(at))
	assert.Equal(t, MoveStateDone, m.State)
	assert.True(t, m.QuantityDone.Equal(m.Quantity))
	require.NotNil(t, m.DoneAt)

	assert.Error(t, m.Advance(at), "done moves cannot advance")
}

func TestStockMove_OutOfOrder(t *testing.T) {
	m, err := NewStockMove(testMoveKey(), "Widget", "o", "", uuid.New())
	require.NoError(t, err)

	assert.Error(t, m.Assign())
	assert.Error(t, m.SetQuantityDone(decimal.NewFromInt(1)))
	require.NoError(t, m.Confirm())
	require.NoError(t, m.Assign())
	assert.Error(t, m.SetQuantityDone(decimal.NewFromInt(5)))
}

func TestWarehouse_LocationFor(t *testing.T) {
	w := Warehouse{ID: uuid.New(), LotStockID: uuid.New()}

	loc, ok := w.LocationFor(DispositionSellable)
	assert.True(t, ok)
	assert.Equal(t, w.LotStockID, loc)

	_, ok = w.LocationFor(Disposition("CUSTOMER_DAMAGED"))
	assert.False(t, ok)

	unsellable := uuid.New()
	w.UnsellableLocationID = &unsellable
	loc, ok = w.LocationFor(DispositionUnsellable)
	assert.True(t, ok)
	assert.Equal(t, unsellable, loc)
}

func TestNewInventoryAdjustment(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	adj := NewInventoryAdjustment("LIVE/000001", uuid.New(), uuid.New(), map[uuid.UUID]decimal.Decimal{
		a: decimal.NewFromInt(8),
		b: decimal.NewFromInt(1),
	})
	assert.Len(t, adj.Lines, 2)
	assert.True(t, adj.Lines[0].ProductID.String() < adj.Lines[1].ProductID.String())

	adj.Apply(time.Now())
	assert.True(t, adj.Applied)
}

func TestReasonCatalog(t *testing.T) {
	group := ReasonGroup{ID: uuid.New(), Name: "Misplaced", IsCounterpart: true}
	other := uuid.New()
	p := ReasonCode{ID: uuid.New(), Name: "P", GroupID: &group.ID}
	m := ReasonCode{ID: uuid.New(), Name: "M", GroupID: &group.ID, CounterpartID: &p.ID}
	dupM := ReasonCode{ID: uuid.New(), Name: "M", GroupID: &other}
	ungrouped := ReasonCode{ID: uuid.New(), Name: "Z"}
	cfg := AdjustmentConfig{ID: uuid.New(), GroupID: group.ID}

	cat := NewReasonCatalog([]ReasonCode{p, m, dupM, ungrouped}, []ReasonGroup{group}, []AdjustmentConfig{cfg})

	assert.Len(t, cat.CodesNamed("M"), 2)
	assert.Empty(t, cat.CodesNamed("Z"))

	code, ok := cat.CodeInGroup("M", group.ID)
	require.True(t, ok)
	assert.Equal(t, m.ID, code.ID)

	cp, ok := cat.Counterpart(m)
	require.True(t, ok)
	assert.Equal(t, "P", cp)
	_, ok = cat.Counterpart(p)
	assert.False(t, ok)

	_, ok = cat.ConfigFor(group.ID)
	assert.True(t, ok)
	_, ok = cat.ConfigFor(other)
	assert.False(t, ok)
}

func TestMarketplaceProduct_BackfillChannelSKU(t *testing.T) {
	mp := NewMarketplaceProduct(NewProduct("Widget", "W-1"), uuid.New(), FulfillmentFBA)
	assert.Equal(t, "W-1", mp.SellerSKU)
	assert.False(t, mp.BackfillChannelSKU(""))
	assert.True(t, mp.BackfillChannelSKU("X001"))
	assert.False(t, mp.BackfillChannelSKU("X002"))
	assert.Equal(t, "X001", mp.FulfillmentChannelSKU)
}
