package sales

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPartner(t *testing.T) {
	_, err := NewPartner("  ", PartnerTypeInvoice, nil, Address{})
	assert.Error(t, err)

	p, err := NewPartner("Jane Doe", PartnerTypeInvoice, nil, Address{City: "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, PartnerTypeInvoice, p.Type)
}

func TestPartner_MatchesDelivery(t *testing.T) {
	addr := Address{Street: "Main 1", Street2: "Apt 2", Zip: "10115", City: "Berlin", StateCode: "BE", CountryCode: "DE"}
	p, err := NewPartner("Jane Doe", PartnerTypeInvoice, nil, addr)
	require.NoError(t, err)

	assert.True(t, p.MatchesDelivery("Jane Doe", addr))
	assert.False(t, p.MatchesDelivery("John Doe", addr))

	other := addr
	other.Zip = "10117"
	assert.False(t, p.MatchesDelivery("Jane Doe", other))

	p.Address.Street2 = ""
	other = addr
	other.Street2 = "Hinterhaus"
	assert.True(t, p.MatchesDelivery("Jane Doe", other), "empty street2 matches anything")
}

func TestOrder_AddLine(t *testing.T) {
	o, err := NewOrder("", "302-1", uuid.New(), uuid.New(), uuid.New(), "FBM")
	require.NoError(t, err)
	assert.Equal(t, "302-1", o.Name)

	line := OrderLine{ProductID: uuid.New(), Kind: LineKindProduct, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5), OrderItemID: "I1"}
	assert.True(t, o.AddLine(line))
	assert.False(t, o.AddLine(line), "duplicate order item id")
	assert.True(t, o.AddLine(OrderLine{Kind: LineKindShipping, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(3), OrderItemID: "I1"}))
	assert.True(t, o.AddLine(OrderLine{Kind: LineKindPromotion, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(-2), OrderItemID: "I1"}))

	assert.Len(t, o.Lines, 3)
	assert.True(t, o.Total().Equal(decimal.NewFromInt(11)))
	assert.Equal(t, o.ID, o.Lines[0].OrderID)

	_, err = NewOrder("x", "", uuid.New(), uuid.New(), uuid.New(), "FBM")
	assert.Error(t, err)
}
