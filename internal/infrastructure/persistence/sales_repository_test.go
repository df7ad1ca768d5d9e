package persistence

import (
	"context"
	"testing"

	"github.com/erp/marketsync/internal/domain/sales"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPartnerRepository(t *testing.T) {
	repo := NewGormPartnerRepository(newTestDB(t))
	ctx := context.Background()
	addr := sales.Address{Street: "Hauptstr. 1", Zip: "10115", City: "Berlin", StateCode: "BE", CountryCode: "DE"}

	buyer, err := sales.NewPartner("Jane Doe", sales.PartnerTypeInvoice, nil, addr)
	require.NoError(t, err)
	buyer.Email = "jane@example.com"
	require.NoError(t, repo.Create(ctx, buyer))

	amazon, err := sales.NewPartner("Amazon", sales.PartnerTypeInvoice, nil, addr)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, amazon))

	delivery, err := sales.NewPartner("John Doe", sales.PartnerTypeDelivery, &buyer.ID, sales.Address{Street: "Ring 5", Zip: "80331", City: "Munich", StateCode: "BY", CountryCode: "DE"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, delivery))

	found, err := repo.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, found.ID)
	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	found, err = repo.FindByNameAndPlace(ctx, "Amazon", "Berlin", "BE", "DE")
	require.NoError(t, err)
	assert.Equal(t, amazon.ID, found.ID)
	_, err = repo.FindByNameAndPlace(ctx, "Amazon", "Hamburg", "HH", "DE")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	found, err = repo.FindDelivery(ctx, sales.Fingerprint{Name: "John Doe", Address: delivery.Address})
	require.NoError(t, err)
	assert.Equal(t, delivery.ID, found.ID)
	require.NotNil(t, found.ParentID)
	assert.Equal(t, buyer.ID, *found.ParentID)

	_, err = repo.FindDelivery(ctx, sales.Fingerprint{Name: "Jane Doe", Address: addr})
	assert.ErrorIs(t, err, shared.ErrNotFound, "invoice partners are not delivery addresses")
}

func TestGormOrderRepository(t *testing.T) {
	repo := NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()
	instanceID, reportID := uuid.New(), uuid.New()

	exists, err := repo.Exists(ctx, instanceID, "302-1", "FBM")
	require.NoError(t, err)
	assert.False(t, exists)

	order, err := sales.NewOrder("AMZ_302-1", "302-1", uuid.New(), instanceID, reportID, "FBM")
	require.NoError(t, err)
	order.InvoicePartnerID = uuid.New()
	order.DeliveryPartnerID = order.InvoicePartnerID
	order.AddLine(sales.OrderLine{ProductID: uuid.New(), Kind: sales.LineKindProduct, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("9.5"), OrderItemID: "I1"})
	order.AddLine(sales.OrderLine{ProductID: uuid.New(), Kind: sales.LineKindShipping, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(4), OrderItemID: "I1"})
	require.NoError(t, repo.Create(ctx, order))

	exists, err = repo.Exists(ctx, instanceID, "302-1", "FBM")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.Exists(ctx, instanceID, "302-1", "FBA")
	require.NoError(t, err)
	assert.False(t, exists)

	orders, err := repo.FindByReport(ctx, reportID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "AMZ_302-1", orders[0].Name)
	require.Len(t, orders[0].Lines, 2)
	assert.True(t, orders[0].Total().Equal(decimal.NewFromInt(23)))
}

func TestGormCarrierRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCarrierRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.CarrierModel{ID: uuid.New(), Name: "DHL", ServiceLevel: "Standard"}).Error)

	c, err := repo.FindByServiceLevel(ctx, "Standard")
	require.NoError(t, err)
	assert.Equal(t, "DHL", c.Name)

	_, err = repo.FindByServiceLevel(ctx, "Expedited")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
