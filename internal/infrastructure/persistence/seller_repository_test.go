package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/marketsync/internal/domain/seller"
	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeller(t *testing.T, name string) *seller.Seller {
	t.Helper()
	s, err := seller.NewSeller(name, seller.Credentials{MerchantID: "M-" + name, AuthToken: "tok", MarketplaceCode: "DE"})
	require.NoError(t, err)
	de := seller.Marketplace{ID: uuid.New(), SellerID: s.ID, Name: "Amazon.de", MarketplaceID: "A1PA6795UKMFR9"}
	s.Marketplaces = []seller.Marketplace{de}
	s.Instances = []seller.Instance{{
		ID:               uuid.New(),
		SellerID:         s.ID,
		Name:             name + " DE",
		MarketplaceID:    de.MarketplaceID,
		MarketplaceRefID: de.ID,
		TaxPriceIncluded: true,
	}}
	return s
}

func TestGormSellerRepository_SaveAndFind(t *testing.T) {
	repo := NewGormSellerRepository(newTestDB(t))
	ctx := context.Background()

	s := newTestSeller(t, "acme")
	s.Program = seller.ProgramPanEU
	s.IsEuropean = true
	require.NoError(t, repo.Save(ctx, s))

	loaded, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", loaded.Name)
	assert.Equal(t, "M-acme", loaded.Credentials.MerchantID)
	assert.Equal(t, seller.ProgramPanEU, loaded.Program)
	require.Len(t, loaded.Marketplaces, 1)
	require.Len(t, loaded.Instances, 1)
	inst, ok := loaded.InstanceForSalesChannel("Amazon.de")
	require.True(t, ok)
	assert.True(t, inst.TaxPriceIncluded)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSellerRepository_UpdateStamps(t *testing.T) {
	repo := NewGormSellerRepository(newTestDB(t))
	ctx := context.Background()

	active := newTestSeller(t, "active")
	require.NoError(t, repo.Save(ctx, active))
	paused := newTestSeller(t, "paused")
	require.NoError(t, repo.Save(ctx, paused))

	paused.Active = false
	require.NoError(t, repo.Save(ctx, paused))

	synced := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	active.MarkStockAdjustmentSynced(synced)
	require.NoError(t, repo.Save(ctx, active))

	list, err := repo.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)
	require.NotNil(t, list[0].StockAdjustmentLastSyncAt)
	assert.True(t, list[0].StockAdjustmentLastSyncAt.Equal(synced))
	assert.Len(t, list[0].Instances, 1, "children survive a header update")
}
