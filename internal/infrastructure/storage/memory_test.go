package storage

import (
	"context"
	"testing"

	"github.com/erp/marketsync/internal/domain/shared"
	"github.com/erp/marketsync/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"reports", "LIVE/000001/Inventory Report.tsv", "reports/live/000001/inventory-report.tsv"},
		{"", "ADJ/000003/inv_unprocessed_lines.CSV", "adj/000003/inv_unprocessed_lines.csv"},
		{"/reports/", "FBM/000010/payload", "reports/fbm/000010/payload"},
		{"reports", "//odd//name.tsv", "reports/odd/name.tsv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ObjectKey(tt.prefix, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ObjectKey("reports", " / ")
	assert.Error(t, err)
}

func TestMemoryPayloadStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryPayloadStore("reports")

	body := []byte("hello")
	key, err := m.Put(ctx, "LIVE/000001/payload.tsv", body, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "reports/live/000001/payload.tsv", key)
	body[0] = 'j'

	got, err := m.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got), "store keeps its own copy")
	assert.Equal(t, "text/plain", m.ContentType(key))

	_, err = m.Put(ctx, "LIVE/000001/payload.tsv", []byte("x"), "")
	assert.ErrorIs(t, err, ErrObjectExists)
	assert.Equal(t, 1, m.Len())

	_, err = m.Get(ctx, "reports/missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, &config.StorageConfig{Backend: "memory", KeyPrefix: "p"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryPayloadStore{}, store)

	_, err = New(ctx, &config.StorageConfig{Backend: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
