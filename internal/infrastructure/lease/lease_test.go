package lease

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryLeaser_Exclusive(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLeaser()
	key := report.LeaseKey(report.TypeLiveInventory, uuid.New())

	first, err := m.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, m.Held(key))

	_, err = m.Acquire(ctx, key, time.Minute)
	assert.ErrorIs(t, err, report.ErrAlreadyRunning)

	other, err := m.Acquire(ctx, report.LeaseKey(report.TypeStockAdjustment, uuid.New()), time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, first.Release(ctx))
	assert.False(t, m.Held(key))

	again, err := m.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestMemoryLeaser_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewMemoryLeaser()
	m.nowFunc = func() time.Time { return now }

	stale, err := m.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	fresh, err := m.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err, "expired lease can be taken over")

	require.NoError(t, stale.Release(ctx))
	assert.True(t, m.Held("k"), "stale holder must not free the new lease")
	require.NoError(t, fresh.Release(ctx))
	assert.False(t, m.Held("k"))
}

func TestMemoryLeaser_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryLeaser().Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestRedisLeaser runs against a live server when MSYNC_TEST_REDIS_ADDR is set
func TestRedisLeaser(t *testing.T) {
	addr := os.Getenv("MSYNC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MSYNC_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	l := NewRedisLeaser(client, zap.NewNop())
	key := report.LeaseKey(report.TypeUnshippedOrders, uuid.New())

	held, err := l.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, key, 5*time.Second)
	assert.ErrorIs(t, err, report.ErrAlreadyRunning)

	require.NoError(t, held.Release(ctx))
	again, err := l.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}
