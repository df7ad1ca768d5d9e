package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "marketsync", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "marketsync", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "memory", cfg.Storage.Backend)
		assert.Equal(t, "memory", cfg.Lease.Backend)
		assert.Equal(t, 30*time.Minute, cfg.Lease.TTL)
		assert.Equal(t, 1000*time.Second, cfg.Gateway.Timeout)
		assert.Equal(t, int64(64<<20), cfg.Gateway.MaxResponseSize)
		assert.True(t, cfg.Scheduler.LiveInventory)
		assert.True(t, cfg.Scheduler.StockAdjustment)
		assert.True(t, cfg.Scheduler.UnshippedOrders)
		assert.False(t, cfg.Scheduler.Enabled)
	})

	t.Run("loads values from environment variables with MSYNC prefix", func(t *testing.T) {
		t.Setenv("MSYNC_APP_NAME", "sync-test")
		t.Setenv("MSYNC_DATABASE_HOST", "db.local")
		t.Setenv("MSYNC_DATABASE_PORT", "5433")
		t.Setenv("MSYNC_GATEWAY_ENDPOINT", "https://iap.example.com/rpc")
		t.Setenv("MSYNC_GATEWAY_TIMEOUT", "30s")
		t.Setenv("MSYNC_SCHEDULER_ENABLED", "true")
		t.Setenv("MSYNC_SCHEDULER_UNSHIPPED_ORDERS", "false")
		t.Setenv("MSYNC_LEASE_BACKEND", "redis")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "sync-test", cfg.App.Name)
		assert.Equal(t, "db.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "https://iap.example.com/rpc", cfg.Gateway.Endpoint)
		assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
		assert.True(t, cfg.Scheduler.Enabled)
		assert.False(t, cfg.Scheduler.UnshippedOrders)
		assert.Equal(t, "redis", cfg.Lease.Backend)
	})

	t.Run("rejects unknown storage backend", func(t *testing.T) {
		t.Setenv("MSYNC_STORAGE_BACKEND", "gcs")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.backend")
	})

	t.Run("s3 backend requires a bucket", func(t *testing.T) {
		t.Setenv("MSYNC_STORAGE_BACKEND", "s3")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})
}

func TestValidate_Production(t *testing.T) {
	base := func() *Config {
		cfg := &Config{App: AppConfig{Env: "production"}}
		applyDefaults(cfg)
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"
		cfg.Gateway.AccountToken = "acct-token"
		return cfg
	}

	t.Run("valid production config", func(t *testing.T) {
		assert.NoError(t, base().validate())
	})

	t.Run("requires database password", func(t *testing.T) {
		cfg := base()
		cfg.Database.Password = ""
		assert.ErrorContains(t, cfg.validate(), "database.password")
	})

	t.Run("rejects disabled sslmode", func(t *testing.T) {
		cfg := base()
		cfg.Database.SSLMode = "disable"
		assert.ErrorContains(t, cfg.validate(), "sslmode")
	})

	t.Run("requires gateway account token", func(t *testing.T) {
		cfg := base()
		cfg.Gateway.AccountToken = ""
		assert.ErrorContains(t, cfg.validate(), "gateway.account_token")
	})
}

func TestValidate_Pool(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Database.MaxIdleConns = 100
	assert.ErrorContains(t, cfg.validate(), "max_idle_conns")

	cfg.Database.MaxIdleConns = 1
	cfg.Telemetry.SamplingRatio = 2
	assert.ErrorContains(t, cfg.validate(), "sampling_ratio")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "secret", DBName: "marketsync", SSLMode: "require"}
	assert.Equal(t, "postgres://app:secret@db:5432/marketsync?sslmode=require", d.DSN())

	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
