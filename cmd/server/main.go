package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	reportapp "github.com/erp/marketsync/internal/application/report"
	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/infrastructure/config"
	"github.com/erp/marketsync/internal/infrastructure/gateway"
	"github.com/erp/marketsync/internal/infrastructure/lease"
	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/infrastructure/persistence"
	"github.com/erp/marketsync/internal/infrastructure/scheduler"
	"github.com/erp/marketsync/internal/infrastructure/storage"
	"github.com/erp/marketsync/internal/infrastructure/telemetry"
	"github.com/erp/marketsync/internal/interfaces/http/handler"
	"github.com/erp/marketsync/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// version is set at build time
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting marketsync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = meterProvider.Shutdown(shutdownCtx)
		_ = tracerProvider.Shutdown(shutdownCtx)
	}()

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	dbTracing.DBName = cfg.Database.DBName
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		return err
	}

	var meter metric.Meter
	var syncMetrics *telemetry.SyncMetrics
	if meterProvider.IsEnabled() {
		meter = meterProvider.Meter("marketsync")
		if sqlDB, err := db.DB.DB(); err == nil {
			if _, err := telemetry.RegisterDBPoolMetrics(meter, sqlDB); err != nil {
				log.Warn("DB pool metrics disabled", zap.Error(err))
			}
		}
		if syncMetrics, err = telemetry.NewSyncMetrics(meter); err != nil {
			log.Warn("Sync metrics disabled", zap.Error(err))
		}
	}

	payloads, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		return err
	}

	leaser, redisClient, err := newLeaser(ctx, cfg, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	gatewayOpts := []gateway.Option{gateway.WithLogger(log)}
	if syncMetrics != nil {
		gatewayOpts = append(gatewayOpts, gateway.WithObserver(syncMetrics))
	}
	gw, err := gateway.NewClient(gateway.Config{
		Endpoint:        cfg.Gateway.Endpoint,
		DecodeEndpoint:  cfg.Gateway.DecodeEndpoint,
		AccountToken:    cfg.Gateway.AccountToken,
		DBUUID:          cfg.Gateway.DBUUID,
		AppName:         cfg.Gateway.AppName,
		Timeout:         cfg.Gateway.Timeout,
		MaxResponseSize: cfg.Gateway.MaxResponseSize,
	}, gatewayOpts...)
	if err != nil {
		return err
	}

	sellers := persistence.NewGormSellerRepository(db.DB)
	service := reportapp.NewService(
		persistence.NewGormTransactionScope(db.DB),
		persistence.NewRepositories(db.DB),
		gw,
		payloads,
		persistence.NewGormAuditSink(db.DB),
		persistence.NewGormMessagePoster(db.DB),
		leaser,
		log,
	)
	service.SetLeaseTTL(cfg.Lease.TTL)
	if syncMetrics != nil {
		service.SetMetrics(syncMetrics)
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		schedCfg := scheduler.DefaultConfig()
		schedCfg.ImportInterval = cfg.Scheduler.ImportInterval
		schedCfg.ProcessInterval = cfg.Scheduler.ProcessInterval
		schedCfg.Types = enabledTypes(cfg.Scheduler)
		sched, err = scheduler.New(schedCfg, service, sellers, log)
		if err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.SetupValidator()

	system := handler.NewSystemHandler(version)
	system.AddCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if redisClient != nil {
		system.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	routerCfg := router.DefaultConfig()
	routerCfg.ServiceName = cfg.Telemetry.ServiceName
	routerCfg.TracingEnabled = cfg.Telemetry.Enabled
	routerCfg.Meter = meter
	r := router.NewRouter(routerCfg, system, log)
	if err := r.Engine().SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return err
	}
	engine := r.Register(handler.NewReportHandler(service)).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Warn("Scheduler did not stop in time", zap.Error(err))
		}
	}
	return srv.Shutdown(shutdownCtx)
}

// newLeaser returns the configured leaser and, for the redis backend, the
// client behind it
func newLeaser(ctx context.Context, cfg *config.Config, log *zap.Logger) (report.Leaser, *redis.Client, error) {
	if cfg.Lease.Backend != "redis" {
		log.Info("Using in-process leases; run a single instance")
		return lease.NewMemoryLeaser(), nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return lease.NewRedisLeaser(client, log), client, nil
}

func enabledTypes(cfg config.SchedulerConfig) []report.Type {
	var types []report.Type
	if cfg.LiveInventory {
		types = append(types, report.TypeLiveInventory)
	}
	if cfg.StockAdjustment {
		types = append(types, report.TypeStockAdjustment)
	}
	if cfg.UnshippedOrders {
		types = append(types, report.TypeUnshippedOrders)
	}
	return types
}
