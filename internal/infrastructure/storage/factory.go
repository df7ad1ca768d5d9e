package storage

import (
	"context"
	"fmt"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New builds the payload store selected by configuration
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (report.PayloadStore, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3PayloadStore(ctx, cfg, WithLogger(logger))
	case "memory", "":
		logger.Warn("Using in-memory payload storage; payloads are lost on restart")
		return NewMemoryPayloadStore(cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
