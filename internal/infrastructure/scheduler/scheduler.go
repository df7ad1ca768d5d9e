package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	reportapp "github.com/erp/marketsync/internal/application/report"
	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/seller"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportRunner runs the unattended passes of one report type for one seller
type ReportRunner interface {
	AutoImport(ctx context.Context, t report.Type, req reportapp.AutoImportRequest) (*reportapp.ImportResult, error)
	AutoProcess(ctx context.Context, t report.Type, sellerID uuid.UUID) (*reportapp.ProcessResult, error)
}

// SellerProvider lists the sellers a pass iterates
type SellerProvider interface {
	FindActive(ctx context.Context) ([]seller.Seller, error)
}

// Config holds scheduler configuration
type Config struct {
	Enabled         bool
	ImportInterval  time.Duration
	ProcessInterval time.Duration
	// Types are the report types the loop imports and processes
	Types []report.Type
	// PassTimeout bounds one seller/type pass
	PassTimeout time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		ImportInterval:  time.Hour,
		ProcessInterval: 15 * time.Minute,
		Types:           report.Types(),
		PassTimeout:     30 * time.Minute,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ImportInterval <= 0 || c.ProcessInterval <= 0 {
		return ErrInvalidConfig
	}
	if c.PassTimeout <= 0 {
		return ErrInvalidConfig
	}
	for _, t := range c.Types {
		if !t.IsValid() {
			return ErrInvalidConfig
		}
	}
	return nil
}

// Scheduler periodically imports and processes reports for every active
// seller and enabled report type
type Scheduler struct {
	config  Config
	runner  ReportRunner
	sellers SellerProvider
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// New creates a new scheduler
func New(config Config, runner ReportRunner, sellers SellerProvider, logger *zap.Logger) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		config:  config,
		runner:  runner,
		sellers: sellers,
		logger:  logger,
	}, nil
}

// Start starts the import and process loops
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go s.runLoop(ctx, s.config.ImportInterval, s.RunImports)
	go s.runLoop(ctx, s.config.ProcessInterval, s.RunProcesses)

	s.logger.Info("Report scheduler started",
		zap.Duration("import_interval", s.config.ImportInterval),
		zap.Duration("process_interval", s.config.ProcessInterval),
		zap.Int("types", len(s.config.Types)),
	)
	return nil
}

// Stop stops both loops and waits for a running pass to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Report scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Report scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loops are active
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *Scheduler) runLoop(ctx context.Context, interval time.Duration, pass func(ctx context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pass(ctx)
		}
	}
}

// RunImports runs one auto-import pass over every active seller
func (s *Scheduler) RunImports(ctx context.Context) {
	s.eachSeller(ctx, "import", func(ctx context.Context, t report.Type, sel seller.Seller) error {
		result, err := s.runner.AutoImport(ctx, t, reportapp.AutoImportRequest{SellerID: sel.ID})
		if err != nil {
			return err
		}
		s.logger.Debug("Scheduled import done",
			zap.String("type", t.String()),
			zap.String("seller_id", sel.ID.String()),
			zap.Int("created", len(result.Created)),
			zap.Int("failed", result.Failed),
		)
		return nil
	})
}

// RunProcesses runs one auto-process pass over every active seller
func (s *Scheduler) RunProcesses(ctx context.Context) {
	s.eachSeller(ctx, "process", func(ctx context.Context, t report.Type, sel seller.Seller) error {
		result, err := s.runner.AutoProcess(ctx, t, sel.ID)
		if err != nil {
			return err
		}
		s.logger.Debug("Scheduled process done",
			zap.String("type", t.String()),
			zap.String("seller_id", sel.ID.String()),
			zap.Int("processed", result.Processed),
			zap.Int("failed", result.Failed),
		)
		return nil
	})
}

func (s *Scheduler) eachSeller(ctx context.Context, kind string, fn func(ctx context.Context, t report.Type, sel seller.Seller) error) {
	sellers, err := s.sellers.FindActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list active sellers", zap.String("pass", kind), zap.Error(err))
		return
	}

	start := time.Now()
	failures := 0
	for _, sel := range sellers {
		for _, t := range s.config.Types {
			if ctx.Err() != nil {
				return
			}
			passCtx, cancel := context.WithTimeout(ctx, s.config.PassTimeout)
			err := fn(passCtx, t, sel)
			cancel()

			switch {
			case err == nil:
			case errors.Is(err, report.ErrAlreadyRunning):
				s.logger.Info("Skipping seller, report type already running",
					zap.String("pass", kind),
					zap.String("type", t.String()),
					zap.String("seller_id", sel.ID.String()),
				)
			default:
				failures++
				s.logger.Error("Scheduled pass failed",
					zap.String("pass", kind),
					zap.String("type", t.String()),
					zap.String("seller_id", sel.ID.String()),
					zap.Error(err),
				)
			}
		}
	}

	s.logger.Info("Scheduled pass finished",
		zap.String("pass", kind),
		zap.Int("sellers", len(sellers)),
		zap.Int("failures", failures),
		zap.Duration("elapsed", time.Since(start)),
	)
}
