package router

import (
	"time"

	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/interfaces/http/handler"
	"github.com/erp/marketsync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config holds router configuration
type Config struct {
	APIVersion     string
	ServiceName    string
	TracingEnabled bool
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	// Meter records HTTP metrics; nil disables them
	Meter metric.Meter
}

// DefaultConfig returns default router configuration
func DefaultConfig() Config {
	return Config{
		APIVersion:     "v1",
		ServiceName:    "marketsync",
		MaxBodyBytes:   1 << 20,
		RequestTimeout: 10 * time.Minute,
	}
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	config     Config
	system     *handler.SystemHandler
	registrars []RouteRegistrar
}

// NewRouter creates a gin engine with the middleware chain installed
func NewRouter(cfg Config, system *handler.SystemHandler, log *zap.Logger) *Router {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v1"
	}
	engine := gin.New()
	engine.Use(
		logger.Recovery(log),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		logger.GinMiddleware(log),
		middleware.SpanAttributes(),
		middleware.HTTPMetrics(cfg.Meter, log),
		middleware.Secure(),
		middleware.BodyLimit(cfg.MaxBodyBytes),
		middleware.Timeout(cfg.RequestTimeout),
	)
	return &Router{engine: engine, config: cfg, system: system}
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes and returns the engine
func (r *Router) Setup() *gin.Engine {
	if r.system != nil {
		r.engine.GET("/health", r.system.Health)
		r.engine.GET("/api/"+r.config.APIVersion+"/system/info", r.system.GetSystemInfo)
	}

	api := r.engine.Group("/api/" + r.config.APIVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	return r.engine
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
