package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/marketsync/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRegistrar struct{}

func (pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/reports/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func TestRouter_Setup(t *testing.T) {
	system := handler.NewSystemHandler("test")
	system.AddCheck("database", func(ctx context.Context) error { return nil })

	engine := NewRouter(DefaultConfig(), system, zap.NewNop()).Register(pingRegistrar{}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_APIVersion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIVersion = "v2"
	engine := NewRouter(cfg, nil, zap.NewNop()).Register(pingRegistrar{}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/reports/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/ping", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RecoversPanics(t *testing.T) {
	r := NewRouter(DefaultConfig(), nil, zap.NewNop())
	r.Engine().GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.Setup().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
