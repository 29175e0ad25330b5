package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/futscout/scout-engine/internal/scout"
)

// DataStore is the slice of the store the health endpoints touch.
type DataStore interface {
	HealthCheck() error
	CountPlayerSeasons(ctx context.Context) (int64, error)
}

// CacheChecker reports cache availability.
type CacheChecker interface {
	IsHealthy() bool
	GetStats() (map[string]interface{}, error)
}

// HealthStatus reports service health with per-dependency checks.
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db     DataStore
	cache  CacheChecker
	engine *scout.Engine
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db DataStore, cacheChecker CacheChecker, engine *scout.Engine, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		cache:  cacheChecker,
		engine: engine,
		logger: logger,
	}
}

// GetHealth returns the basic health status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := HealthStatus{
		Status:    "ok",
		Service:   "scout-engine",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.db == nil {
		response.Checks["database"] = "disabled"
	} else if err := h.db.HealthCheck(); err != nil {
		response.Status = "unhealthy"
		response.Checks["database"] = "failed: " + err.Error()
	} else {
		response.Checks["database"] = "ok"
	}

	if h.cache == nil {
		response.Checks["cache"] = "disabled"
	} else if !h.cache.IsHealthy() {
		response.Status = "unhealthy"
		response.Checks["cache"] = "failed"
	} else {
		response.Checks["cache"] = "ok"
	}

	statusCode := http.StatusOK
	if response.Status != "ok" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetReady returns the readiness status. The service is ready once the
// database answers and the engine holds a built snapshot.
func (h *HealthHandler) GetReady(c *gin.Context) {
	response := HealthStatus{
		Status:    "ready",
		Service:   "scout-engine",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.db == nil {
		response.Checks["database"] = "disabled"
	} else if err := h.db.HealthCheck(); err != nil {
		response.Status = "not_ready"
		response.Checks["database"] = "failed: " + err.Error()
	} else {
		response.Checks["database"] = "ok"
	}

	if h.engine.Ready() {
		response.Checks["engine"] = "built"
	} else {
		response.Status = "not_ready"
		response.Checks["engine"] = "not built"
	}

	statusCode := http.StatusOK
	if response.Status != "ready" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetMetrics returns basic metrics for monitoring
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	metrics := map[string]interface{}{
		"service":   "scout-engine",
		"timestamp": time.Now(),
		"engine":    h.engine.Status(),
	}

	if h.db != nil {
		if count, err := h.db.CountPlayerSeasons(c.Request.Context()); err == nil {
			metrics["stored_player_seasons"] = count
		}
	}

	if h.cache != nil {
		if stats, err := h.cache.GetStats(); err == nil {
			metrics["cache"] = stats
		}
	}

	c.JSON(http.StatusOK, metrics)
}
