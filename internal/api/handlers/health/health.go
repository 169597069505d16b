package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-manager/internal/core/queue"
	"recipe-manager/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const pingTimeout = 2 * time.Second

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Database  string                 `json:"database"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
	Producers map[string]bool        `json:"producers,omitempty"`
}

// Checker 健康檢查所需的依賴，欄位皆可為 nil
type Checker struct {
	Version   string
	Ping      func(ctx context.Context) error
	Queue     func() *queue.Status
	Cache     func() map[string]interface{}
	Producers func() map[string]bool
}

func (h *Checker) database(ctx context.Context) (string, error) {
	if h.Ping == nil {
		return "not_configured", nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := h.Ping(ctx); err != nil {
		return "unavailable", err
	}
	return "ok", nil
}

// HealthCheck 健康檢查處理器
func (h *Checker) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	dbStatus, err := h.database(c.Request.Context())
	status := "ok"
	if err != nil {
		status = "degraded"
		common.LogWarn("Database ping failed", zap.Error(err))
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   h.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Database: dbStatus,
	}
	if h.Queue != nil {
		response.Queue = h.Queue()
	}
	if h.Cache != nil {
		response.Cache = h.Cache()
	}
	if h.Producers != nil {
		response.Producers = h.Producers()
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：資料庫無法連線時回傳 503
func (h *Checker) ReadinessCheck(c *gin.Context) {
	dbStatus, err := h.database(c.Request.Context())
	if err != nil {
		common.LogWarn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"database": dbStatus,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": dbStatus,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Checker) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
