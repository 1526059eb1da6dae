package health

import (
	"net/http"
	"runtime"
	"time"

	"ingredient-canonicalizer/internal/core/reference"
	"ingredient-canonicalizer/internal/infrastructure/config"
	"ingredient-canonicalizer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Reference *reference.Stats       `json:"reference,omitempty"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	cfg, exists := c.Get("config")
	if !exists {
		common.LogError("Configuration not found in context")
		c.JSON(common.ErrInternalError.Status, common.ErrInternalError.Response("configuration missing from context"))
		return
	}
	config, ok := cfg.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(common.ErrInternalError.Status, common.ErrInternalError.Response("invalid configuration type"))
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   config.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	// 參照資料索引規模
	if repoVal, exists := c.Get("reference_repository"); exists {
		if repo, ok := repoVal.(*reference.Repository); ok {
			stats := repo.Stats()
			response.Reference = &stats
		}
	}

	common.LogInfo("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器：參照資料載入完成即就緒
func ReadinessCheck(c *gin.Context) {
	if _, exists := c.Get("reference_repository"); !exists {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "loading",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
