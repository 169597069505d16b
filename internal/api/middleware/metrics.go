package middleware

import (
	"time"

	"recipe-manager/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 記錄請求數量與延遲；path 使用路由樣板避免標籤爆量
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
