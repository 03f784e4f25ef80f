package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atichat/workfolio/pkg/metrics"
)

// PrometheusMiddleware Prometheus监控中间件.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		metrics.ActiveConnections.Inc()

		c.Next()

		metrics.ActiveConnections.Dec()
		metrics.RequestCounter.WithLabelValues(method, path).Inc()

		duration := time.Since(start).Seconds()
		metrics.RequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
