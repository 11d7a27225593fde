package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawgrove/pawgrove/backend/internal/metrics"
)

// MetricsMiddleware collects HTTP metrics for Prometheus
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime).Seconds()
		// Numeric status code as string so Grafana queries like
		// status=~"5.." match 5xx errors
		statusStr := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)
	}
}

// RecordRateLimitExceeded records a rate limiting rejection
func RecordRateLimitExceeded(clientIP string) {
	metrics.Get().RateLimitExceededTotal.WithLabelValues(clientIP).Inc()
}

// RecordError records an application error by type
func RecordError(errorType string) {
	metrics.Get().ErrorsTotal.WithLabelValues(errorType).Inc()
}
