package middleware

import (
	"strings"
	"time"

	"movie-finder-service/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics returns a middleware that records API metrics
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only track API endpoints
		if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		metrics.RecordAPICall(routePath(c), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// routePath groups requests by their route pattern, e.g. /api/v1/sessions/:id
func routePath(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
