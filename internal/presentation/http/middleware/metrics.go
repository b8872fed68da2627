package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer/pkg/metrics"
)

// MetricsMiddleware counts requests by method, route template and status
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
	}
}
