package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Laisky/openrouter-mcp/common/metrics"
)

// Metrics records request duration and status for every handled route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			// Unmatched routes collapse into one label to keep
			// cardinality bounded.
			path = "unmatched"
		}
		metrics.GlobalRecorder.RecordHTTPRequest(start, path, c.Request.Method,
			strconv.Itoa(c.Writer.Status()))
	}
}
