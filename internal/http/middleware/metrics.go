package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/observability"
)

// Metrics records request counts and latency per route template. The scrape
// endpoint and the event stream are left out so long-lived connections do not
// skew latency.
func Metrics(m *observability.Metrics, skip ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skipped := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipped[p] = true
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if skipped[route] {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
