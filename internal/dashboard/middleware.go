package dashboard

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/chainballotx/chainballotx-dashboard/pkg/logger"
)

// requestLogger logs every request once it has been served.
func requestLogger(lggr logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		keysAndValues := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
		}
		if len(c.Errors) > 0 {
			keysAndValues = append(keysAndValues, "errors", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			lggr.Errorw("Request failed", keysAndValues...)
		case status >= http.StatusBadRequest:
			lggr.Warnw("Request rejected", keysAndValues...)
		default:
			lggr.Debugw("Request served", keysAndValues...)
		}
	}
}

// apiCORS allows cross origin calls to the JSON API only. It is installed on the engine rather
// than the /api group so that preflight requests, which match no route, are answered too.
func apiCORS() gin.HandlerFunc {
	handler := cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	})

	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}
		handler(c)
	}
}
