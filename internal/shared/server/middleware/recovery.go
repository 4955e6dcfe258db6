package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"pagespeed-campaign/internal/shared/server/respond"
	"pagespeed-campaign/internal/shared/telemetry"
)

// Recovery turns a panicking handler into a 500 envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      rec,
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"stack":      string(debug.Stack()),
			}
			if route := c.FullPath(); route != "" {
				fields["route"] = route
			}
			telemetry.Error("request.panic", fields)
			if !c.Writer.Written() {
				respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "Unexpected server error", nil)
				return
			}
			c.Abort()
		}()
		c.Next()
	}
}
