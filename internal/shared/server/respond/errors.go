package respond

import (
	"github.com/gin-gonic/gin"

	"pagespeed-campaign/internal/shared/telemetry"
)

// Error codes shared by handlers and middleware.
const (
	CodeInvalidRequest = "invalid_request"
	CodeMissingAPIKey  = "missing_api_key"
	CodeNotMapped      = "not_mapped"
	CodeNotFound       = "not_found"
	CodeUpstream       = "upstream_error"
	CodeRateLimited    = "rate_limited"
	CodeStorage        = "storage_error"
	CodeInternal       = "internal_error"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response and aborts the chain.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
