package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Data writes raw bytes with an explicit content type, used for rendered reports.
func Data(c *gin.Context, status int, contentType string, body []byte) {
	c.Data(status, contentType, body)
}
