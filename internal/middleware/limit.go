package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LimitBody caps how many bytes a handler can read from the request body.
// Reads past the cap fail with *http.MaxBytesError.
func LimitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
