package middleware

import (
	"gearlog/internal/pkg/requestid"

	"github.com/gin-gonic/gin"
)

const maxRequestIDLength = 128

// RequestID echoes X-Request-ID or generates a ULID, and makes it available
// through the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestid.Header)
		if id == "" || len(id) > maxRequestIDLength {
			id = requestid.New()
		}

		c.Set("request_id", id)
		c.Request = c.Request.WithContext(requestid.WithID(c.Request.Context(), id))
		c.Header(requestid.Header, id)

		c.Next()
	}
}
