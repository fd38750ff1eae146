package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodySizeLimiter caps the request body at maxBytes. Requests declaring a
// bigger body are rejected with 400 before anything is read, handlers see
// the rest through IsBodyTooLarge
func BodySizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fast reject for honest clients
		if c.Request.ContentLength > maxBytes {
			abort(c, http.StatusBadRequest, "Request body size exceeds limit")
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from a body cut off by BodySizeLimiter
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
