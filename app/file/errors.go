package file

import (
	"bitwise74/file-drop/internal/service"
	"bitwise74/file-drop/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var errInvalidCode = errors.New("invalid file code")

// statusFor maps an error to the status code and message shown to the
// client. Backend details never leave this function
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrExpired),
		errors.Is(err, service.ErrEmptyInput),
		errors.Is(err, service.ErrSizeLimitExceeded),
		errors.Is(err, validators.ErrNoFile),
		errors.Is(err, validators.ErrNoFileName),
		errors.Is(err, validators.ErrNameTooLong),
		errors.Is(err, errInvalidCode):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func respondError(c *gin.Context, requestID string, err error) {
	status, msg := statusFor(err)

	c.JSON(status, gin.H{
		"statusCode": status,
		"message":    msg,
		"requestID":  requestID,
	})
}
