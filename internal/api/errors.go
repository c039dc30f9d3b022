package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/board"
)

// errorMessages are the client-facing texts for a route's failures.
type errorMessages struct {
	notFound string
	upstream string
}

var defaultMessages = errorMessages{
	notFound: "Not found",
	upstream: "Upstream service failed",
}

// statusFor maps a board error category to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, board.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, board.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, board.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, board.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes {"error": msg} for err and records err on the
// context for the request logger. Internal details never reach the client
// except for validation reasons.
func abortWithError(c *gin.Context, err error, msgs errorMessages) {
	_ = c.Error(err)

	status := statusFor(err)
	msg := http.StatusText(status)
	switch status {
	case http.StatusNotFound:
		msg = msgs.notFound
	case http.StatusBadRequest:
		var verr *board.ValidationError
		if errors.As(err, &verr) {
			msg = verr.Reason
		}
	case http.StatusBadGateway:
		msg = msgs.upstream
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
