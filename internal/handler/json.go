package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/msomdec/product-catalog/internal/domain"
)

const msgInternal = "An unexpected error occurred. Please try again."

// writeError sends a JSON error response with the given status code and message.
func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondError maps service errors to status codes. Unexpected errors are
// logged with op and answered with a generic 500.
func respondError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, "Resource not found.")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, clientMessage(err))
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(c, http.StatusUnauthorized, "Unauthorized.")
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("op", op).Msg("request failed")
		writeError(c, http.StatusInternalServerError, msgInternal)
	}
}

// clientMessage strips everything up to the invalid-input marker so storage
// wrapping never reaches the client.
func clientMessage(err error) string {
	msg := err.Error()
	marker := domain.ErrInvalidInput.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}
