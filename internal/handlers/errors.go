package handlers

import (
	"errors"
	"net/http"

	"TodoAPI/internal/auth"
	"TodoAPI/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type apiError struct {
	Code    int
	Message string
}

func (e apiError) Error() string {
	return e.Message
}

func newBadRequestError(message string) apiError {
	return apiError{Code: http.StatusBadRequest, Message: message}
}

// toAPIError maps service errors to HTTP status codes. Unknown errors become 500
// with the message forwarded.
func toAPIError(err error) apiError {
	var apiErr apiError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, service.ErrInvalidInput):
		return apiError{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, service.ErrEmailTaken):
		return apiError{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, service.ErrNotFound):
		return apiError{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return apiError{Code: http.StatusUnauthorized, Message: err.Error()}
	default:
		return apiError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
}

func writeError(c *gin.Context, log zerolog.Logger, err error) {
	apiErr := toAPIError(err)
	if apiErr.Code >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(apiErr.Code, gin.H{"error": apiErr.Message})
}

func parseID(c *gin.Context, name string) (string, bool) {
	raw := c.Param(name)
	if _, err := uuid.Parse(raw); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return "", false
	}
	return raw, true
}
