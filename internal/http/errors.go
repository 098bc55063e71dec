package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/domain"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"message": ...}. Domain errors carry their own
// client message; anything else is logged and hidden.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)

	var derr *domain.Error
	if !errors.As(err, &derr) {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	if errors.Is(err, domain.ErrDependency) {
		h.logger.WithError(err).WithField("path", c.FullPath()).Warn("dependency failed")
	}
	c.JSON(status, gin.H{"message": derr.Msg})
}

func abortMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

// bindJSON decodes the request body into obj. An empty body decodes as {}
// so missing fields are reported by the services.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return false
	}
	return true
}
