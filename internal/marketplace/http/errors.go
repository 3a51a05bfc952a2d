package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/green-harvest/harvest-backend/internal/api/http/middleware"
	"github.com/green-harvest/harvest-backend/internal/marketplace/domain"
)

// writeError maps service errors onto status codes. Anything unrecognised is
// a storage failure and answers 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoIdentity):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrWrongRole), errors.Is(err, domain.ErrNotRequestBuyer):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRequestClosed), errors.Is(err, domain.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).
			Str("request_id", middleware.GetRequestID(c.Request.Context())).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
