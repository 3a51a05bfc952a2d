package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/green-harvest/harvest-backend/internal/marketplace/service"
	"github.com/rs/zerolog"
)

const (
	// SessionHeader names the browser tab a request acts for
	SessionHeader  = "X-Session-Id"
	DefaultSession = "demo-session"
)

// Handler handles HTTP requests for the marketplace
type Handler struct {
	svc *service.MarketplaceService
	log zerolog.Logger
}

// New creates a new Handler
func New(svc *service.MarketplaceService, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

const CtxSessionID = "session_id"

// WithSession resolves the session header once per request
func WithSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := strings.TrimSpace(c.GetHeader(SessionHeader))
		if sid == "" {
			sid = DefaultSession
		}
		c.Set(CtxSessionID, sid)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	if sid := c.GetString(CtxSessionID); sid != "" {
		return sid
	}
	return DefaultSession
}
