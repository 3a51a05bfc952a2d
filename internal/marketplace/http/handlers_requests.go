package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/green-harvest/harvest-backend/internal/marketplace/domain"
	"github.com/green-harvest/harvest-backend/internal/marketplace/service"
)

// CreateRequest offers a new product to a buyer on behalf of the session's seller
func (h *Handler) CreateRequest(c *gin.Context) {
	var form service.RequestForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req, err := h.svc.CreateRequest(c.Request.Context(), sessionID(c), form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": req})
}

func (h *Handler) AcceptRequest(c *gin.Context) {
	h.decide(c, domain.StatusAccepted)
}

func (h *Handler) RejectRequest(c *gin.Context) {
	h.decide(c, domain.StatusRejected)
}

func (h *Handler) decide(c *gin.Context, status domain.Status) {
	req, err := h.svc.Decide(c.Request.Context(), sessionID(c), c.Param("id"), status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// GetDashboard returns the session user's requests grouped by status
func (h *Handler) GetDashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context(), sessionID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": d})
}
