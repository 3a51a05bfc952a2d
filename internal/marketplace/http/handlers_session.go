package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/green-harvest/harvest-backend/internal/marketplace/service"
)

// Login stores a base identity for the session
func (h *Handler) Login(c *gin.Context) {
	var form service.LoginForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.svc.Login(c.Request.Context(), sessionID(c), form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// CurrentUser returns the session's identity
func (h *Handler) CurrentUser(c *gin.Context) {
	p, err := h.svc.CurrentUser(c.Request.Context(), sessionID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": p})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), sessionID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RegisterBuyer(c *gin.Context) {
	var form service.BuyerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	buyer, err := h.svc.RegisterBuyer(c.Request.Context(), sessionID(c), form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": buyer})
}

func (h *Handler) RegisterSeller(c *gin.Context) {
	var form service.SellerForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	seller, err := h.svc.RegisterSeller(c.Request.Context(), sessionID(c), form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": seller})
}
