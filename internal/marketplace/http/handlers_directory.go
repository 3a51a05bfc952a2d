package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListBuyers lists the shops a seller can offer produce to
func (h *Handler) ListBuyers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"buyers": h.svc.Buyers()})
}

func (h *Handler) GetBuyer(c *gin.Context) {
	buyer, ok := h.svc.Buyer(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "buyer not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"buyer": buyer})
}

func (h *Handler) GetSeller(c *gin.Context) {
	seller, ok := h.svc.Seller(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "seller not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"seller": seller})
}

// ListSellerProducts returns an empty list for unknown sellers
func (h *Handler) ListSellerProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": h.svc.SellerProducts(c.Param("id"))})
}
