package http

import "github.com/gin-gonic/gin"

// Register registers the marketplace routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg = rg.Group("", WithSession())

	session := rg.Group("/session")
	session.POST("/login", h.Login)
	session.GET("", h.CurrentUser)
	session.DELETE("", h.Logout)
	session.POST("/register/buyer", h.RegisterBuyer)
	session.POST("/register/seller", h.RegisterSeller)

	rg.GET("/buyers", h.ListBuyers)
	rg.GET("/buyers/:id", h.GetBuyer)
	rg.GET("/sellers/:id", h.GetSeller)
	rg.GET("/sellers/:id/products", h.ListSellerProducts)

	rg.POST("/requests", h.CreateRequest)
	rg.GET("/requests/stream", h.StreamRequestEvents)
	rg.POST("/requests/:id/accept", h.AcceptRequest)
	rg.POST("/requests/:id/reject", h.RejectRequest)

	rg.GET("/dashboard", h.GetDashboard)
}
