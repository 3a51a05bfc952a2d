package bootstrap

import (
	"github.com/gin-gonic/gin"
	httpapi "github.com/green-harvest/harvest-backend/internal/api/http"
	"github.com/green-harvest/harvest-backend/internal/api/http/middleware"
	mphttp "github.com/green-harvest/harvest-backend/internal/marketplace/http"
	"github.com/green-harvest/harvest-backend/internal/marketplace/service"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Storage     httpapi.Pinger
	Marketplace *service.MarketplaceService
	Logger      zerolog.Logger

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.RequestIDMiddleware(dep.Logger))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Storage)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst))

	mphttp.New(dep.Marketplace, dep.Logger).Register(api)

	return r
}
