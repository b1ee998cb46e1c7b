package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"puja-booking-api/pkg/logger"
)

// NewRouter registers every route. Probes and metrics sit outside the
// rate limiter.
func NewRouter(h *Handler, log logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), corsMiddleware(), requestLogger(log))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := r.Group("/")
	limited.Use(h.limiter.Middleware())
	{
		limited.GET("/api/info", h.Info)
		limited.GET("/rate-limit/status", h.RateLimitStatus)

		cacheGroup := limited.Group("/cache")
		cacheGroup.GET("/stats", h.CacheStats)
		cacheGroup.GET("/debug", h.CacheDebug)
		cacheGroup.DELETE("/flush", h.CacheFlush)

		v1 := limited.Group("/api/v1")
		v1.GET("/services", h.ListServices)
		v1.GET("/services/:token", h.GetService)
		v1.GET("/filters", h.Filters)
		v1.POST("/bookings", h.CreateBooking)
		v1.POST("/catalog/refresh", h.RefreshCatalog)
	}

	return r
}
