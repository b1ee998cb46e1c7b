package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"puja-booking-api/internal/config"
	"puja-booking-api/internal/models"
	"puja-booking-api/internal/services"
	"puja-booking-api/pkg/apperrors"
	"puja-booking-api/pkg/logger"
)

// Handler serves the catalog, booking and admin endpoints.
type Handler struct {
	cfg      *config.Config
	catalog  *services.CatalogService
	bookings *services.BookingService
	limiter  *RateLimiter
	log      logger.Logger
}

func NewHandler(cfg *config.Config, catalog *services.CatalogService, bookings *services.BookingService, limiter *RateLimiter, log logger.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		catalog:  catalog,
		bookings: bookings,
		limiter:  limiter,
		log:      log,
	}
}

func writeError(c *gin.Context, err error) {
	stdErr := apperrors.AsStandard(err)
	status := apperrors.HTTPStatus(stdErr.Code)
	c.JSON(status, models.ErrorResponse{
		Error:   string(stdErr.Code),
		Code:    status,
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}

func (h *Handler) Health(c *gin.Context) {
	health := gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
		"catalog": h.catalog.Status(),
	}
	if h.catalog.Cache().IsAvailable() {
		health["cache"] = "redis connected"
	} else {
		health["cache"] = "redis unavailable"
	}
	if !h.catalog.Loaded() {
		health["status"] = "degraded"
	}
	c.JSON(http.StatusOK, health)
}

func (h *Handler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        h.cfg.App.Name,
		"version":     h.cfg.App.Version,
		"description": "Browse, filter and book puja, homam and astrology services",
		"features":    []string{"Catalog snapshot", "Filtering", "Sorting", "Pagination", "Redis caching", "Bookings"},
		"endpoints": map[string]string{
			"GET /api/v1/services":         "List services with filtering, sorting and pagination",
			"GET /api/v1/services/:token":  "Service detail",
			"GET /api/v1/filters":          "Filter vocabulary",
			"POST /api/v1/bookings":        "Submit a booking",
			"POST /api/v1/catalog/refresh": "Reload the catalog snapshot",
			"GET /health":                  "Health check",
			"GET /cache/stats":             "Cache statistics",
			"GET /metrics":                 "Prometheus metrics",
			"GET /api/info":                "API information",
		},
	})
}

func (h *Handler) ListServices(c *gin.Context) {
	spec := parseQuerySpec(c, h.cfg.Server)

	results, err := h.catalog.Search(c.Request.Context(), spec)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *Handler) GetService(c *gin.Context) {
	record, err := h.catalog.GetByToken(c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) Filters(c *gin.Context) {
	c.JSON(http.StatusOK, models.DefaultFilterOptions())
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewBookingValidationError("malformed JSON body: "+err.Error()))
		return
	}

	resp, err := h.bookings.Submit(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) RefreshCatalog(c *gin.Context) {
	result, err := h.catalog.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) RateLimitStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.limiter.Status(c.ClientIP()))
}

func (h *Handler) CacheStats(c *gin.Context) {
	redisCache := h.catalog.Cache()
	if !redisCache.IsAvailable() {
		writeError(c, apperrors.NewCacheUnavailableError())
		return
	}
	c.JSON(http.StatusOK, redisCache.GetStats(c.Request.Context()))
}

func (h *Handler) CacheDebug(c *gin.Context) {
	redisCache := h.catalog.Cache()
	if !redisCache.IsAvailable() {
		writeError(c, apperrors.NewCacheUnavailableError())
		return
	}

	ctx := c.Request.Context()
	keys := redisCache.GetAllKeys(ctx)
	keyDetails := make([]gin.H, 0, len(keys))
	for _, key := range keys {
		ttl := redisCache.GetKeyTTL(ctx, key)
		keyDetails = append(keyDetails, gin.H{
			"key":         key,
			"ttl_seconds": int(ttl.Seconds()),
			"expires_in":  ttl.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_keys":  len(keys),
		"cache_keys":  keyDetails,
		"cache_stats": redisCache.GetStats(ctx),
		"debug_info": gin.H{
			"redis_available": redisCache.IsAvailable(),
			"catalog_version": h.catalog.Status().Version,
			"timestamp":       time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) CacheFlush(c *gin.Context) {
	redisCache := h.catalog.Cache()
	if !redisCache.IsAvailable() {
		writeError(c, apperrors.NewCacheUnavailableError())
		return
	}

	n, err := redisCache.FlushCache(c.Request.Context())
	if err != nil {
		h.log.Error("Cache flush failed", map[string]interface{}{"error": err})
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   string(apperrors.ErrCodeInternal),
			Code:    http.StatusInternalServerError,
			Message: "failed to flush cache",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "cache flushed successfully",
		"keys_removed": n,
		"timestamp":    time.Now().Format(time.RFC3339),
	})
}
