package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"puja-booking-api/internal/config"
	"puja-booking-api/internal/models"
)

// parseQuerySpec reads the listing query string. Non-numeric or
// non-positive page and limit fall back to defaults; limit is capped.
// Vocabulary values pass through untouched and are checked by the service.
func parseQuerySpec(c *gin.Context, cfg config.ServerConfig) models.QuerySpec {
	page := models.DefaultPage
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}

	limit := cfg.DefaultPageSize
	if limit <= 0 {
		limit = models.DefaultPageSize
	}
	if l := c.Query("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			limit = limitNum
		}
	}
	maxSize := cfg.MaxPageSize
	if maxSize <= 0 {
		maxSize = models.MaxPageSize
	}
	if limit > maxSize {
		limit = maxSize
	}

	spec := models.QuerySpec{
		Search:        strings.TrimSpace(c.Query("q")),
		ServiceType:   models.ServiceType(strings.ToLower(c.Query("type"))),
		PriceRange:    c.Query("price"),
		DurationRange: c.Query("duration"),
		Page:          page,
		PageSize:      limit,
	}
	if sortField := c.Query("sort"); sortField != "" {
		spec.SortBy = models.SortKey(strings.ToLower(sortField))
		spec.SortOrder = models.OrderAsc
		if order := c.Query("order"); order != "" {
			spec.SortOrder = models.SortOrder(strings.ToLower(order))
		}
	}
	return spec
}
