package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"regional-storefront-go/internal/content"
	"regional-storefront-go/internal/logger"
	"regional-storefront-go/internal/middleware"
	"regional-storefront-go/internal/region"
)

// RegionHandler serves the public, region-aware read endpoints
type RegionHandler struct {
	regions *region.Service
	content *content.Service
	log     logger.Logger
}

// NewRegionHandler creates a new region handler
func NewRegionHandler(regions *region.Service, content *content.Service, log logger.Logger) *RegionHandler {
	return &RegionHandler{
		regions: regions,
		content: content,
		log:     log,
	}
}

// GetRegion returns the region context resolved from the request host
func (h *RegionHandler) GetRegion(c *gin.Context) {
	rc := h.regions.ResolveContext(c.Request.Context(), middleware.RegionCode(c))
	c.JSON(http.StatusOK, rc)
}

// ListRegions returns all active regions
func (h *RegionHandler) ListRegions(c *gin.Context) {
	regions, err := h.regions.ListRegions(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list regions", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch regions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"regions": regions,
		"current": middleware.RegionCode(c),
	})
}

// GetCategoryContent returns a category's content for the request's region
func (h *RegionHandler) GetCategoryContent(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || categoryID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	forceMain, err := queryBool(c, "force_main_domain")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid force_main_domain value"})
		return
	}

	ctx := c.Request.Context()
	rc := h.regions.ResolveContext(ctx, middleware.RegionCode(c))

	result, err := h.content.ResolveCategory(ctx, categoryID, rc, forceMain)
	if err != nil {
		if errors.Is(err, region.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		h.log.Error("Failed to resolve category content",
			logger.Int64("category_id", categoryID),
			logger.String("region", rc.RegionCode),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build category content"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// queryBool reads an optional boolean query parameter; absent means false.
func queryBool(c *gin.Context, name string) (bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
