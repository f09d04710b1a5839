package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"regional-storefront-go/internal/cache"
	"regional-storefront-go/internal/logger"
	"regional-storefront-go/internal/middleware"
	"regional-storefront-go/internal/region"
	"regional-storefront-go/internal/shortcode"
	"regional-storefront-go/pkg/model"
)

// AdminHandler serves the content editors' endpoints
type AdminHandler struct {
	regions     *region.Service
	cache       *cache.Cache
	invalidator cache.Invalidator
	log         logger.Logger
}

// NewAdminHandler creates a new admin handler. Tag invalidations go through
// invalidator so other instances drop them too.
func NewAdminHandler(regions *region.Service, c *cache.Cache, invalidator cache.Invalidator, log logger.Logger) *AdminHandler {
	if invalidator == nil {
		invalidator = c
	}
	return &AdminHandler{
		regions:     regions,
		cache:       c,
		invalidator: invalidator,
		log:         log,
	}
}

// UpsertRegion creates or edits a region
func (h *AdminHandler) UpsertRegion(c *gin.Context) {
	var req model.RegionUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	saved, err := h.regions.UpsertRegion(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		h.respondError(c, err, "Failed to save region")
		return
	}

	c.JSON(http.StatusOK, saved)
}

// DeleteRegion removes a region
func (h *AdminHandler) DeleteRegion(c *gin.Context) {
	if err := h.regions.DeleteRegion(c.Request.Context(), c.Param("code")); err != nil {
		h.respondError(c, err, "Failed to delete region")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Region deleted"})
}

// UpsertCategoryOverride creates or replaces a category's regional override
func (h *AdminHandler) UpsertCategoryOverride(c *gin.Context) {
	categoryID, ok := categoryParam(c)
	if !ok {
		return
	}

	var req model.CategoryOverrideUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	saved, err := h.regions.UpsertCategoryOverride(c.Request.Context(), categoryID, c.Param("code"), req)
	if err != nil {
		h.respondError(c, err, "Failed to save category override")
		return
	}

	c.JSON(http.StatusOK, saved)
}

// DeleteCategoryOverride removes a category's regional override
func (h *AdminHandler) DeleteCategoryOverride(c *gin.Context) {
	categoryID, ok := categoryParam(c)
	if !ok {
		return
	}

	if err := h.regions.DeleteCategoryOverride(c.Request.Context(), categoryID, c.Param("code")); err != nil {
		h.respondError(c, err, "Failed to delete category override")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category override deleted"})
}

// PreviewShortcodes expands a template against a region so editors can check
// it before saving. Without region_code the request's own region is used.
func (h *AdminHandler) PreviewShortcodes(c *gin.Context) {
	var req model.ShortcodePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	code := req.RegionCode
	if code == "" {
		code = middleware.RegionCode(c)
	}
	rc := h.regions.ResolveContext(c.Request.Context(), code)

	c.JSON(http.StatusOK, gin.H{
		"region_code":    rc.RegionCode,
		"region_found":   rc.Data != nil,
		"result":         shortcode.Expand(req.Template, shortcode.Context{Region: rc.Data}),
		"unknown_tokens": shortcode.Unknown(req.Template),
		"known_tokens":   shortcode.Tokens(),
	})
}

// InvalidateCache drops cached entries by tag and/or key pattern. Pattern
// clears only affect this instance.
func (h *AdminHandler) InvalidateCache(c *gin.Context) {
	var req model.CacheInvalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.Tags) == 0 && req.Pattern == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide tags or pattern"})
		return
	}

	cleared := 0
	if req.Pattern != "" {
		n, err := h.cache.ClearPattern(req.Pattern)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pattern", "details": err.Error()})
			return
		}
		cleared = n
	}
	if len(req.Tags) > 0 {
		h.invalidator.Invalidate(c.Request.Context(), req.Tags...)
	}

	h.log.Info("Cache invalidated by admin",
		logger.Strings("tags", req.Tags),
		logger.String("pattern", req.Pattern),
		logger.Int("cleared", cleared),
		logger.Int("user_id", c.GetInt("user_id")),
	)

	c.JSON(http.StatusOK, gin.H{
		"tags":            req.Tags,
		"pattern_cleared": cleared,
	})
}

func (h *AdminHandler) respondError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, region.ErrInvalidRegionCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, region.ErrDefaultRegionProtected):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, region.ErrRegionNotFound),
		errors.Is(err, region.ErrCategoryNotFound),
		errors.Is(err, region.ErrOverrideNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error(message, logger.String("path", c.Request.URL.Path), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}

func categoryParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return 0, false
	}
	return id, true
}
