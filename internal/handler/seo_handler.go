package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"regional-storefront-go/internal/canonical"
	"regional-storefront-go/internal/middleware"
)

// SEOHandler exposes canonical URL generation to the frontend
type SEOHandler struct {
	builder *canonical.Builder
}

// NewSEOHandler creates a new SEO handler
func NewSEOHandler(builder *canonical.Builder) *SEOHandler {
	return &SEOHandler{builder: builder}
}

// Canonical builds the canonical URL of a page for the request's region.
// The page type defaults to home.
func (h *SEOHandler) Canonical(c *gin.Context) {
	pageType := canonical.PageType(c.DefaultQuery("type", string(canonical.PageHome)))

	relative, err := queryBool(c, "relative")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid relative value"})
		return
	}
	forceMain, err := queryBool(c, "force_main_domain")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid force_main_domain value"})
		return
	}

	regionCode := middleware.RegionCode(c)
	url, err := h.builder.Build(pageType, regionCode, canonical.Options{
		CategorySlug:    c.Query("category"),
		ProductSlug:     c.Query("product"),
		PageSlug:        c.Query("page"),
		CustomOverride:  c.Query("override"),
		Relative:        relative,
		ForceMainDomain: forceMain,
	})
	if err != nil {
		if errors.Is(err, canonical.ErrMissingSlug) || errors.Is(err, canonical.ErrUnknownPageType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build canonical URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"canonical":   url,
		"region_code": regionCode,
	})
}
