package middleware

import (
	"github.com/gin-gonic/gin"

	"regional-storefront-go/internal/region"
	"regional-storefront-go/pkg/model"
)

// RegionHeader carries the resolved region code on the request for
// downstream handlers and on the response for observability.
const RegionHeader = "X-Region-Code"

// regionKey is the gin context key holding the region code.
const regionKey = "region_code"

// RegionMiddleware classifies the request host and publishes the region code.
// A client-supplied RegionHeader is always overwritten.
func RegionMiddleware(registry *region.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := registry.Resolve(c.Request.Host)

		c.Request.Header.Set(RegionHeader, code)
		c.Request = c.Request.WithContext(region.WithCode(c.Request.Context(), code))
		c.Set(regionKey, code)
		c.Header(RegionHeader, code)

		c.Next()
	}
}

// RegionCode returns the code published by RegionMiddleware, or the default
// region when the middleware did not run.
func RegionCode(c *gin.Context) string {
	if code := c.GetString(regionKey); code != "" {
		return code
	}
	return model.DefaultRegionCode
}
