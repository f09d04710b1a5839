// Package content assembles region-aware page content: it merges category
// overrides over the category's own fields, expands shortcodes and attaches
// the canonical URL.
package content

import (
	"context"
	"fmt"

	"regional-storefront-go/internal/canonical"
	"regional-storefront-go/internal/logger"
	"regional-storefront-go/internal/region"
	"regional-storefront-go/internal/shortcode"
	"regional-storefront-go/pkg/model"
)

// Service builds page content for the resolved region
type Service struct {
	regions *region.Service
	builder *canonical.Builder
	log     logger.Logger
}

// NewService creates a new content service
func NewService(regions *region.Service, builder *canonical.Builder, log logger.Logger) *Service {
	return &Service{
		regions: regions,
		builder: builder,
		log:     log,
	}
}

// ResolveCategory returns the display content of a category for rc.
//
// Override lookup failures degrade to the category's own fields. A missing
// category or a canonical that cannot be built is an error.
func (s *Service) ResolveCategory(ctx context.Context, categoryID int64, rc model.RegionContext, forceMainDomain bool) (*model.CategoryContent, error) {
	category, err := s.regions.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, region.ErrCategoryNotFound
	}

	override, err := s.regions.GetCategoryOverrideWithFallback(ctx, categoryID, rc.RegionCode)
	if err != nil {
		s.log.Warn("Category override unavailable, using category defaults",
			logger.Int64("category_id", categoryID),
			logger.String("region", rc.RegionCode),
			logger.Error(err),
		)
		override = nil
	}

	canonicalURL, err := s.builder.Build(canonical.PageCategory, rc.RegionCode, canonical.Options{
		CategorySlug:    category.Slug,
		CustomOverride:  deref(category.CanonicalURL),
		ForceMainDomain: forceMainDomain,
	})
	if err != nil {
		return nil, fmt.Errorf("canonical for category %d: %w", categoryID, err)
	}

	sc := shortcode.Context{Region: rc.Data}
	merged := merge(category, override)

	return &model.CategoryContent{
		CategoryID:     category.ID,
		Slug:           category.Slug,
		Name:           category.Name,
		RegionCode:     rc.RegionCode,
		OverrideSource: source(override, rc.RegionCode),
		Description:    shortcode.ExpandPtr(merged.Description, sc),
		H1:             shortcode.ExpandPtr(merged.H1, sc),
		SeoTitle:       shortcode.ExpandPtr(merged.SeoTitle, sc),
		SeoDescription: shortcode.ExpandPtr(merged.SeoDescription, sc),
		SchemaMarkup:   shortcode.ExpandPtr(merged.SchemaMarkup, sc),
		ContentTop:     shortcode.ExpandPtr(merged.ContentTop, sc),
		ContentBottom:  shortcode.ExpandPtr(merged.ContentBottom, sc),
		Canonical:      canonicalURL,
	}, nil
}

// merge applies every non-nil override field on top of the category.
func merge(category *model.Category, override *model.CategoryRegionOverride) model.Category {
	merged := *category
	if override == nil {
		return merged
	}
	merged.Description = pick(override.Description, category.Description)
	merged.H1 = pick(override.H1, category.H1)
	merged.SeoTitle = pick(override.SeoTitle, category.SeoTitle)
	merged.SeoDescription = pick(override.SeoDescription, category.SeoDescription)
	merged.SchemaMarkup = pick(override.SchemaMarkup, category.SchemaMarkup)
	merged.ContentTop = pick(override.ContentTop, category.ContentTop)
	merged.ContentBottom = pick(override.ContentBottom, category.ContentBottom)
	return merged
}

func pick(override, inherited *string) *string {
	if override != nil {
		return override
	}
	return inherited
}

func source(override *model.CategoryRegionOverride, requested string) model.OverrideSource {
	switch {
	case override == nil:
		return model.OverrideSourceNone
	case override.RegionCode == requested && requested != model.DefaultRegionCode:
		return model.OverrideSourceRegion
	default:
		return model.OverrideSourceDefault
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
