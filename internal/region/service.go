// Package region resolves the regional tenant for a request and serves
// region and category-override records through the cache.
package region

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"regional-storefront-go/internal/cache"
	"regional-storefront-go/internal/logger"
	"regional-storefront-go/pkg/model"
)

var (
	ErrRegionNotFound         = errors.New("region not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrOverrideNotFound       = errors.New("category override not found")
	ErrInvalidRegionCode      = errors.New("invalid region code")
	ErrDefaultRegionProtected = errors.New("default region cannot be deleted or deactivated")
)

// DefaultTTL is how long region and override reads stay cached.
const DefaultTTL = 5 * time.Minute

// TagRegions groups every cached region read.
const TagRegions = "regions"

// KeyRegionList caches the active region list.
const KeyRegionList = "regions:list"

// KeyRegion is the cache key of one region record.
func KeyRegion(code string) string { return "region:" + code }

// KeyCategory is the cache key of a category's own fields.
func KeyCategory(categoryID int64) string {
	return "category:" + strconv.FormatInt(categoryID, 10)
}

// KeyCategoryOverride is the cache key of one (category, region) override.
func KeyCategoryOverride(categoryID int64, code string) string {
	return "categoryOverride:" + strconv.FormatInt(categoryID, 10) + ":" + code
}

// TagCategory groups every cached read about one category.
func TagCategory(categoryID int64) string {
	return "category:" + strconv.FormatInt(categoryID, 10)
}

// Service is the cached region store.
type Service struct {
	repo        Repository
	cache       *cache.Cache
	invalidator cache.Invalidator
	registry    *Registry
	ttl         time.Duration
	log         logger.Logger
}

// NewService creates a region service. invalidator receives the tags to drop
// after every write; pass the cache itself for process-local invalidation.
func NewService(repo Repository, c *cache.Cache, invalidator cache.Invalidator, registry *Registry, ttl time.Duration, log logger.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if invalidator == nil {
		invalidator = c
	}
	return &Service{
		repo:        repo,
		cache:       c,
		invalidator: invalidator,
		registry:    registry,
		ttl:         ttl,
		log:         log,
	}
}

// Registry returns the subdomain registry the service validates codes against.
func (s *Service) Registry() *Registry {
	return s.registry
}

// GetRegion returns the active region for code, or nil when there is none.
// Store failures are returned to the caller.
func (s *Service) GetRegion(ctx context.Context, code string) (*model.Region, error) {
	code = normalizeCode(code)
	return cache.WithCache(ctx, s.cache, KeyRegion(code), s.ttl, func(ctx context.Context) (*model.Region, error) {
		return s.repo.GetRegionByCode(ctx, code)
	}, TagRegions)
}

// ListRegions returns the active regions in display order.
func (s *Service) ListRegions(ctx context.Context) ([]model.Region, error) {
	return cache.WithCache(ctx, s.cache, KeyRegionList, s.ttl, s.repo.ListActiveRegions, TagRegions)
}

// GetCategory returns the category's own fields, or nil when it does not exist.
func (s *Service) GetCategory(ctx context.Context, categoryID int64) (*model.Category, error) {
	return cache.WithCache(ctx, s.cache, KeyCategory(categoryID), s.ttl, func(ctx context.Context) (*model.Category, error) {
		return s.repo.GetCategory(ctx, categoryID)
	}, TagCategory(categoryID))
}

// GetCategoryOverride returns the override for exactly (categoryID, code).
func (s *Service) GetCategoryOverride(ctx context.Context, categoryID int64, code string) (*model.CategoryRegionOverride, error) {
	code = normalizeCode(code)
	return cache.WithCache(ctx, s.cache, KeyCategoryOverride(categoryID, code), s.ttl, func(ctx context.Context) (*model.CategoryRegionOverride, error) {
		return s.repo.GetCategoryOverride(ctx, categoryID, code)
	}, TagCategory(categoryID))
}

// GetCategoryOverrideWithFallback returns the override for (categoryID, code),
// else the default region's override, else nil. The returned row's
// RegionCode tells which one matched.
func (s *Service) GetCategoryOverrideWithFallback(ctx context.Context, categoryID int64, code string) (*model.CategoryRegionOverride, error) {
	code = normalizeCode(code)
	override, err := s.GetCategoryOverride(ctx, categoryID, code)
	if err != nil || override != nil || code == model.DefaultRegionCode {
		return override, err
	}
	return s.GetCategoryOverride(ctx, categoryID, model.DefaultRegionCode)
}

// ResolveContext builds the request's region context. A code without a
// region row falls back to the default region's data; store failures leave
// Data nil so the page renders without contact details.
func (s *Service) ResolveContext(ctx context.Context, code string) model.RegionContext {
	code = normalizeCode(code)
	rc := model.RegionContext{RegionCode: code}

	region, err := s.GetRegion(ctx, code)
	if err == nil && region == nil && code != model.DefaultRegionCode {
		region, err = s.GetRegion(ctx, model.DefaultRegionCode)
	}
	if err != nil {
		s.log.Warn("Region data unavailable, rendering without it",
			logger.String("region", code),
			logger.Error(err),
		)
		return rc
	}

	rc.Data = region
	return rc
}

// UpsertRegion creates or edits the region identified by code.
func (s *Service) UpsertRegion(ctx context.Context, code string, req model.RegionUpsertRequest) (*model.Region, error) {
	code = normalizeCode(code)
	if !s.registry.IsValidCode(code) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRegionCode, code)
	}

	region := req.ToRegion(code)
	if region.IsDefault() && !region.IsActive {
		return nil, ErrDefaultRegionProtected
	}

	if err := s.repo.UpsertRegion(ctx, &region); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, TagRegions)

	s.log.Info("Region saved", logger.String("region", code))
	return &region, nil
}

// DeleteRegion removes a region. The default region is protected.
func (s *Service) DeleteRegion(ctx context.Context, code string) error {
	code = normalizeCode(code)
	if code == model.DefaultRegionCode {
		return ErrDefaultRegionProtected
	}

	deleted, err := s.repo.DeleteRegion(ctx, code)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrRegionNotFound
	}
	s.invalidator.Invalidate(ctx, TagRegions)

	s.log.Info("Region deleted", logger.String("region", code))
	return nil
}

// UpsertCategoryOverride creates or replaces the override for (categoryID, code).
func (s *Service) UpsertCategoryOverride(ctx context.Context, categoryID int64, code string, req model.CategoryOverrideUpsertRequest) (*model.CategoryRegionOverride, error) {
	code = normalizeCode(code)
	if !s.registry.IsValidCode(code) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRegionCode, code)
	}

	category, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	override := req.ToOverride(categoryID, code)
	if err := s.repo.UpsertCategoryOverride(ctx, &override); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, TagCategory(categoryID))

	s.log.Info("Category override saved",
		logger.Int64("category_id", categoryID),
		logger.String("region", code),
	)
	return &override, nil
}

// DeleteCategoryOverride removes the override for (categoryID, code).
func (s *Service) DeleteCategoryOverride(ctx context.Context, categoryID int64, code string) error {
	code = normalizeCode(code)

	deleted, err := s.repo.DeleteCategoryOverride(ctx, categoryID, code)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrOverrideNotFound
	}
	s.invalidator.Invalidate(ctx, TagCategory(categoryID))

	s.log.Info("Category override deleted",
		logger.Int64("category_id", categoryID),
		logger.String("region", code),
	)
	return nil
}

func normalizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return model.DefaultRegionCode
	}
	return code
}
