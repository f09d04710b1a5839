package region

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"regional-storefront-go/pkg/model"
)

// Repository is the record store behind the region service. Lookups return
// nil, nil when no row exists.
type Repository interface {
	GetRegionByCode(ctx context.Context, code string) (*model.Region, error)
	ListActiveRegions(ctx context.Context) ([]model.Region, error)
	UpsertRegion(ctx context.Context, region *model.Region) error
	DeleteRegion(ctx context.Context, code string) (bool, error)

	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryOverride(ctx context.Context, categoryID int64, code string) (*model.CategoryRegionOverride, error)
	UpsertCategoryOverride(ctx context.Context, override *model.CategoryRegionOverride) error
	DeleteCategoryOverride(ctx context.Context, categoryID int64, code string) (bool, error)
}

// SQLRepository implements Repository on Postgres
type SQLRepository struct {
	db *sqlx.DB
}

// NewSQLRepository creates a new Postgres-backed repository
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const regionColumns = `id, code, name, phone, phone_formatted, email, address,
       address_description, working_hours, working_hours_description,
       map_embed, office_name, is_active, sort_order, created_at, updated_at`

const overrideColumns = `id, category_id, region_code, description, h1, seo_title,
       seo_description, schema_markup, content_top, content_bottom,
       created_at, updated_at`

// GetRegionByCode fetches an active region
func (r *SQLRepository) GetRegionByCode(ctx context.Context, code string) (*model.Region, error) {
	var region model.Region
	err := r.db.GetContext(ctx, &region, `
        SELECT `+regionColumns+`
        FROM regions
        WHERE code = $1 AND is_active = TRUE
    `, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get region %s: %w", code, err)
	}
	return &region, nil
}

// ListActiveRegions returns active regions in display order
func (r *SQLRepository) ListActiveRegions(ctx context.Context) ([]model.Region, error) {
	regions := []model.Region{}
	err := r.db.SelectContext(ctx, &regions, `
        SELECT `+regionColumns+`
        FROM regions
        WHERE is_active = TRUE
        ORDER BY sort_order, name
    `)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	return regions, nil
}

// UpsertRegion inserts or updates the region keyed by code
func (r *SQLRepository) UpsertRegion(ctx context.Context, region *model.Region) error {
	now := time.Now()
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO regions (code, name, phone, phone_formatted, email, address,
                             address_description, working_hours, working_hours_description,
                             map_embed, office_name, is_active, sort_order, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
        ON CONFLICT (code) DO UPDATE SET
            name = EXCLUDED.name,
            phone = EXCLUDED.phone,
            phone_formatted = EXCLUDED.phone_formatted,
            email = EXCLUDED.email,
            address = EXCLUDED.address,
            address_description = EXCLUDED.address_description,
            working_hours = EXCLUDED.working_hours,
            working_hours_description = EXCLUDED.working_hours_description,
            map_embed = EXCLUDED.map_embed,
            office_name = EXCLUDED.office_name,
            is_active = EXCLUDED.is_active,
            sort_order = EXCLUDED.sort_order,
            updated_at = EXCLUDED.updated_at
        RETURNING id, created_at, updated_at
    `,
		region.Code, region.Name, region.Phone, region.PhoneFormatted, region.Email, region.Address,
		region.AddressDescription, region.WorkingHours, region.WorkingHoursDescription,
		region.MapEmbed, region.OfficeName, region.IsActive, region.SortOrder, now,
	).Scan(&region.ID, &region.CreatedAt, &region.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert region %s: %w", region.Code, err)
	}
	return nil
}

// DeleteRegion removes a region; it reports whether a row was deleted
func (r *SQLRepository) DeleteRegion(ctx context.Context, code string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM regions WHERE code = $1", code)
	if err != nil {
		return false, fmt.Errorf("delete region %s: %w", code, err)
	}
	return affected(result)
}

// GetCategory fetches the category's own content fields
func (r *SQLRepository) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	var category model.Category
	err := r.db.GetContext(ctx, &category, `
        SELECT id, slug, name, description, h1, seo_title, seo_description,
               schema_markup, content_top, content_bottom, canonical_url
        FROM categories
        WHERE id = $1
    `, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &category, nil
}

// GetCategoryOverride fetches the override for one (category, region) pair
func (r *SQLRepository) GetCategoryOverride(ctx context.Context, categoryID int64, code string) (*model.CategoryRegionOverride, error) {
	var override model.CategoryRegionOverride
	err := r.db.GetContext(ctx, &override, `
        SELECT `+overrideColumns+`
        FROM category_region_overrides
        WHERE category_id = $1 AND region_code = $2
    `, categoryID, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category %d override for %s: %w", categoryID, code, err)
	}
	return &override, nil
}

// UpsertCategoryOverride inserts or replaces the override for its (category, region) pair
func (r *SQLRepository) UpsertCategoryOverride(ctx context.Context, o *model.CategoryRegionOverride) error {
	now := time.Now()
	err := r.db.QueryRowxContext(ctx, `
        INSERT INTO category_region_overrides (category_id, region_code, description, h1, seo_title,
                                               seo_description, schema_markup, content_top, content_bottom,
                                               created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
        ON CONFLICT (category_id, region_code) DO UPDATE SET
            description = EXCLUDED.description,
            h1 = EXCLUDED.h1,
            seo_title = EXCLUDED.seo_title,
            seo_description = EXCLUDED.seo_description,
            schema_markup = EXCLUDED.schema_markup,
            content_top = EXCLUDED.content_top,
            content_bottom = EXCLUDED.content_bottom,
            updated_at = EXCLUDED.updated_at
        RETURNING id, created_at, updated_at
    `,
		o.CategoryID, o.RegionCode, o.Description, o.H1, o.SeoTitle,
		o.SeoDescription, o.SchemaMarkup, o.ContentTop, o.ContentBottom, now,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert category %d override for %s: %w", o.CategoryID, o.RegionCode, err)
	}
	return nil
}

// DeleteCategoryOverride removes one override; it reports whether a row was deleted
func (r *SQLRepository) DeleteCategoryOverride(ctx context.Context, categoryID int64, code string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM category_region_overrides WHERE category_id = $1 AND region_code = $2",
		categoryID, code)
	if err != nil {
		return false, fmt.Errorf("delete category %d override for %s: %w", categoryID, code, err)
	}
	return affected(result)
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
