package model

import "time"

// Category is the subset of a catalog category the content pipeline reads
type Category struct {
	ID             int64   `db:"id" json:"id"`
	Slug           string  `db:"slug" json:"slug"`
	Name           string  `db:"name" json:"name"`
	Description    *string `db:"description" json:"description,omitempty"`
	H1             *string `db:"h1" json:"h1,omitempty"`
	SeoTitle       *string `db:"seo_title" json:"seo_title,omitempty"`
	SeoDescription *string `db:"seo_description" json:"seo_description,omitempty"`
	SchemaMarkup   *string `db:"schema_markup" json:"schema_markup,omitempty"`
	ContentTop     *string `db:"content_top" json:"content_top,omitempty"`
	ContentBottom  *string `db:"content_bottom" json:"content_bottom,omitempty"`
	CanonicalURL   *string `db:"canonical_url" json:"canonical_url,omitempty"`
}

// CategoryRegionOverride carries per-region replacements for category
// fields. A nil field inherits the category's own value; an empty string
// blanks it.
type CategoryRegionOverride struct {
	ID             int64     `db:"id" json:"id"`
	CategoryID     int64     `db:"category_id" json:"category_id"`
	RegionCode     string    `db:"region_code" json:"region_code"`
	Description    *string   `db:"description" json:"description,omitempty"`
	H1             *string   `db:"h1" json:"h1,omitempty"`
	SeoTitle       *string   `db:"seo_title" json:"seo_title,omitempty"`
	SeoDescription *string   `db:"seo_description" json:"seo_description,omitempty"`
	SchemaMarkup   *string   `db:"schema_markup" json:"schema_markup,omitempty"`
	ContentTop     *string   `db:"content_top" json:"content_top,omitempty"`
	ContentBottom  *string   `db:"content_bottom" json:"content_bottom,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"-"`
	UpdatedAt      time.Time `db:"updated_at" json:"-"`
}

// CategoryOverrideUpsertRequest is the admin payload for a category override
type CategoryOverrideUpsertRequest struct {
	Description    *string `json:"description"`
	H1             *string `json:"h1"`
	SeoTitle       *string `json:"seo_title"`
	SeoDescription *string `json:"seo_description"`
	SchemaMarkup   *string `json:"schema_markup"`
	ContentTop     *string `json:"content_top"`
	ContentBottom  *string `json:"content_bottom"`
}

// ToOverride builds the override record for the (categoryID, regionCode) pair
func (req CategoryOverrideUpsertRequest) ToOverride(categoryID int64, regionCode string) CategoryRegionOverride {
	return CategoryRegionOverride{
		CategoryID:     categoryID,
		RegionCode:     regionCode,
		Description:    req.Description,
		H1:             req.H1,
		SeoTitle:       req.SeoTitle,
		SeoDescription: req.SeoDescription,
		SchemaMarkup:   req.SchemaMarkup,
		ContentTop:     req.ContentTop,
		ContentBottom:  req.ContentBottom,
	}
}

// OverrideSource tells which row supplied a category's regional fields
type OverrideSource string

const (
	OverrideSourceRegion  OverrideSource = "region"
	OverrideSourceDefault OverrideSource = "default"
	OverrideSourceNone    OverrideSource = "none"
)

// CategoryContent is a category's display content after region fallback,
// field inheritance and shortcode expansion
type CategoryContent struct {
	CategoryID     int64          `json:"category_id"`
	Slug           string         `json:"slug"`
	Name           string         `json:"name"`
	RegionCode     string         `json:"region_code"`
	OverrideSource OverrideSource `json:"override_source"`
	Description    string         `json:"description"`
	H1             string         `json:"h1"`
	SeoTitle       string         `json:"seo_title"`
	SeoDescription string         `json:"seo_description"`
	SchemaMarkup   string         `json:"schema_markup"`
	ContentTop     string         `json:"content_top"`
	ContentBottom  string         `json:"content_bottom"`
	Canonical      string         `json:"canonical"`
}
