package model

import "time"

// DefaultRegionCode is the fallback region served on the bare domain.
// Exactly one active region carries it and it can never be deleted.
const DefaultRegionCode = "default"

// Region represents a regional storefront tenant and its contact data
type Region struct {
	ID                      int64     `db:"id" json:"id"`
	Code                    string    `db:"code" json:"code"`
	Name                    string    `db:"name" json:"name"`
	Phone                   string    `db:"phone" json:"phone"`
	PhoneFormatted          string    `db:"phone_formatted" json:"phone_formatted"`
	Email                   string    `db:"email" json:"email"`
	Address                 string    `db:"address" json:"address"`
	AddressDescription      *string   `db:"address_description" json:"address_description,omitempty"`
	WorkingHours            string    `db:"working_hours" json:"working_hours"`
	WorkingHoursDescription *string   `db:"working_hours_description" json:"working_hours_description,omitempty"`
	MapEmbed                *string   `db:"map_embed" json:"map_embed,omitempty"`
	OfficeName              *string   `db:"office_name" json:"office_name,omitempty"`
	IsActive                bool      `db:"is_active" json:"is_active"`
	SortOrder               int       `db:"sort_order" json:"sort_order"`
	CreatedAt               time.Time `db:"created_at" json:"-"`
	UpdatedAt               time.Time `db:"updated_at" json:"-"`
}

// IsDefault reports whether r is the fallback region
func (r *Region) IsDefault() bool {
	return r != nil && r.Code == DefaultRegionCode
}

// RegionContext is the per-request resolved region. Data is nil when no
// region record could be loaded.
type RegionContext struct {
	RegionCode string  `json:"region_code"`
	Data       *Region `json:"data"`
}

// RegionUpsertRequest is the admin payload for creating or editing a region
type RegionUpsertRequest struct {
	Name                    string  `json:"name" binding:"required,max=100"`
	Phone                   string  `json:"phone" binding:"max=50"`
	PhoneFormatted          string  `json:"phone_formatted" binding:"max=50"`
	Email                   string  `json:"email" binding:"omitempty,email"`
	Address                 string  `json:"address"`
	AddressDescription      *string `json:"address_description"`
	WorkingHours            string  `json:"working_hours"`
	WorkingHoursDescription *string `json:"working_hours_description"`
	MapEmbed                *string `json:"map_embed"`
	OfficeName              *string `json:"office_name"`
	IsActive                *bool   `json:"is_active"`
	SortOrder               int     `json:"sort_order"`
}

// ToRegion builds the region record identified by code
func (req RegionUpsertRequest) ToRegion(code string) Region {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return Region{
		Code:                    code,
		Name:                    req.Name,
		Phone:                   req.Phone,
		PhoneFormatted:          req.PhoneFormatted,
		Email:                   req.Email,
		Address:                 req.Address,
		AddressDescription:      req.AddressDescription,
		WorkingHours:            req.WorkingHours,
		WorkingHoursDescription: req.WorkingHoursDescription,
		MapEmbed:                req.MapEmbed,
		OfficeName:              req.OfficeName,
		IsActive:                active,
		SortOrder:               req.SortOrder,
	}
}
