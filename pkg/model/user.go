package model

import (
	"database/sql"
	"time"
)

// User represents a CMS administrator
type User struct {
	ID               int            `json:"id" db:"id"`
	Username         string         `json:"username" db:"username"`
	Email            string         `json:"email" db:"email"`
	PasswordHash     string         `json:"-" db:"password_hash"`
	TwoFactorEnabled bool           `json:"two_factor_enabled" db:"two_factor_enabled"`
	TwoFactorSecret  sql.NullString `json:"-" db:"two_factor_secret"`
	HomeRegion       string         `json:"home_region" db:"home_region"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
}

// UserCredentials is used for login requests
type UserCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code"`
}

// TwoFactorSetupResponse contains info for QR code setup
type TwoFactorSetupResponse struct {
	Secret    string `json:"secret"`
	QRCodeURL string `json:"qrcode_url"`
}

// TwoFactorVerifyRequest is used to verify and enable 2FA
type TwoFactorVerifyRequest struct {
	TOTPCode string `json:"totp_code" binding:"required"`
}

// AdminCreateRequest is the payload an administrator sends to add another one
type AdminCreateRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=50"`
	Password   string `json:"password" binding:"required,min=8"`
	Email      string `json:"email" binding:"required,email"`
	HomeRegion string `json:"home_region"`
}

// AdminCreateResponse represents the success response after creating an admin
type AdminCreateResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

// ShortcodePreviewRequest asks for a template expanded against a region
type ShortcodePreviewRequest struct {
	Template   string `json:"template" binding:"required"`
	RegionCode string `json:"region_code"`
}

// CacheInvalidateRequest names cache tags and/or a key pattern to drop
type CacheInvalidateRequest struct {
	Tags    []string `json:"tags"`
	Pattern string   `json:"pattern"`
}
