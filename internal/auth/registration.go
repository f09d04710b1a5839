package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"regional-storefront-go/internal/logger"
	"regional-storefront-go/pkg/model"
)

var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
	ErrInvalidRegion = errors.New("invalid region")
)

// CreateAdmin adds an administrator. The home region decides which regional
// data the admin UI previews by default and must be an active region.
func (s *AuthService) CreateAdmin(ctx context.Context, req model.AdminCreateRequest) (int64, error) {
	homeRegion := strings.ToLower(strings.TrimSpace(req.HomeRegion))
	if homeRegion == "" {
		homeRegion = model.DefaultRegionCode
	}

	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM users WHERE username = $1", req.Username); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, ErrUsernameTaken
	}

	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM users WHERE email = $1", req.Email); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, ErrEmailTaken
	}

	var isValid bool
	err := s.db.GetContext(ctx, &isValid,
		"SELECT EXISTS(SELECT 1 FROM regions WHERE code = $1 AND is_active = TRUE)", homeRegion)
	if err != nil {
		return 0, err
	}
	if !isValid {
		return 0, ErrInvalidRegion
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return 0, err
	}

	var userID int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, email, home_region, two_factor_enabled, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $6)
         RETURNING id`,
		req.Username, hashedPassword, req.Email, homeRegion, false, time.Now()).Scan(&userID)
	if err != nil {
		return 0, err
	}

	s.log.Info("Administrator created",
		logger.String("username", req.Username),
		logger.String("home_region", homeRegion),
	)
	return userID, nil
}
