package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"regional-storefront-go/internal/logger"
	"regional-storefront-go/pkg/model"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrTwoFactorRequired    = errors.New("2fa_required")
	ErrInvalidTwoFactorCode = errors.New("invalid 2FA code")
	ErrTwoFactorNotSetUp    = errors.New("two-factor authentication is not set up")
	ErrUserNotFound         = errors.New("user not found")
)

// passwordCost is the bcrypt cost for new password hashes
var passwordCost = 14

// tokenLifetime is how long an admin JWT stays valid
const tokenLifetime = 24 * time.Hour

const userColumns = `id, username, email, password_hash, two_factor_enabled,
       two_factor_secret, home_region, created_at, updated_at`

// AuthService authenticates CMS administrators
type AuthService struct {
	db            *sqlx.DB
	jwtSecret     []byte
	encryptionKey string
	log           logger.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(db *sqlx.DB, jwtSecret, encryptionKey string, log logger.Logger) *AuthService {
	return &AuthService{
		db:            db,
		jwtSecret:     []byte(jwtSecret),
		encryptionKey: encryptionKey,
		log:           log,
	}
}

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	return string(bytes), err
}

// CheckPassword compares password with hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateJWT creates a signed token for an authenticated administrator
func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     user.ID,
		"username":    user.Username,
		"home_region": user.HomeRegion,
		"exp":         time.Now().Add(tokenLifetime).Unix(),
	})
	return token.SignedString(s.jwtSecret)
}

// Login authenticates an administrator, enforcing 2FA when enabled
func (s *AuthService) Login(ctx context.Context, creds model.UserCredentials) (*model.User, string, error) {
	user, err := s.findUser(ctx, "username", creds.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !CheckPassword(creds.Password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		if creds.TOTPCode == "" {
			return user, "", ErrTwoFactorRequired
		}
		secret, err := DecryptTOTPSecret(user.TwoFactorSecret, s.encryptionKey)
		if err != nil {
			return nil, "", fmt.Errorf("decrypt 2FA secret: %w", err)
		}
		if !ValidateTOTP(secret, creds.TOTPCode) {
			return nil, "", ErrInvalidTwoFactorCode
		}
	}

	token, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", err
	}

	s.log.Info("Administrator logged in", logger.String("username", user.Username))
	return user, token, nil
}

// SetupTwoFactor stores a fresh, still disabled TOTP secret for the user
func (s *AuthService) SetupTwoFactor(ctx context.Context, userID int) (*model.TwoFactorSetupResponse, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := GenerateTOTPKey(user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate TOTP key: %w", err)
	}

	encrypted, err := EncryptTOTPSecret(key.Secret(), s.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encrypt TOTP secret: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET two_factor_enabled = false, two_factor_secret = $1, updated_at = $2 WHERE id = $3",
		sql.NullString{String: encrypted, Valid: true}, time.Now(), userID)
	if err != nil {
		return nil, fmt.Errorf("store TOTP secret: %w", err)
	}

	s.log.Info("2FA setup started", logger.Int("user_id", userID))
	return &model.TwoFactorSetupResponse{
		Secret:    key.Secret(),
		QRCodeURL: key.URL(),
	}, nil
}

// VerifyAndEnableTwoFactor enables 2FA once the user proves the secret works
func (s *AuthService) VerifyAndEnableTwoFactor(ctx context.Context, userID int, code string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorSecret.Valid {
		return ErrTwoFactorNotSetUp
	}

	secret, err := DecryptTOTPSecret(user.TwoFactorSecret, s.encryptionKey)
	if err != nil {
		return fmt.Errorf("decrypt 2FA secret: %w", err)
	}
	if !ValidateTOTP(secret, code) {
		return ErrInvalidTwoFactorCode
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET two_factor_enabled = true, updated_at = $1 WHERE id = $2", time.Now(), userID)
	return err
}

// DisableTwoFactor disables 2FA and forgets the secret
func (s *AuthService) DisableTwoFactor(ctx context.Context, userID int) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET two_factor_enabled = false, two_factor_secret = NULL, updated_at = $1 WHERE id = $2",
		time.Now(), userID)
	return err
}

// GetUserByID fetches an administrator by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID int) (*model.User, error) {
	return s.findUser(ctx, "id", userID)
}

func (s *AuthService) findUser(ctx context.Context, column string, value any) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user, "SELECT "+userColumns+" FROM users WHERE "+column+" = $1", value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
