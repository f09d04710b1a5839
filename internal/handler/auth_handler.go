package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"regional-storefront-go/internal/auth"
	"regional-storefront-go/internal/logger"
	"regional-storefront-go/pkg/model"
)

// AuthHandler handles administrator authentication
type AuthHandler struct {
	authService *auth.AuthService
	log         logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.AuthService, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// Login handles administrator login
func (h *AuthHandler) Login(c *gin.Context) {
	var creds model.UserCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), creds)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTwoFactorRequired):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":       "2FA code required",
				"require_2fa": true,
			})
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidTwoFactorCode):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			h.log.Error("Login failed", logger.String("username", creds.Username), logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":          user.ID,
			"username":    user.Username,
			"email":       user.Email,
			"home_region": user.HomeRegion,
		},
	})
}

// SetupTwoFactor initiates 2FA setup for the current administrator
func (h *AuthHandler) SetupTwoFactor(c *gin.Context) {
	userID := c.GetInt("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	setupData, err := h.authService.SetupTwoFactor(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("2FA setup failed", logger.Int("user_id", userID), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to setup 2FA"})
		return
	}

	c.JSON(http.StatusOK, setupData)
}

// VerifyTwoFactor verifies and enables 2FA
func (h *AuthHandler) VerifyTwoFactor(c *gin.Context) {
	userID := c.GetInt("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req model.TwoFactorVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	err := h.authService.VerifyAndEnableTwoFactor(c.Request.Context(), userID, req.TOTPCode)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidTwoFactorCode) || errors.Is(err, auth.ErrTwoFactorNotSetUp) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("2FA verification failed", logger.Int("user_id", userID), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enable 2FA"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Two-factor authentication enabled"})
}

// DisableTwoFactor disables 2FA for the current administrator
func (h *AuthHandler) DisableTwoFactor(c *gin.Context) {
	userID := c.GetInt("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.authService.DisableTwoFactor(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disable 2FA"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Two-factor authentication disabled"})
}

// GetUserProfile returns the current administrator's profile
func (h *AuthHandler) GetUserProfile(c *gin.Context) {
	userID := c.GetInt("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":         user.Username,
		"email":            user.Email,
		"twoFactorEnabled": user.TwoFactorEnabled,
		"home_region":      user.HomeRegion,
	})
}
