package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"regional-storefront-go/internal/auth"
	"regional-storefront-go/internal/logger"
	"regional-storefront-go/pkg/model"
)

// CreateAdmin lets a signed-in administrator add another one
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var req model.AdminCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := h.authService.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken), errors.Is(err, auth.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrInvalidRegion):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid home region selected"})
		default:
			h.log.Error("Failed to create administrator", logger.String("username", req.Username), logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create administrator"})
		}
		return
	}

	c.JSON(http.StatusCreated, model.AdminCreateResponse{
		Message: "Administrator created",
		UserID:  userID,
	})
}
