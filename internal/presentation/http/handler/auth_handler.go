package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer/internal/application/service"
	"github.com/sangkips/invoicer/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer/internal/presentation/http/dto/response"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user login
// @Summary Login
// @Description Verify configured credentials and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Login credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", gin.H{
		"user": gin.H{
			"username":     session.Username,
			"display_name": session.DisplayName,
		},
		"access_token": session.Token,
		"token_type":   "Bearer",
		"expires_at":   session.ExpiresAt,
	})
}

// Logout handles user logout
// @Summary Logout
// @Description Tokens are stateless; the client discards its copy
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	response.NoContent(c)
}

// GetProfile returns the authenticated user
// @Summary Get Profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	username, ok := requireUser(c)
	if !ok {
		return
	}

	profile, err := h.authService.GetProfile(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile retrieved successfully", profile)
}
