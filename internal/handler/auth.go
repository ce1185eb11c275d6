package handler

import (
	"net/http"

	"github.com/flamingo-app/flamingo-server/internal/constants"
	"github.com/flamingo-app/flamingo-server/internal/dto"
	apperrors "github.com/flamingo-app/flamingo-server/internal/errors"
	"github.com/flamingo-app/flamingo-server/internal/middleware"
	"github.com/flamingo-app/flamingo-server/internal/service"
	"github.com/flamingo-app/flamingo-server/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles new account signup
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Warn("Invalid register request",
			zap.Error(err))
		respondBindingError(c, err)
		return
	}

	response, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		logger.GetLogger().Warn("Registration failed",
			zap.String("email", req.Email),
			zap.Error(err))
		respondError(c, err)
		return
	}

	logger.GetLogger().Info("User registered",
		zap.Uint("user_id", response.UserID),
		zap.String("email", response.Email))

	c.JSON(http.StatusCreated, constants.BuildDataResponse(response))
}

// CheckEmail reports whether an email address is still available
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	var query struct {
		Email string `form:"email" binding:"required,email"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, apperrors.ErrInvalidEmailFormat)
		return
	}

	available, err := h.authService.CheckEmailAvailability(c.Request.Context(), query.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(dto.CheckEmailResponse{Available: available}))
}

// VerifyEmail consumes a verification token and activates the account
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.authService.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		logger.GetLogger().Warn("Email verification failed",
			zap.Error(err))
		respondError(c, err)
		return
	}

	logger.GetLogger().Info("Email verified",
		zap.Uint("user_id", user.ID))

	c.JSON(http.StatusOK, constants.BuildDataResponse(dto.VerifyEmailResponse{
		Message: "Email verified successfully",
		User:    *user,
	}))
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Warn("Invalid login request",
			zap.Error(err))
		respondBindingError(c, err)
		return
	}

	response, err := h.authService.Login(
		c.Request.Context(),
		req.Email,
		req.Password,
		c.Request.UserAgent(),
		c.ClientIP(),
	)
	if err != nil {
		logger.GetLogger().Warn("Login failed",
			zap.String("email", req.Email),
			zap.String("client_ip", c.ClientIP()),
			zap.Error(err))
		respondError(c, err)
		return
	}

	logger.GetLogger().Info("User logged in",
		zap.Uint("user_id", response.User.ID),
		zap.String("client_ip", c.ClientIP()))

	c.JSON(http.StatusOK, constants.BuildDataResponse(response))
}

// Refresh exchanges a refresh token for a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	response, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		logger.GetLogger().Warn("Token refresh failed",
			zap.String("client_ip", c.ClientIP()),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(response))
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(user))
}
