package middleware

import (
	"strings"

	"github.com/flamingo-app/flamingo-server/internal/constants"
	apperrors "github.com/flamingo-app/flamingo-server/internal/errors"
	"github.com/flamingo-app/flamingo-server/internal/service"
	"github.com/flamingo-app/flamingo-server/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set for authenticated requests.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

type AuthMiddleware struct {
	tokens *service.TokenService
	users  service.UserStore
}

func NewAuthMiddleware(tokens *service.TokenService, users service.UserStore) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
	}
}

// RequireAuth validates the bearer token and puts the caller's identity in
// the request context. The user row is re-resolved so tokens for deleted
// accounts stop working immediately.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.GetLogger().Warn("Invalid Authorization header format",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		claims, err := m.tokens.ValidateAccessToken(tokenParts[1])
		if err != nil {
			logger.GetLogger().Warn("Invalid or expired token",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			abortWithError(c, err)
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			abortWithError(c, apperrors.ErrInvalidToken)
			return
		}
		userID := uint(userIDFloat)

		if _, err := m.users.FindByID(c.Request.Context(), userID); err != nil {
			logger.GetLogger().Warn("Token user no longer exists",
				zap.Uint("user_id", userID))
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		c.Set(ContextUserID, userID)
		if email, ok := claims["email"].(string); ok {
			c.Set(ContextEmail, email)
		}

		c.Next()
	}
}

// UserID returns the authenticated user's id from the gin context.
func UserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// abortWithError writes the uniform error envelope and stops the chain.
func abortWithError(c *gin.Context, err error) {
	domainErr := apperrors.GetDomainError(err)
	if domainErr == nil {
		domainErr = apperrors.ErrInternal
	}
	c.AbortWithStatusJSON(domainErr.Status,
		constants.BuildErrorResponse(domainErr.Code, domainErr.Message, nil))
}
