package middleware

import (
	apperrors "github.com/flamingo-app/flamingo-server/internal/errors"
	"github.com/flamingo-app/flamingo-server/internal/service"
	"github.com/gin-gonic/gin"
)

// RequireProjectRole gates a project route on the caller holding at least
// the given role. The project id is read from the :id path parameter.
func RequireProjectRole(evaluator *service.PermissionEvaluator, requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("id")
		if projectID == "" {
			abortWithError(c, apperrors.ErrProjectIDRequired)
			return
		}

		userID, ok := UserID(c)
		if !ok {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		if err := evaluator.Check(c.Request.Context(), projectID, userID, requiredRole); err != nil {
			abortWithError(c, err)
			return
		}

		c.Next()
	}
}
