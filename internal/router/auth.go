package router

import "github.com/gin-gonic/gin"

func (r *Router) authRoutes(version *gin.RouterGroup) {
	auth := version.Group("/auth")
	{
		// Public routes (no authentication required)
		auth.POST("/register", r.authHandler.Register)
		auth.GET("/check-email", r.authHandler.CheckEmail)
		auth.POST("/verify-email", r.authHandler.VerifyEmail)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh", r.authHandler.Refresh)

		// Protected routes (JWT authentication required)
		protected := auth.Group("")
		protected.Use(r.authMw.RequireAuth())
		{
			protected.GET("/me", r.authHandler.Me)
		}
	}
}
