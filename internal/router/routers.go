package router

import (
	"time"

	"github.com/flamingo-app/flamingo-server/config"
	"github.com/flamingo-app/flamingo-server/internal/handler"
	"github.com/flamingo-app/flamingo-server/internal/middleware"
	"github.com/flamingo-app/flamingo-server/internal/service"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authHandler    *handler.AuthHandler
	projectHandler *handler.ProjectHandler
	healthHandler  *handler.HealthHandler

	authMw    *middleware.AuthMiddleware
	evaluator *service.PermissionEvaluator
	config    *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	project *handler.ProjectHandler,
	health *handler.HealthHandler,

	authMw *middleware.AuthMiddleware,
	evaluator *service.PermissionEvaluator,
	config *config.Config,
) *Router {
	return &Router{
		authHandler:    auth,
		projectHandler: project,
		healthHandler:  health,

		authMw:    authMw,
		evaluator: evaluator,
		config:    config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if r.config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORS(r.config.App.ClientURL))

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.HealthCheck)
		api.GET("/health/live", r.healthHandler.BasicHealth)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(r.config.RateLimit.Request, time.Duration(r.config.RateLimit.Duration)*time.Second))

			r.authRoutes(v1)
			r.projectRoutes(v1)
		}
	}

	return router
}
