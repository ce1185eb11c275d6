package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/flamingo-app/flamingo-server/config"
	"github.com/flamingo-app/flamingo-server/internal/dto"
	"github.com/flamingo-app/flamingo-server/internal/handler"
	"github.com/flamingo-app/flamingo-server/internal/middleware"
	"github.com/flamingo-app/flamingo-server/internal/repository"
	"github.com/flamingo-app/flamingo-server/internal/router"
	"github.com/flamingo-app/flamingo-server/internal/service"
	"github.com/flamingo-app/flamingo-server/pkg/database"
	"github.com/flamingo-app/flamingo-server/pkg/events"
	"github.com/flamingo-app/flamingo-server/pkg/logger"
	"github.com/flamingo-app/flamingo-server/pkg/mailer"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize Zap logger
	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
		zap.String("version", "1.0.0"),
	)

	if err := dto.RegisterCustomValidators(); err != nil {
		logger.GetLogger().Fatal("Failed to register validators", zap.Error(err))
	}

	db, err := database.NewPostgresDB(database.Config{
		Host:            config.Database.Host,
		Port:            config.Database.Port,
		User:            config.Database.User,
		Password:        config.Database.Password,
		Database:        config.Database.Name,
		SSLMode:         config.Database.SSLMode,
		MaxIdleConns:    config.Database.MaxIdleConns,
		MaxOpenConns:    config.Database.MaxOpenConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		ConnMaxIdleTime: config.Database.ConnMaxIdleTime,
	})
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	// Run auto migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	collaboratorRepo := repository.NewCollaboratorRepository(db)

	// Event publisher. The API stays up without Redis; events are dropped.
	var publisher events.Publisher
	var redisClient *redis.Client
	redisPublisher, err := events.NewRedisPublisher(config)
	if err != nil {
		logger.GetLogger().Warn("Event publisher disabled", zap.Error(err))
		publisher = events.NopPublisher{}
	} else {
		defer redisPublisher.Close()
		publisher = redisPublisher
		redisClient = redisPublisher.Client()

		provisionCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := redisPublisher.ProvisionTopics(provisionCtx, "flamingo-workers",
			events.TopicUserRegistered, events.TopicUserVerified); err != nil {
			logger.GetLogger().Warn("Failed to provision event topics", zap.Error(err))
		}
		cancel()
	}

	// Mailer
	var mail mailer.Mailer
	if config.App.Environment == "production" {
		mail = mailer.NewSMTPMailer(config)
	} else {
		mail = mailer.NewLogMailer(config.App.ClientURL)
	}

	// Services
	tokenService := service.NewTokenService(service.TokenConfig{
		Secret:           config.JWT.Secret,
		AccessExpiresIn:  config.JWT.AccessExpiresIn,
		RefreshExpiresIn: config.JWT.RefreshExpiresIn,
		MaxSessions:      config.Auth.MaxSessions,
	}, userRepo, sessionRepo)
	authService := service.NewAuthService(service.AuthConfig{
		MaxLoginAttempts: config.Auth.MaxLoginAttempts,
		LockoutDuration:  config.Auth.LockoutDuration,
		VerificationTTL:  config.Auth.VerificationTTL,
	}, userRepo, tokenService, mail, publisher)
	projectService := service.NewProjectService(projectRepo, collaboratorRepo, userRepo)
	evaluator := service.NewPermissionEvaluator(collaboratorRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService, userRepo)

	r := router.NewRouter(
		authHandler,
		projectHandler,
		healthHandler,

		authMiddleware,
		evaluator,
		config,
	).SetupRoutes()

	// Periodic sweep of expired sessions so the scan-and-compare lookup set
	// stays small.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				deleted, err := sessionRepo.DeleteExpired(sweepCtx)
				if err != nil {
					logger.GetLogger().Error("Session sweep failed", zap.Error(err))
					continue
				}
				if deleted > 0 {
					logger.GetLogger().Info("Expired sessions removed",
						zap.Int64("count", deleted))
				}
			}
		}
	}()

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
			zap.String("host", "0.0.0.0"),
		)
		if err := r.Run(":" + config.App.Port); err != nil {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.GetLogger().Info("Shutting down server...")
}
