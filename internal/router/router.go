package router

import (
	"context"
	"log"
	"log/slog"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rasel39/gigmarket/backend/internal/handlers"
	"github.com/rasel39/gigmarket/backend/internal/metrics"
	"github.com/rasel39/gigmarket/backend/internal/middleware"
	"github.com/rasel39/gigmarket/backend/internal/models"
	"github.com/rasel39/gigmarket/backend/internal/repositories"
	"github.com/rasel39/gigmarket/backend/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.Error("request", attrs...)
			} else {
				slog.Info("request", attrs...)
			}
			return nil
		},
	}))
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.SavedGig{},
		&models.Review{},
		&models.Follow{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	mongoDB := mgClient.Database(cfg.MongoDBName)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	gigRepo := repositories.NewMongoGigRepository(mongoDB)
	storyRepo := repositories.NewMongoStoryRepository(mongoDB)
	savedGigRepo := repositories.NewPostgresSavedGigRepository(pgdb)
	reviewRepo := repositories.NewPostgresReviewRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)

	// Story expiry is handled by MongoDB's TTL reaper; the index must exist.
	if err := storyRepo.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Failed to create story indexes: %v", err)
	}
	log.Println("MongoDB story indexes ensured.")

	collector := metrics.NewCollector()

	// Health check and metrics - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(collector.Handler()))
	e.Static(cfg.UploadBaseURL, cfg.UploadDir)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Public routes (optional identity for per-viewer annotations) ---
	public := e.Group("/api")
	public.Use(middleware.OptionalJWTMiddleware(cfg.JWTSecret))

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterPublicUserRoutes(public)

	storyHandler := handlers.NewStoryHandler(storyRepo, userRepo, collector)
	storyHandler.RegisterPublicStoryRoutes(public)

	gigHandler := handlers.NewGigHandler(gigRepo, userRepo, savedGigRepo, collector)
	gigHandler.RegisterPublicGigRoutes(public)

	reviewHandler := handlers.NewReviewHandler(reviewRepo, gigRepo, userRepo)
	reviewHandler.RegisterPublicReviewRoutes(public)
	log.Println("Public routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	userHandler.RegisterUserRoutes(api)
	storyHandler.RegisterStoryRoutes(api)
	gigHandler.RegisterGigRoutes(api)
	reviewHandler.RegisterReviewRoutes(api)

	savedGigHandler := handlers.NewSavedGigHandler(savedGigRepo, gigRepo)
	savedGigHandler.RegisterSavedGigRoutes(api)

	followHandler := handlers.NewFollowHandler(followRepo, userRepo)
	followHandler.RegisterFollowRoutes(api)

	uploadHandler := handlers.NewUploadHandler(cfg.UploadDir, cfg.UploadBaseURL)
	uploadHandler.RegisterUploadRoutes(api)

	log.Println("All routes configured.")
}
