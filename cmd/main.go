package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/brightpath-edu/brightpath-backend/internal/clients/redis"
	"github.com/brightpath-edu/brightpath-backend/internal/db"
	"github.com/brightpath-edu/brightpath-backend/internal/handlers"
	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	"github.com/brightpath-edu/brightpath-backend/internal/middleware"
	"github.com/brightpath-edu/brightpath-backend/internal/repos"
	"github.com/brightpath-edu/brightpath-backend/internal/server"
	"github.com/brightpath-edu/brightpath-backend/internal/services"
	"github.com/brightpath-edu/brightpath-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	pg := postgresService.DB()

	// Redis (optional: analytics runs uncached without it)
	analyticsCache, err := redis.NewCache(log)
	if err != nil {
		log.Warn("Redis init failed, analytics cache disabled", "error", err)
		analyticsCache = nil
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(pg, log)
	userTokenRepo := repos.NewUserTokenRepo(pg, log)
	lessonRepo := repos.NewLessonRepo(pg, log)
	assignmentRepo := repos.NewAssignmentRepo(pg, log)
	bookRepo := repos.NewBookRepo(pg, log)
	activityEventRepo := repos.NewActivityEventRepo(pg, log)
	contentStatsRepo := repos.NewContentStatsRepo(pg, log)
	engagementRepo := repos.NewEngagementRepo(pg, log)

	// Services
	log.Info("Setting up Services from main...")
	eventService := services.NewEventService(pg, log, activityEventRepo)
	aggregateService := services.NewAggregateService(pg, log, contentStatsRepo, engagementRepo)
	telemetryService := services.NewTelemetryService(log, eventService, aggregateService)
	authService := services.NewAuthService(pg, log, userRepo, userTokenRepo, telemetryService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(pg, log, userRepo)
	lessonService := services.NewLessonService(pg, log, lessonRepo, telemetryService)
	assignmentService := services.NewAssignmentService(pg, log, assignmentRepo, telemetryService)
	bookService := services.NewBookService(pg, log, bookRepo, telemetryService)
	analyticsService := services.NewAnalyticsService(log, activityEventRepo, engagementRepo, contentStatsRepo, assignmentRepo, analyticsCache)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	lessonHandler := handlers.NewLessonHandler(lessonService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	bookHandler := handlers.NewBookHandler(bookService)
	analyticsHandler := handlers.NewAnalyticsHandler(log, analyticsService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		UserHandler:       userHandler,
		LessonHandler:     lessonHandler,
		AssignmentHandler: assignmentHandler,
		BookHandler:       bookHandler,
		AnalyticsHandler:  analyticsHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
