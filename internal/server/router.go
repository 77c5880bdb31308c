package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/brightpath-edu/brightpath-backend/internal/handlers"
	"github.com/brightpath-edu/brightpath-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler       *handlers.AuthHandler
	AuthMiddleware    *middleware.AuthMiddleware
	UserHandler       *handlers.UserHandler
	LessonHandler     *handlers.LessonHandler
	AssignmentHandler *handlers.AssignmentHandler
	BookHandler       *handlers.BookHandler
	AnalyticsHandler  *handlers.AnalyticsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.POST("/refresh", cfg.AuthHandler.Refresh)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.PATCH("/user", cfg.UserHandler.UpdateMe)
	// Lessons
	protected.POST("/lessons", cfg.LessonHandler.Create)
	protected.GET("/lessons", cfg.LessonHandler.List)
	protected.GET("/lessons/:id", cfg.LessonHandler.Get)
	protected.PATCH("/lessons/:id", cfg.LessonHandler.Update)
	protected.DELETE("/lessons/:id", cfg.LessonHandler.Delete)
	protected.POST("/lessons/:id/complete", cfg.LessonHandler.Complete)
	// Assignments
	protected.POST("/assignments", cfg.AssignmentHandler.Create)
	protected.GET("/assignments", cfg.AssignmentHandler.List)
	protected.GET("/assignments/:id", cfg.AssignmentHandler.Get)
	protected.POST("/assignments/:id/submit", cfg.AssignmentHandler.Submit)
	protected.POST("/assignments/:id/grade", cfg.AssignmentHandler.Grade)
	// Books
	protected.POST("/books", cfg.BookHandler.Create)
	protected.GET("/books", cfg.BookHandler.List)
	protected.GET("/books/:id", cfg.BookHandler.Get)
	protected.DELETE("/books/:id", cfg.BookHandler.Delete)
	// Analytics
	protected.GET("/analytics", cfg.AnalyticsHandler.GetUserAnalytics)
	protected.GET("/analytics/dashboard", cfg.AnalyticsHandler.GetDashboardAnalytics)
	protected.POST("/analytics/refresh", cfg.AnalyticsHandler.Refresh)

	return router
}
