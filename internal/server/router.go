package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbamaint/hogrisk-backend/internal/handlers"
	"github.com/tbamaint/hogrisk-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware      *middleware.AuthMiddleware
	AssessmentHandler   *handlers.AssessmentHandler
	NotificationHandler *handlers.NotificationHandler
	AnalyticsHandler    *handlers.AnalyticsHandler
	AllowedOrigins      []string
	TracingEnabled      bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("hogrisk-backend"))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Assessments
	api.POST("/assessments", cfg.AssessmentHandler.Create)
	api.GET("/assessments", cfg.AssessmentHandler.List)
	api.GET("/assessments/:id", cfg.AssessmentHandler.Get)
	api.POST("/assessments/:id/approve", cfg.AssessmentHandler.Approve)
	api.POST("/assessments/:id/reject", cfg.AssessmentHandler.Reject)
	api.POST("/assessments/:id/archive", cfg.AssessmentHandler.Archive)
	api.GET("/assessments/:id/document", cfg.AssessmentHandler.ExportDocument)
	api.DELETE("/assessments/:id", cfg.AssessmentHandler.Delete)

	// Retention
	api.GET("/retention/archivable", cfg.AssessmentHandler.Archivable)

	// Notifications
	api.GET("/notifications", cfg.NotificationHandler.List)
	api.PUT("/notifications/:id/read", cfg.NotificationHandler.MarkRead)
	api.POST("/notifications/read-all", cfg.NotificationHandler.MarkAllRead)

	// Analytics
	api.GET("/analytics/dashboard", cfg.AnalyticsHandler.Dashboard)
	api.GET("/analytics/predictive", cfg.AnalyticsHandler.Predictive)
	api.GET("/analytics/export", cfg.AnalyticsHandler.Export)

	return router
}
