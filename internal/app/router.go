package app

import (
	"github.com/gin-gonic/gin"

	"github.com/tbamaint/hogrisk-backend/internal/observability"
	"github.com/tbamaint/hogrisk-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthMiddleware:      middlewareset.Auth,
		AssessmentHandler:   handlerset.Assessment,
		NotificationHandler: handlerset.Notification,
		AnalyticsHandler:    handlerset.Analytics,
		AllowedOrigins:      cfg.AllowedOrigins,
		TracingEnabled:      observability.Enabled(),
	})
}
