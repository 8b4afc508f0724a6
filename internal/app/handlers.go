package app

import (
	"github.com/tbamaint/hogrisk-backend/internal/handlers"
	"github.com/tbamaint/hogrisk-backend/internal/logger"
)

type Handlers struct {
	Assessment   *handlers.AssessmentHandler
	Notification *handlers.NotificationHandler
	Analytics    *handlers.AnalyticsHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Assessment:   handlers.NewAssessmentHandler(log, serviceset.Assessment, serviceset.Retention, serviceset.Document),
		Notification: handlers.NewNotificationHandler(log, serviceset.Notification),
		Analytics:    handlers.NewAnalyticsHandler(log, serviceset.Analytics),
	}
}
