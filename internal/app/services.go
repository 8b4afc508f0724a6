package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/risk"
	"github.com/tbamaint/hogrisk-backend/internal/services"
)

type Services struct {
	Notification services.NotificationService
	Assessment   services.AssessmentService
	Analytics    services.AnalyticsService
	Retention    services.RetentionService
	Document     services.DocumentService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	catalog, err := risk.LoadCatalog(cfg.ChecklistCatalogPath)
	if err != nil {
		return Services{}, fmt.Errorf("load checklist catalog: %w", err)
	}

	notification := services.NewNotificationService(db, log, reposet.Notification, reposet.User, cfg.PendingRecipientRoles)
	assessment := services.NewAssessmentService(db, log, reposet.Assessment, reposet.User, notification)
	analytics := services.NewAnalyticsService(db, log, reposet.Assessment, reposet.User, catalog)
	retention := services.NewRetentionService(db, log, reposet.Assessment)
	// Rendering backends are optional deployment concerns; none are bundled.
	document := services.NewDocumentService(log, reposet.Assessment, nil, nil)

	return Services{
		Notification: notification,
		Assessment:   assessment,
		Analytics:    analytics,
		Retention:    retention,
		Document:     document,
	}, nil
}
