package app

import (
	"gorm.io/gorm"

	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/repos"
)

type Repos struct {
	User         repos.UserRepo
	Assessment   repos.AssessmentRepo
	Notification repos.NotificationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Assessment:   repos.NewAssessmentRepo(db, log),
		Notification: repos.NewNotificationRepo(db, log),
	}
}
