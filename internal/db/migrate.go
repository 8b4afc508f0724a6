package db

import (
	"gorm.io/gorm"

	"github.com/tbamaint/hogrisk-backend/internal/types"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity mirror
		&types.User{},

		// Assessment workflow
		&types.Assessment{},
		&types.Notification{},
	)
}
