package types

import (
	"time"

	"github.com/google/uuid"
)

// User is a local mirror of the principals handed to us by the external
// identity provider. Rows are upserted on first sight of a bearer token and
// exist so that notification fan-out and display-name joins have something
// to read; credential material never lands here.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Subject    string    `gorm:"uniqueIndex;not null;column:subject" json:"subject"`
	Name       string    `gorm:"not null;column:name" json:"name"`
	Role       string    `gorm:"not null;column:role" json:"role"`
	Active     bool      `gorm:"not null;default:true;column:active" json:"active"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	LastSeenAt time.Time `gorm:"not null" json:"last_seen_at"`
}

func (User) TableName() string {
	return "users"
}
