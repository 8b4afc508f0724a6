package types

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationAssessmentPending  NotificationType = "assessment_pending"
	NotificationAssessmentApproved NotificationType = "assessment_approved"
	NotificationAssessmentRejected NotificationType = "assessment_rejected"
)

// Notification is owned by its recipient; it is only ever created by the
// fan-out in response to a lifecycle event and only ever mutated by marking
// it read.
type Notification struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	RecipientID  uuid.UUID        `gorm:"type:uuid;not null;index;column:recipient_id" json:"recipient_id"`
	Type         NotificationType `gorm:"not null;column:type" json:"type"`
	Title        string           `gorm:"not null;column:title" json:"title"`
	Message      string           `gorm:"not null;column:message" json:"message"`
	AssessmentID uint             `gorm:"not null;index;column:assessment_id" json:"assessment_id"`
	Read         bool             `gorm:"not null;default:false;column:read" json:"read"`
	CreatedAt    time.Time        `gorm:"not null" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
