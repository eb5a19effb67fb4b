package models

import "time"

// Notification types emitted by the core.
const (
	NotificationTypeGraded      = "submission.graded"
	NotificationTypeRegraded    = "submission.regraded"
	NotificationTypeAssignment  = "assignment.published"
	NotificationTypeDeactivated = "assignment.deactivated"
)

// Notification is a message delivered to a single user.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:64;not null" json:"type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
