package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Assignment lifecycle states. Deactivation hides the assignment from
// listings and blocks new submissions; it never deletes history.
const (
	AssignmentStatusActive      = "active"
	AssignmentStatusDeactivated = "deactivated"
)

// Attachment references an uploaded file bound to an assignment or submission.
type Attachment struct {
	Name     string `json:"name"`
	UploadID uint   `json:"upload_id"`
	URL      string `json:"url,omitempty"`
}

// Assignment represents a unit of work issued within a course.
type Assignment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CourseID    uint           `gorm:"not null;index" json:"course_id"`
	Course      Course         `json:"course"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	DueDate     time.Time      `gorm:"not null" json:"due_date"`
	Points      float64        `gorm:"not null" json:"points"`
	Attachments datatypes.JSON `gorm:"type:json" json:"-"`
	Status      string         `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Submissions []Submission   `json:"-"`
}

// IsActive reports whether the assignment has not been deactivated.
func (a Assignment) IsActive() bool {
	return a.Status != AssignmentStatusDeactivated
}

// IsPastDue returns true when the deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// AcceptsSubmissions is the single gate consulted before accepting new work.
// Only deactivation closes an assignment; work handed in after the deadline
// is still accepted and carries the late flag instead.
func (a Assignment) AcceptsSubmissions() bool {
	return a.IsActive()
}

// AttachmentList decodes the stored attachment references.
func (a Assignment) AttachmentList() []Attachment {
	if len(a.Attachments) == 0 {
		return nil
	}
	var items []Attachment
	if err := json.Unmarshal(a.Attachments, &items); err != nil {
		return nil
	}
	return items
}

// SetAttachmentList stores the given attachment references as JSON.
func (a *Assignment) SetAttachmentList(items []Attachment) error {
	if len(items) == 0 {
		a.Attachments = datatypes.JSON([]byte("[]"))
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	a.Attachments = datatypes.JSON(data)
	return nil
}
