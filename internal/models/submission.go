package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	// SubmissionStatusSubmitted indicates work has been handed in but not graded.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission carries a final grade.
	SubmissionStatusGraded = "graded"
)

// Submission is one student's work against one assignment. Exactly one record
// exists per (assignment, student) pair; a second submit overwrites in place.
type Submission struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	AssignmentID uint           `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	StudentID    uint           `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"student_id"`
	Body         string         `gorm:"type:text" json:"body"`
	Attachments  datatypes.JSON `gorm:"type:json" json:"-"`
	SubmittedAt  time.Time      `gorm:"not null" json:"submitted_at"`
	IsLate       bool           `gorm:"not null" json:"is_late"`
	Status       string         `gorm:"size:32;not null" json:"status"`
	Grade        *float64       `json:"grade"`
	Feedback     string         `gorm:"type:text" json:"feedback"`
	GradedAt     *time.Time     `json:"graded_at"`
	GradedBy     *uint          `json:"graded_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Assignment   Assignment     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student      User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// IsGraded reports whether the submission carries a grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded && s.Grade != nil
}

// ClearGrade voids any grading state. Called on resubmission: a regrade must
// be an explicit action by a teacher, never an implicit carry-over.
func (s *Submission) ClearGrade() {
	s.Grade = nil
	s.Feedback = ""
	s.GradedAt = nil
	s.GradedBy = nil
	s.Status = SubmissionStatusSubmitted
}

// AttachmentList decodes the stored attachment references.
func (s Submission) AttachmentList() []Attachment {
	if len(s.Attachments) == 0 {
		return nil
	}
	var items []Attachment
	if err := json.Unmarshal(s.Attachments, &items); err != nil {
		return nil
	}
	return items
}

// SetAttachmentList stores the given attachment references as JSON.
func (s *Submission) SetAttachmentList(items []Attachment) error {
	if len(items) == 0 {
		s.Attachments = datatypes.JSON([]byte("[]"))
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	s.Attachments = datatypes.JSON(data)
	return nil
}
