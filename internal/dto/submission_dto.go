package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// SubmitRequest describes the payload for handing in work. The body may be
// empty when attachments are present; the service enforces that at least one
// of the two is supplied.
type SubmitRequest struct {
	AssignmentID uint              `json:"-" validate:"required,gt=0"`
	Body         string            `json:"body" validate:"omitempty,max=5000"`
	Attachments  []AttachmentInput `json:"attachments" validate:"omitempty,dive"`
}

// SubmitResult distinguishes a first submission from a resubmission so the
// caller can phrase its confirmation message.
type SubmitResult struct {
	Submission  SubmissionResponse `json:"submission"`
	Resubmitted bool               `json:"resubmitted"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint                `json:"id"`
	AssignmentID uint                `json:"assignment_id"`
	StudentID    uint                `json:"student_id"`
	Body         string              `json:"body"`
	Attachments  []models.Attachment `json:"attachments"`
	SubmittedAt  time.Time           `json:"submitted_at"`
	IsLate       bool                `json:"is_late"`
	Status       string              `json:"status"`
	Grade        *float64            `json:"grade"`
	Feedback     string              `json:"feedback"`
	GradedBy     *uint               `json:"graded_by"`
	GradedAt     *time.Time          `json:"graded_at"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Assignment   AssignmentLite      `json:"assignment"`
	Student      StudentLite         `json:"student"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID      uint      `json:"id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
	Points  float64   `json:"points"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	attachments := model.AttachmentList()
	if attachments == nil {
		attachments = []models.Attachment{}
	}

	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Body:         model.Body,
		Attachments:  attachments,
		SubmittedAt:  model.SubmittedAt,
		IsLate:       model.IsLate,
		Status:       model.Status,
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		GradedBy:     model.GradedBy,
		GradedAt:     model.GradedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:      model.Assignment.ID,
			Title:   model.Assignment.Title,
			DueDate: model.Assignment.DueDate,
			Points:  model.Assignment.Points,
		}
	}

	if model.Student.ID != 0 {
		response.Student = StudentLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Email: model.Student.Email,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
