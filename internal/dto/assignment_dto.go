package dto

import (
	"time"

	"github.com/noah-isme/campus-go-api/internal/models"
)

// AttachmentInput references a previously uploaded file.
type AttachmentInput struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	UploadID uint   `json:"upload_id" validate:"required,gt=0"`
}

// AssignmentCreateRequest describes the payload for creating a new assignment.
type AssignmentCreateRequest struct {
	CourseID    uint              `json:"course_id" validate:"required,gt=0"`
	Title       string            `json:"title" validate:"required,min=3,max=200"`
	Description string            `json:"description" validate:"required,min=10,max=2000"`
	DueDate     *time.Time        `json:"due_date" validate:"required"`
	Points      *float64          `json:"points" validate:"required,gte=0,lte=1000"`
	Attachments []AttachmentInput `json:"attachments" validate:"omitempty,dive"`
}

// AssignmentUpdateRequest is a partial patch; only supplied fields change.
type AssignmentUpdateRequest struct {
	Title       *string           `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string           `json:"description" validate:"omitempty,min=10,max=2000"`
	DueDate     *time.Time        `json:"due_date"`
	Points      *float64          `json:"points" validate:"omitempty,gte=0,lte=1000"`
	Attachments []AttachmentInput `json:"attachments" validate:"omitempty,dive"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID          uint                `json:"id"`
	CourseID    uint                `json:"course_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	DueDate     time.Time           `json:"due_date"`
	Points      float64             `json:"points"`
	Attachments []models.Attachment `json:"attachments"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	attachments := model.AttachmentList()
	if attachments == nil {
		attachments = []models.Attachment{}
	}

	return AssignmentResponse{
		ID:          model.ID,
		CourseID:    model.CourseID,
		Title:       model.Title,
		Description: model.Description,
		DueDate:     model.DueDate,
		Points:      model.Points,
		Attachments: attachments,
		Status:      model.Status,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
