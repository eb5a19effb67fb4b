package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/apperr"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// AssignmentService governs assignment creation, mutation and soft-deletion.
type AssignmentService interface {
	Create(ctx context.Context, payload dto.AssignmentCreateRequest, principal models.Principal) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, principal models.Principal) (dto.AssignmentResponse, error)
	Deactivate(ctx context.Context, id uint, principal models.Principal) error
	Get(ctx context.Context, id uint, principal models.Principal) (dto.AssignmentResponse, error)
	ListByCourse(ctx context.Context, courseID uint, principal models.Principal) ([]dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	courses     repository.CourseRepository
	access      AccessEvaluator
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignments repository.AssignmentRepository, courses repository.CourseRepository, access AccessEvaluator, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		courses:     courses,
		access:      access,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest, principal models.Principal) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, payload.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, apperr.New(apperr.KindNotFound, "course %d not found", payload.CourseID)
		}
		return dto.AssignmentResponse{}, err
	}

	if err := s.access.CanManageCourse(ctx, principal, course); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if !payload.DueDate.After(s.now()) {
		return dto.AssignmentResponse{}, apperr.New(apperr.KindValidation, "due date must be in the future")
	}

	assignment := models.Assignment{
		CourseID:    course.ID,
		Title:       payload.Title,
		Description: payload.Description,
		DueDate:     *payload.DueDate,
		Points:      *payload.Points,
		Status:      models.AssignmentStatusActive,
	}
	if err := assignment.SetAttachmentList(attachmentsFromInput(payload.Attachments)); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("course_id", course.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

// Update applies a partial patch. The future-due-date rule is checked at
// creation only; a patched due date may lie in the past, which allows
// back-dating corrections and mirrors the original portal's behavior.
func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, principal models.Principal) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.resolve(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.access.CanManageCourse(ctx, principal, assignment.Course); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if payload.DueDate != nil {
		assignment.DueDate = *payload.DueDate
	}
	if payload.Points != nil {
		assignment.Points = *payload.Points
	}
	if payload.Attachments != nil {
		if err := assignment.SetAttachmentList(attachmentsFromInput(payload.Attachments)); err != nil {
			return dto.AssignmentResponse{}, err
		}
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

// Deactivate retires the assignment. Existing submissions and grades are
// untouched; only listings and new submissions are affected.
func (s *assignmentService) Deactivate(ctx context.Context, id uint, principal models.Principal) error {
	assignment, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}

	if err := s.access.CanManageCourse(ctx, principal, assignment.Course); err != nil {
		return err
	}

	if assignment.Status == models.AssignmentStatusDeactivated {
		return nil
	}

	assignment.Status = models.AssignmentStatusDeactivated
	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment deactivated")

	return nil
}

func (s *assignmentService) Get(ctx context.Context, id uint, principal models.Principal) (dto.AssignmentResponse, error) {
	assignment, err := s.resolve(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.access.CanViewCourse(ctx, principal, assignment.Course); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) ListByCourse(ctx context.Context, courseID uint, principal models.Principal) ([]dto.AssignmentResponse, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "course %d not found", courseID)
		}
		return nil, err
	}

	if err := s.access.CanViewCourse(ctx, principal, course); err != nil {
		return nil, err
	}

	// Deactivated assignments stay visible to whoever manages the course.
	activeOnly := s.access.CanManageCourse(ctx, principal, course) != nil

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{
		CourseID:   &courseID,
		ActiveOnly: activeOnly,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) resolve(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, apperr.New(apperr.KindNotFound, "assignment %d not found", id)
		}
		return models.Assignment{}, err
	}

	return assignment, nil
}

func attachmentsFromInput(inputs []dto.AttachmentInput) []models.Attachment {
	attachments := make([]models.Attachment, 0, len(inputs))
	for _, input := range inputs {
		attachments = append(attachments, models.Attachment{
			Name:     input.Name,
			UploadID: input.UploadID,
		})
	}

	return attachments
}
