package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/apperr"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// SubmissionService governs creation and resubmission of student work.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmitRequest, principal models.Principal) (dto.SubmitResult, error)
	Get(ctx context.Context, id uint, principal models.Principal) (dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, assignmentID uint, principal models.Principal) ([]dto.SubmissionResponse, error)
	ListOwn(ctx context.Context, principal models.Principal) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	access      AccessEvaluator
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, access AccessEvaluator, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		access:      access,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Submit hands in work for an assignment. The first call for a given
// (assignment, student) pair creates the record; every later call overwrites
// it in place and voids any existing grade. Work past the due date is still
// accepted while the assignment is active and is flagged late. Lateness is
// computed once, from the due date in force at this instant; later due-date
// edits never retroactively change the flag.
func (s *submissionService) Submit(ctx context.Context, payload dto.SubmitRequest, principal models.Principal) (dto.SubmitResult, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitResult{}, err
	}

	body := strings.TrimSpace(s.sanitizer.Sanitize(payload.Body))
	if body == "" && len(payload.Attachments) == 0 {
		return dto.SubmitResult{}, apperr.New(apperr.KindValidation, "submission requires a body or at least one attachment")
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmitResult{}, apperr.New(apperr.KindNotFound, "assignment %d not found", payload.AssignmentID)
		}
		return dto.SubmitResult{}, err
	}

	if err := s.access.CanSubmit(ctx, principal, assignment.Course); err != nil {
		return dto.SubmitResult{}, err
	}

	if !assignment.AcceptsSubmissions() {
		return dto.SubmitResult{}, apperr.New(apperr.KindSubmissionClosed, "assignment %q is no longer accepting submissions", assignment.Title)
	}

	now := s.now()
	isLate := assignment.IsPastDue(now)
	attachments := attachmentsFromInput(payload.Attachments)

	existing, err := s.submissions.GetByAssignmentAndStudent(ctx, assignment.ID, principal.ID)
	switch {
	case err == nil:
		return s.overwrite(ctx, existing, body, attachments, now, isLate)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.createFirst(ctx, assignment, principal.ID, body, attachments, now, isLate)
	default:
		return dto.SubmitResult{}, err
	}
}

func (s *submissionService) createFirst(ctx context.Context, assignment models.Assignment, studentID uint, body string, attachments []models.Attachment, now time.Time, isLate bool) (dto.SubmitResult, error) {
	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    studentID,
		Body:         body,
		SubmittedAt:  now,
		IsLate:       isLate,
		Status:       models.SubmissionStatusSubmitted,
	}
	if err := submission.SetAttachmentList(attachments); err != nil {
		return dto.SubmitResult{}, err
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		// Lost a concurrent first-submit race: the unique index on
		// (assignment, student) rejected us. Resolve last-writer-wins by
		// re-reading and overwriting, same as any resubmission.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, readErr := s.submissions.GetByAssignmentAndStudent(ctx, assignment.ID, studentID)
			if readErr != nil {
				return dto.SubmitResult{}, readErr
			}
			return s.overwrite(ctx, existing, body, attachments, now, isLate)
		}
		return dto.SubmitResult{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmitResult{}, err
	}

	s.logger.Info().Uint("submission_id", created.ID).Uint("assignment_id", assignment.ID).Bool("is_late", isLate).Msg("submission created")

	return dto.SubmitResult{Submission: dto.NewSubmissionResponse(created), Resubmitted: false}, nil
}

func (s *submissionService) overwrite(ctx context.Context, submission models.Submission, body string, attachments []models.Attachment, now time.Time, isLate bool) (dto.SubmitResult, error) {
	submission.Body = body
	submission.SubmittedAt = now
	submission.IsLate = isLate
	if err := submission.SetAttachmentList(attachments); err != nil {
		return dto.SubmitResult{}, err
	}
	submission.ClearGrade()

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmitResult{}, err
	}

	updated, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmitResult{}, err
	}

	s.logger.Info().Uint("submission_id", updated.ID).Bool("is_late", isLate).Msg("submission overwritten")

	return dto.SubmitResult{Submission: dto.NewSubmissionResponse(updated), Resubmitted: true}, nil
}

func (s *submissionService) Get(ctx context.Context, id uint, principal models.Principal) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, apperr.New(apperr.KindNotFound, "submission %d not found", id)
		}
		return dto.SubmissionResponse{}, err
	}

	if err := s.access.CanViewSubmission(ctx, principal, submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, assignmentID uint, principal models.Principal) ([]dto.SubmissionResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "assignment %d not found", assignmentID)
		}
		return nil, err
	}

	if err := s.access.CanManageCourse(ctx, principal, assignment.Course); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{AssignmentID: &assignmentID})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListOwn(ctx context.Context, principal models.Principal) ([]dto.SubmissionResponse, error) {
	if !principal.IsStudent() {
		return nil, apperr.New(apperr.KindForbidden, "only students have own submissions")
	}

	studentID := principal.ID
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}
