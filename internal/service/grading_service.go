package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/apperr"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/grading"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/observability"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// GradeNotifier delivers grade notifications to students. Delivery is
// best-effort; a failed notification never fails the grading call.
type GradeNotifier interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
}

// GradingService records grades against submissions, singly or in bulk.
type GradingService interface {
	Grade(ctx context.Context, submissionID uint, payload dto.GradeRequest, principal models.Principal) (dto.GradeResponse, error)
	BulkGrade(ctx context.Context, assignmentID uint, payload dto.BulkGradeRequest, principal models.Principal) (dto.BulkGradeResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	access      AccessEvaluator
	validator   *validator.Validate
	notifier    GradeNotifier
	cache       *redis.Client
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, access AccessEvaluator, validate *validator.Validate, notifier GradeNotifier, cache *redis.Client, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: submissions,
		assignments: assignments,
		access:      access,
		validator:   validate,
		notifier:    notifier,
		cache:       cache,
		logger:      logger.With().Str("component", "grading_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/campus-go-api/internal/service/grading"),
		now:         time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, submissionID uint, payload dto.GradeRequest, principal models.Principal) (dto.GradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.grade")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(principal.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.GradeResponse{}, err
	}

	submission, err := s.resolveSubmission(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.GradeResponse{}, err
	}

	if err := s.access.CanGrade(ctx, principal, submission.Assignment.Course); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "forbidden")
		return dto.GradeResponse{}, err
	}

	response, err := s.apply(ctx, submission, payload, principal)
	if err != nil {
		observability.GradingOperations().WithLabelValues("single", "failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperr.KindOf(err)))
		return dto.GradeResponse{}, err
	}

	observability.GradingOperations().WithLabelValues("single", "graded").Inc()
	span.SetAttributes(
		attribute.Float64("grading.grade", *payload.Grade),
		attribute.Bool("grading.is_regrade", response.IsRegrade),
	)

	return response, nil
}

// BulkGrade authorizes once against the assignment and then processes each
// entry independently. Per-entry failures are collected, never thrown, and
// completed entries are never rolled back because a later one failed.
func (s *gradingService) BulkGrade(ctx context.Context, assignmentID uint, payload dto.BulkGradeRequest, principal models.Principal) (dto.BulkGradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.bulk")
	span.SetAttributes(
		attribute.Int64("grading.assignment_id", int64(assignmentID)),
		attribute.Int("grading.batch_size", len(payload.Entries)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.BulkGradeResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BulkGradeResponse{}, apperr.New(apperr.KindNotFound, "assignment %d not found", assignmentID)
		}
		return dto.BulkGradeResponse{}, err
	}

	if err := s.access.CanGrade(ctx, principal, assignment.Course); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "forbidden")
		return dto.BulkGradeResponse{}, err
	}

	result := dto.BulkGradeResponse{
		Successful: []dto.GradeResponse{},
		Failed:     []dto.BulkGradeFailure{},
	}

	for _, entry := range payload.Entries {
		result.TotalProcessed++

		if failure := s.gradeEntry(ctx, assignment, entry, principal, &result); failure != nil {
			result.Failed = append(result.Failed, *failure)
		}
	}

	observability.GradingOperations().WithLabelValues("bulk", "graded").Add(float64(len(result.Successful)))
	observability.GradingOperations().WithLabelValues("bulk", "failed").Add(float64(len(result.Failed)))
	span.SetAttributes(
		attribute.Int("grading.successful", len(result.Successful)),
		attribute.Int("grading.failed", len(result.Failed)),
	)

	s.logger.Info().
		Uint("assignment_id", assignmentID).
		Int("successful", len(result.Successful)).
		Int("failed", len(result.Failed)).
		Msg("bulk grading completed")

	return result, nil
}

// gradeEntry processes one batch entry. A nil return means the entry was
// graded and appended to the successful list; otherwise the failure record
// explains the rejection.
func (s *gradingService) gradeEntry(ctx context.Context, assignment models.Assignment, entry dto.BulkGradeEntry, principal models.Principal, result *dto.BulkGradeResponse) *dto.BulkGradeFailure {
	if entry.SubmissionID == 0 {
		return &dto.BulkGradeFailure{
			Kind:   string(apperr.KindValidation),
			Reason: "submission id is required",
		}
	}

	if entry.Grade == nil {
		return &dto.BulkGradeFailure{
			SubmissionID: entry.SubmissionID,
			Kind:         string(apperr.KindInvalidGradeFormat),
			Reason:       "grade is required and must be a number",
		}
	}

	submission, err := s.resolveSubmission(ctx, entry.SubmissionID)
	if err != nil {
		return &dto.BulkGradeFailure{
			SubmissionID: entry.SubmissionID,
			Kind:         string(apperr.KindNotFound),
			Reason:       err.Error(),
		}
	}

	if submission.AssignmentID != assignment.ID {
		return &dto.BulkGradeFailure{
			SubmissionID: entry.SubmissionID,
			Kind:         string(apperr.KindValidation),
			Reason:       "submission belongs to a different assignment",
		}
	}

	response, err := s.apply(ctx, submission, dto.GradeRequest{Grade: entry.Grade, Feedback: entry.Feedback}, principal)
	if err != nil {
		return &dto.BulkGradeFailure{
			SubmissionID: entry.SubmissionID,
			Kind:         string(apperr.KindOf(err)),
			Reason:       err.Error(),
		}
	}

	result.Successful = append(result.Successful, response)
	return nil
}

// apply performs the shared grading path: validate the grade against the
// assignment's point value, persist, derive percentage and letter grade.
func (s *gradingService) apply(ctx context.Context, submission models.Submission, payload dto.GradeRequest, principal models.Principal) (dto.GradeResponse, error) {
	points := submission.Assignment.Points

	if payload.Grade == nil {
		return dto.GradeResponse{}, apperr.New(apperr.KindInvalidGradeFormat, "grade is required and must be a number")
	}

	grade := *payload.Grade
	if grade < 0 || grade > points {
		return dto.GradeResponse{}, apperr.New(apperr.KindInvalidGradeRange, "grade must be between 0 and %s", formatPoints(points))
	}

	previousGrade := submission.Grade
	wasGraded := submission.IsGraded()

	submission.Grade = &grade
	submission.Feedback = strings.TrimSpace(payload.Feedback)
	submission.Status = models.SubmissionStatusGraded
	gradedAt := s.now()
	submission.GradedAt = &gradedAt
	gradedBy := principal.ID
	submission.GradedBy = &gradedBy

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.GradeResponse{}, err
	}

	isRegrade := wasGraded && previousGrade != nil && *previousGrade != grade
	if !isRegrade {
		previousGrade = nil
	}

	derived := grading.Derive(grade, points)

	s.invalidateGradebook(ctx, submission.Assignment.CourseID)
	s.notify(ctx, submission, derived, isRegrade)

	return dto.GradeResponse{
		Submission:    dto.NewSubmissionResponse(submission),
		Percentage:    derived.Percentage,
		LetterGrade:   derived.LetterGrade,
		IsRegrade:     isRegrade,
		PreviousGrade: previousGrade,
	}, nil
}

func (s *gradingService) resolveSubmission(ctx context.Context, id uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, apperr.New(apperr.KindNotFound, "submission %d not found", id)
		}
		return models.Submission{}, err
	}

	return submission, nil
}

func (s *gradingService) invalidateGradebook(ctx context.Context, courseID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, gradebookCacheKey(courseID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("course_id", courseID).Msg("failed to invalidate gradebook cache")
	}
}

func (s *gradingService) notify(ctx context.Context, submission models.Submission, derived grading.Derivation, isRegrade bool) {
	if s.notifier == nil {
		return
	}

	kind := models.NotificationTypeGraded
	if isRegrade {
		kind = models.NotificationTypeRegraded
	}

	_, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  submission.StudentID,
		Type:    kind,
		Message: "Your submission for " + submission.Assignment.Title + " was graded: " + derived.LetterGrade,
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to publish grade notification")
	}
}

// formatPoints renders a point value without trailing zeros so range errors
// read "between 0 and 100", not "between 0 and 100.000000".
func formatPoints(points float64) string {
	return strconv.FormatFloat(points, 'f', -1, 64)
}
