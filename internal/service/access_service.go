package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/apperr"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// AccessEvaluator is the single authorization primitive consulted by every
// mutating and most reading operations. Each rule is a pure predicate over
// the principal and a resource relationship; administrators pass every check
// unconditionally. A nil return means permitted.
type AccessEvaluator interface {
	CanManageCourse(ctx context.Context, principal models.Principal, course models.Course) error
	CanViewCourse(ctx context.Context, principal models.Principal, course models.Course) error
	CanSubmit(ctx context.Context, principal models.Principal, course models.Course) error
	CanGrade(ctx context.Context, principal models.Principal, course models.Course) error
	CanViewGradebook(ctx context.Context, principal models.Principal, course models.Course) error
	CanViewStudentGrades(ctx context.Context, principal models.Principal, studentID uint) error
	CanViewSubmission(ctx context.Context, principal models.Principal, submission models.Submission) error
	CanDownloadUpload(ctx context.Context, principal models.Principal, upload models.UploadRecord) error
}

type accessEvaluator struct {
	courses repository.CourseRepository
	logger  zerolog.Logger
}

// NewAccessEvaluator constructs the evaluator over course/enrollment lookups.
func NewAccessEvaluator(courses repository.CourseRepository, logger zerolog.Logger) AccessEvaluator {
	return &accessEvaluator{
		courses: courses,
		logger:  logger.With().Str("component", "access_evaluator").Logger(),
	}
}

func (e *accessEvaluator) CanManageCourse(ctx context.Context, principal models.Principal, course models.Course) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.IsTeacher() && course.IsOwnedBy(principal.ID) {
		return nil
	}
	return apperr.New(apperr.KindForbidden, "only the owning teacher or an administrator may manage course %d", course.ID)
}

func (e *accessEvaluator) CanViewCourse(ctx context.Context, principal models.Principal, course models.Course) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.IsTeacher() && course.IsOwnedBy(principal.ID) {
		return nil
	}
	if principal.IsStudent() {
		enrolled, err := e.courses.IsEnrolled(ctx, course.ID, principal.ID)
		if err != nil {
			return err
		}
		if enrolled {
			return nil
		}
	}
	return apperr.New(apperr.KindForbidden, "no access to course %d", course.ID)
}

func (e *accessEvaluator) CanSubmit(ctx context.Context, principal models.Principal, course models.Course) error {
	if !principal.IsStudent() {
		return apperr.New(apperr.KindForbidden, "only students may submit work")
	}

	enrolled, err := e.courses.IsEnrolled(ctx, course.ID, principal.ID)
	if err != nil {
		return err
	}
	if !enrolled {
		return apperr.New(apperr.KindNotEnrolled, "student %d is not enrolled in course %d", principal.ID, course.ID)
	}

	return nil
}

func (e *accessEvaluator) CanGrade(ctx context.Context, principal models.Principal, course models.Course) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.IsTeacher() && course.IsOwnedBy(principal.ID) {
		return nil
	}
	return apperr.New(apperr.KindForbidden, "only the owning teacher or an administrator may grade course %d", course.ID)
}

func (e *accessEvaluator) CanViewGradebook(ctx context.Context, principal models.Principal, course models.Course) error {
	return e.CanManageCourse(ctx, principal, course)
}

func (e *accessEvaluator) CanViewStudentGrades(ctx context.Context, principal models.Principal, studentID uint) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.IsStudent() {
		if principal.ID == studentID {
			return nil
		}
		return apperr.New(apperr.KindForbidden, "students may only read their own grades")
	}
	if principal.IsTeacher() {
		teaches, err := e.courses.TeachesStudent(ctx, principal.ID, studentID)
		if err != nil {
			return err
		}
		if teaches {
			return nil
		}
	}
	return apperr.New(apperr.KindForbidden, "no access to grades of student %d", studentID)
}

func (e *accessEvaluator) CanViewSubmission(ctx context.Context, principal models.Principal, submission models.Submission) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.IsStudent() && submission.StudentID == principal.ID {
		return nil
	}
	if principal.IsTeacher() && submission.Assignment.Course.IsOwnedBy(principal.ID) {
		return nil
	}
	return apperr.New(apperr.KindForbidden, "no access to submission %d", submission.ID)
}

func (e *accessEvaluator) CanDownloadUpload(ctx context.Context, principal models.Principal, upload models.UploadRecord) error {
	if principal.IsAdmin() || upload.UploaderID == principal.ID {
		return nil
	}

	if upload.CourseID != nil {
		course, err := e.courses.GetByID(ctx, *upload.CourseID)
		if err == nil {
			if err := e.CanViewCourse(ctx, principal, course); err == nil {
				return nil
			}
		}
	}

	return apperr.New(apperr.KindForbidden, "no access to file %d", upload.ID)
}
