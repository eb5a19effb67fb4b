package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/apperr"
	"github.com/noah-isme/campus-go-api/internal/models"
)

func newAccessFixture() (*memoryCourseRepo, AccessEvaluator) {
	courses := newMemoryCourseRepo()
	courses.add(models.Course{ID: 1, Name: "Algorithms", TeacherID: 10}, 20)
	courses.add(models.Course{ID: 2, Name: "Biology", TeacherID: 11}, 21)
	return courses, NewAccessEvaluator(courses, testLogger())
}

func TestAccessEvaluatorAdminPassesEveryCheck(t *testing.T) {
	courses, access := newAccessFixture()
	ctx := context.Background()
	admin := models.Principal{ID: 1, Role: models.RoleAdmin}
	course := courses.courses[1]

	require.NoError(t, access.CanManageCourse(ctx, admin, course))
	require.NoError(t, access.CanViewCourse(ctx, admin, course))
	require.NoError(t, access.CanGrade(ctx, admin, course))
	require.NoError(t, access.CanViewGradebook(ctx, admin, course))
	require.NoError(t, access.CanViewStudentGrades(ctx, admin, 20))
}

func TestAccessEvaluatorManageRequiresOwnership(t *testing.T) {
	courses, access := newAccessFixture()
	ctx := context.Background()

	owner := models.Principal{ID: 10, Role: models.RoleTeacher}
	stranger := models.Principal{ID: 11, Role: models.RoleTeacher}

	require.NoError(t, access.CanManageCourse(ctx, owner, courses.courses[1]))
	require.True(t, apperr.IsKind(access.CanManageCourse(ctx, stranger, courses.courses[1]), apperr.KindForbidden))
}

func TestAccessEvaluatorSubmitRules(t *testing.T) {
	courses, access := newAccessFixture()
	ctx := context.Background()
	course := courses.courses[1]

	enrolled := models.Principal{ID: 20, Role: models.RoleStudent}
	require.NoError(t, access.CanSubmit(ctx, enrolled, course))

	outsider := models.Principal{ID: 21, Role: models.RoleStudent}
	require.True(t, apperr.IsKind(access.CanSubmit(ctx, outsider, course), apperr.KindNotEnrolled))

	teacher := models.Principal{ID: 10, Role: models.RoleTeacher}
	require.True(t, apperr.IsKind(access.CanSubmit(ctx, teacher, course), apperr.KindForbidden))
}

func TestAccessEvaluatorViewCourseForEnrolledStudent(t *testing.T) {
	courses, access := newAccessFixture()
	ctx := context.Background()

	enrolled := models.Principal{ID: 20, Role: models.RoleStudent}
	require.NoError(t, access.CanViewCourse(ctx, enrolled, courses.courses[1]))
	require.True(t, apperr.IsKind(access.CanViewCourse(ctx, enrolled, courses.courses[2]), apperr.KindForbidden))
}

func TestAccessEvaluatorStudentGrades(t *testing.T) {
	_, access := newAccessFixture()
	ctx := context.Background()

	self := models.Principal{ID: 20, Role: models.RoleStudent}
	require.NoError(t, access.CanViewStudentGrades(ctx, self, 20))
	require.True(t, apperr.IsKind(access.CanViewStudentGrades(ctx, self, 21), apperr.KindForbidden))

	// A teacher sees only students enrolled in one of their courses.
	teacher := models.Principal{ID: 10, Role: models.RoleTeacher}
	require.NoError(t, access.CanViewStudentGrades(ctx, teacher, 20))
	require.True(t, apperr.IsKind(access.CanViewStudentGrades(ctx, teacher, 21), apperr.KindForbidden))
}

func TestAccessEvaluatorViewSubmission(t *testing.T) {
	_, access := newAccessFixture()
	ctx := context.Background()

	submission := models.Submission{
		ID:           5,
		AssignmentID: 1,
		StudentID:    20,
		Assignment: models.Assignment{
			ID:       1,
			CourseID: 1,
			Course:   models.Course{ID: 1, TeacherID: 10},
		},
	}

	owner := models.Principal{ID: 20, Role: models.RoleStudent}
	require.NoError(t, access.CanViewSubmission(ctx, owner, submission))

	classmate := models.Principal{ID: 21, Role: models.RoleStudent}
	require.True(t, apperr.IsKind(access.CanViewSubmission(ctx, classmate, submission), apperr.KindForbidden))

	teacher := models.Principal{ID: 10, Role: models.RoleTeacher}
	require.NoError(t, access.CanViewSubmission(ctx, teacher, submission))

	otherTeacher := models.Principal{ID: 11, Role: models.RoleTeacher}
	require.True(t, apperr.IsKind(access.CanViewSubmission(ctx, otherTeacher, submission), apperr.KindForbidden))
}
