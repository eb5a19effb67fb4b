package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/apperr"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
)

func newSubmissionFixture(dueDate time.Time) (*memoryAssignmentRepo, *memorySubmissionRepo, *submissionService) {
	assignments := newMemoryAssignmentRepo()
	submissions := newMemorySubmissionRepo(assignments)
	courses := newMemoryCourseRepo()
	courses.add(models.Course{ID: 1, Name: "Algorithms", TeacherID: 10}, 20, 21)

	assignments.assignments[1] = models.Assignment{
		ID:          1,
		CourseID:    1,
		Course:      models.Course{ID: 1, TeacherID: 10},
		Title:       "Graph Traversal",
		Description: "Implement BFS and DFS over adjacency lists.",
		DueDate:     dueDate,
		Points:      100,
		Status:      models.AssignmentStatusActive,
	}
	assignments.nextID = 2

	access := NewAccessEvaluator(courses, testLogger())
	svc := NewSubmissionService(submissions, assignments, access, testValidator(), testLogger()).(*submissionService)
	return assignments, submissions, svc
}

func TestSubmissionServiceFirstSubmit(t *testing.T) {
	_, submissions, svc := newSubmissionFixture(time.Now().Add(time.Hour))

	result, err := svc.Submit(context.Background(), dto.SubmitRequest{
		AssignmentID: 1,
		Body:         "my solution",
	}, studentPrincipal())
	require.NoError(t, err)
	require.False(t, result.Resubmitted)
	require.False(t, result.Submission.IsLate)
	require.Equal(t, models.SubmissionStatusSubmitted, result.Submission.Status)
	require.Len(t, submissions.submissions, 1)
}

func TestSubmissionServiceResubmitOverwritesAndClearsGrade(t *testing.T) {
	_, submissions, svc := newSubmissionFixture(time.Now().Add(time.Hour))

	first, err := svc.Submit(context.Background(), dto.SubmitRequest{AssignmentID: 1, Body: "draft"}, studentPrincipal())
	require.NoError(t, err)

	// A teacher grades the first attempt.
	graded := submissions.submissions[first.Submission.ID]
	graded.Grade = floatPtr(80)
	graded.Status = models.SubmissionStatusGraded
	gradedAt := time.Now()
	graded.GradedAt = &gradedAt
	gradedBy := uint(10)
	graded.GradedBy = &gradedBy
	graded.Feedback = "decent start"
	submissions.submissions[first.Submission.ID] = graded

	second, err := svc.Submit(context.Background(), dto.SubmitRequest{AssignmentID: 1, Body: "final"}, studentPrincipal())
	require.NoError(t, err)
	require.True(t, second.Resubmitted)
	require.Equal(t, first.Submission.ID, second.Submission.ID)
	require.Equal(t, "final", second.Submission.Body)
	require.Nil(t, second.Submission.Grade)
	require.Empty(t, second.Submission.Feedback)
	require.Nil(t, second.Submission.GradedAt)
	require.Nil(t, second.Submission.GradedBy)
	require.Equal(t, models.SubmissionStatusSubmitted, second.Submission.Status)
	require.Len(t, submissions.submissions, 1)
}

func TestSubmissionServiceLateFlag(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		at   time.Time
		late bool
	}{
		{"one second early", due.Add(-time.Second), false},
		{"exactly at deadline", due, false},
		{"one second after", due.Add(time.Second), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, svc := newSubmissionFixture(due)
			svc.now = func() time.Time { return tc.at }

			result, err := svc.Submit(context.Background(), dto.SubmitRequest{AssignmentID: 1, Body: "work"}, studentPrincipal())
			require.NoError(t, err)
			require.Equal(t, tc.late, result.Submission.IsLate)
		})
	}
}

func TestSubmissionServiceLateResubmitOverwritesAndFlagsLate(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_, submissions, svc := newSubmissionFixture(due)

	svc.now = func() time.Time { return due.Add(-time.Second) }
	first, err := svc.Submit(context.Background(), dto.SubmitRequest{AssignmentID: 1, Body: "on time"}, studentPrincipal())
	require.NoError(t, err)
	require.False(t, first.Submission.IsLate)

	graded := submissions.submissions[first.Submission.ID]
	graded.Grade = floatPtr(92)
	graded.Status = models.SubmissionStatusGraded
	submissions.submissions[first.Submission.ID] = graded

	svc.now = func() time.Time { return due.Add(time.Second) }
	second, err := svc.Submit(context.Background(), dto.SubmitRequest{AssignmentID: 1, Body: "revised"}, studentPrincipal())
	require.NoError(t, err)
	require.True(t, second.Resubmitted)
	require.Equal(t, first.Submission.ID, second.Submission.ID)
	require.True(t, second.Submission.IsLate)
	require.Nil(t, second.Submission.Grade)
	require.Len(t, submissions.submissions, 1)
}

func TestSubmissionServiceDeactivatedAssignmentRejects(t *testing.T) {
	assignments, _, svc := newSubmissionFixture(time.Now().Add(time.Hour))

	assignment := assignments.assignments[1]
	assignment.Status = models.AssignmentStatusDeactivated
	assignments.assignments[1] = assignment

	_, err := svc.Submit(context.Background(), dto.SubmitRequest{AssignmentID: 1, Body: "work"}, studentPrincipal())
	require.True(t, apperr.IsKind(err, apperr.KindSubmissionClosed))
}

func TestSubmissionServiceNotEnrolled(t *testing.T) {
	_, _, svc := newSubmissionFixture(time.Now().Add(time.Hour))

	outsider := models.Principal{ID: 99, Role: models.RoleStudent}
	_, err := svc.Submit(context.Background(), dto.SubmitRequest{AssignmentID: 1, Body: "work"}, outsider)
	require.True(t, apperr.IsKind(err, apperr.KindNotEnrolled))
}

func TestSubmissionServiceTeacherCannotSubmit(t *testing.T) {
	_, _, svc := newSubmissionFixture(time.Now().Add(time.Hour))

	_, err := svc.Submit(context.Background(), dto.SubmitRequest{AssignmentID: 1, Body: "work"}, teacherPrincipal())
	require.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestSubmissionServiceRequiresBodyOrAttachment(t *testing.T) {
	_, _, svc := newSubmissionFixture(time.Now().Add(time.Hour))

	_, err := svc.Submit(context.Background(), dto.SubmitRequest{AssignmentID: 1}, studentPrincipal())
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	// Script tags are stripped before the emptiness check.
	_, err = svc.Submit(context.Background(), dto.SubmitRequest{AssignmentID: 1, Body: "<script>alert(1)</script>"}, studentPrincipal())
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestSubmissionServiceAttachmentOnlySubmit(t *testing.T) {
	_, _, svc := newSubmissionFixture(time.Now().Add(time.Hour))

	result, err := svc.Submit(context.Background(), dto.SubmitRequest{
		AssignmentID: 1,
		Attachments:  []dto.AttachmentInput{{Name: "report.pdf", UploadID: 7}},
	}, studentPrincipal())
	require.NoError(t, err)
	require.Len(t, result.Submission.Attachments, 1)
	require.Equal(t, "report.pdf", result.Submission.Attachments[0].Name)
}

func TestSubmissionServiceResolvesConcurrentFirstSubmit(t *testing.T) {
	_, submissions, svc := newSubmissionFixture(time.Now().Add(time.Hour))

	// A concurrent request lands between our lookup and our insert; the
	// unique index rejects us and the service falls back to overwriting.
	submissions.onCreate = func() {
		submissions.submissions[50] = models.Submission{
			ID:           50,
			AssignmentID: 1,
			StudentID:    20,
			Body:         "rival attempt",
			SubmittedAt:  time.Now(),
			Status:       models.SubmissionStatusSubmitted,
		}
	}

	result, err := svc.Submit(context.Background(), dto.SubmitRequest{AssignmentID: 1, Body: "my attempt"}, studentPrincipal())
	require.NoError(t, err)
	require.True(t, result.Resubmitted)
	require.Equal(t, uint(50), result.Submission.ID)
	require.Equal(t, "my attempt", result.Submission.Body)
	require.Len(t, submissions.submissions, 1)
}

func TestSubmissionServiceListOwnStudentsOnly(t *testing.T) {
	_, _, svc := newSubmissionFixture(time.Now().Add(time.Hour))

	_, err := svc.ListOwn(context.Background(), teacherPrincipal())
	require.True(t, apperr.IsKind(err, apperr.KindForbidden))
}
