package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Course{}, &models.Assignment{}, &models.Submission{}))
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, code string) (models.Course, models.User) {
	t.Helper()

	teacher := models.User{Name: "Prof. Adler", Email: code + "-teacher@example.com", Role: models.RoleTeacher}
	require.NoError(t, db.Create(&teacher).Error)

	student := models.User{Name: "Maya", Email: code + "-student@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)

	course := models.Course{Name: "Algorithms", Code: code, TeacherID: teacher.ID}
	require.NoError(t, db.Create(&course).Error)
	require.NoError(t, db.Model(&course).Association("Students").Append(&student))

	return course, student
}

func seedAssignment(t *testing.T, db *gorm.DB, courseID uint, title string, due time.Time) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		CourseID:    courseID,
		Title:       title,
		Description: "Write it up and hand it in.",
		DueDate:     due,
		Points:      100,
		Status:      models.AssignmentStatusActive,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func TestSubmissionRepositoryUniqueIndexPerPair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	course, student := seedCourse(t, db, "ALG-101")
	assignment := seedAssignment(t, db, course.ID, "Graph Traversal", time.Now().Add(time.Hour))

	first := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Body:         "first attempt",
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionStatusSubmitted,
	}
	require.NoError(t, repo.Create(ctx, &first))

	duplicate := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Body:         "concurrent attempt",
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionStatusSubmitted,
	}
	err := repo.Create(ctx, &duplicate)
	require.Error(t, err)
	require.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	// A different student on the same assignment is fine.
	other := models.User{Name: "Tomas", Email: "tomas@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&other).Error)
	second := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    other.ID,
		Body:         "their attempt",
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionStatusSubmitted,
	}
	require.NoError(t, repo.Create(ctx, &second))
}

func TestSubmissionRepositoryPreloadsRelations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	course, student := seedCourse(t, db, "ALG-102")
	assignment := seedAssignment(t, db, course.ID, "Graph Traversal", time.Now().Add(time.Hour))

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Body:         "work",
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionStatusSubmitted,
	}
	require.NoError(t, repo.Create(ctx, &submission))

	loaded, err := repo.GetByAssignmentAndStudent(ctx, assignment.ID, student.ID)
	require.NoError(t, err)
	require.Equal(t, assignment.ID, loaded.Assignment.ID)
	require.Equal(t, course.ID, loaded.Assignment.Course.ID)
	require.Equal(t, course.TeacherID, loaded.Assignment.Course.TeacherID)
	require.Equal(t, student.Name, loaded.Student.Name)
}

func TestSubmissionRepositoryStatusFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	course, student := seedCourse(t, db, "ALG-103")
	first := seedAssignment(t, db, course.ID, "Graph Traversal", time.Now().Add(time.Hour))
	second := seedAssignment(t, db, course.ID, "Shortest Paths", time.Now().Add(2*time.Hour))

	grade := 80.0
	require.NoError(t, repo.Create(ctx, &models.Submission{
		AssignmentID: first.ID, StudentID: student.ID, Body: "graded work",
		SubmittedAt: time.Now(), Status: models.SubmissionStatusGraded, Grade: &grade,
	}))
	require.NoError(t, repo.Create(ctx, &models.Submission{
		AssignmentID: second.ID, StudentID: student.ID, Body: "pending work",
		SubmittedAt: time.Now(), Status: models.SubmissionStatusSubmitted,
	}))

	status := models.SubmissionStatusGraded
	graded, err := repo.List(ctx, SubmissionFilter{StudentID: &student.ID, Status: &status})
	require.NoError(t, err)
	require.Len(t, graded, 1)
	require.Equal(t, first.ID, graded[0].AssignmentID)

	all, err := repo.List(ctx, SubmissionFilter{StudentID: &student.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestSubmissionRepositoryListByCourse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	course, student := seedCourse(t, db, "ALG-104")
	otherCourse, otherStudent := seedCourse(t, db, "BIO-201")

	assignment := seedAssignment(t, db, course.ID, "Graph Traversal", time.Now().Add(time.Hour))
	otherAssignment := seedAssignment(t, db, otherCourse.ID, "Cell Division", time.Now().Add(time.Hour))

	require.NoError(t, repo.Create(ctx, &models.Submission{
		AssignmentID: assignment.ID, StudentID: student.ID, Body: "work",
		SubmittedAt: time.Now(), Status: models.SubmissionStatusSubmitted,
	}))
	require.NoError(t, repo.Create(ctx, &models.Submission{
		AssignmentID: otherAssignment.ID, StudentID: otherStudent.ID, Body: "other work",
		SubmittedAt: time.Now(), Status: models.SubmissionStatusSubmitted,
	}))

	submissions, err := repo.ListByCourse(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	require.Equal(t, assignment.ID, submissions[0].AssignmentID)
	require.Equal(t, course.ID, submissions[0].Assignment.CourseID)
}
