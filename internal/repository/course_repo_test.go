package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCourseRepositoryEnrollmentQueries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	course, student := seedCourse(t, db, "ALG-301")

	enrolled, err := repo.IsEnrolled(ctx, course.ID, student.ID)
	require.NoError(t, err)
	require.True(t, enrolled)

	enrolled, err = repo.IsEnrolled(ctx, course.ID, 9999)
	require.NoError(t, err)
	require.False(t, enrolled)

	teaches, err := repo.TeachesStudent(ctx, course.TeacherID, student.ID)
	require.NoError(t, err)
	require.True(t, teaches)

	teaches, err = repo.TeachesStudent(ctx, 9999, student.ID)
	require.NoError(t, err)
	require.False(t, teaches)
}

func TestCourseRepositoryListByStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	course, student := seedCourse(t, db, "ALG-302")
	seedCourse(t, db, "BIO-401")

	courses, err := repo.ListByStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Equal(t, course.ID, courses[0].ID)
}

func TestCourseRepositoryGetByIDWithStudents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	course, student := seedCourse(t, db, "ALG-303")

	loaded, err := repo.GetByIDWithStudents(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Students, 1)
	require.Equal(t, student.ID, loaded.Students[0].ID)
}
