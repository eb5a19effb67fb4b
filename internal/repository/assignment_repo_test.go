package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/models"
)

func TestAssignmentRepositoryListActiveOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	course, _ := seedCourse(t, db, "ALG-201")
	active := seedAssignment(t, db, course.ID, "Graph Traversal", time.Now().Add(time.Hour))

	retired := seedAssignment(t, db, course.ID, "Old Homework", time.Now().Add(2*time.Hour))
	retired.Status = models.AssignmentStatusDeactivated
	require.NoError(t, repo.Update(ctx, &retired))

	assignments, err := repo.List(ctx, AssignmentFilter{CourseID: &course.ID, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, active.ID, assignments[0].ID)

	assignments, err = repo.List(ctx, AssignmentFilter{CourseID: &course.ID})
	require.NoError(t, err)
	require.Len(t, assignments, 2)
}

func TestAssignmentRepositoryListOrdersByDueDate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	course, _ := seedCourse(t, db, "ALG-202")
	later := seedAssignment(t, db, course.ID, "Later", time.Now().Add(48*time.Hour))
	sooner := seedAssignment(t, db, course.ID, "Sooner", time.Now().Add(24*time.Hour))

	assignments, err := repo.List(ctx, AssignmentFilter{CourseID: &course.ID})
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	require.Equal(t, sooner.ID, assignments[0].ID)
	require.Equal(t, later.ID, assignments[1].ID)
}

func TestAssignmentRepositoryGetByIDPreloadsCourse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	course, _ := seedCourse(t, db, "ALG-203")
	assignment := seedAssignment(t, db, course.ID, "Graph Traversal", time.Now().Add(time.Hour))

	loaded, err := repo.GetByID(ctx, assignment.ID)
	require.NoError(t, err)
	require.Equal(t, course.ID, loaded.Course.ID)
	require.Equal(t, course.TeacherID, loaded.Course.TeacherID)
}
