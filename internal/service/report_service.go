package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/apperr"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/grading"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// ReportService builds per-student grade summaries and per-course gradebooks
// by folding over the raw submission set. It is a pure read-side consumer.
type ReportService interface {
	StudentGrades(ctx context.Context, studentID uint, principal models.Principal) (dto.StudentGradesResponse, error)
	CourseGradebook(ctx context.Context, courseID uint, principal models.Principal) (dto.CourseGradebookResponse, error)
}

type reportService struct {
	users       repository.UserRepository
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	access      AccessEvaluator
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewReportService constructs the reporting aggregator.
func NewReportService(users repository.UserRepository, courses repository.CourseRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, access AccessEvaluator, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReportService {
	return &reportService{
		users:       users,
		courses:     courses,
		assignments: assignments,
		submissions: submissions,
		access:      access,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "report_service").Logger(),
		now:         time.Now,
	}
}

func gradebookCacheKey(courseID uint) string {
	return fmt.Sprintf("gradebook:course:%d", courseID)
}

// StudentGrades folds every graded submission of the student into overall
// stats plus a per-course breakdown. Ungraded submissions are excluded from
// the fold entirely, never treated as zero.
func (s *reportService) StudentGrades(ctx context.Context, studentID uint, principal models.Principal) (dto.StudentGradesResponse, error) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentGradesResponse{}, apperr.New(apperr.KindNotFound, "student %d not found", studentID)
		}
		return dto.StudentGradesResponse{}, err
	}
	if student.Role != models.RoleStudent {
		return dto.StudentGradesResponse{}, apperr.New(apperr.KindNotFound, "student %d not found", studentID)
	}

	if err := s.access.CanViewStudentGrades(ctx, principal, studentID); err != nil {
		return dto.StudentGradesResponse{}, err
	}

	status := models.SubmissionStatusGraded
	graded, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID, Status: &status})
	if err != nil {
		return dto.StudentGradesResponse{}, err
	}

	courses, err := s.courses.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentGradesResponse{}, err
	}

	return buildStudentGrades(student, courses, graded), nil
}

func buildStudentGrades(student models.User, courses []models.Course, graded []models.Submission) dto.StudentGradesResponse {
	courseNames := make(map[uint]string, len(courses))
	for _, course := range courses {
		courseNames[course.ID] = course.Name
	}

	byCourse := map[uint][]dto.AssignmentGrade{}
	courseStats := map[uint]*dto.CourseGradeStats{}
	courseOrder := []uint{}

	overall := dto.OverallStats{}
	var percentageSum float64

	for _, submission := range graded {
		if submission.Grade == nil {
			continue
		}

		grade := *submission.Grade
		points := submission.Assignment.Points
		derived := grading.Derive(grade, points)

		overall.TotalAssignments++
		overall.TotalEarned += grade
		overall.TotalPossible += points
		percentageSum += derived.Percentage

		courseID := submission.Assignment.CourseID
		if _, seen := courseStats[courseID]; !seen {
			courseStats[courseID] = &dto.CourseGradeStats{}
			courseOrder = append(courseOrder, courseID)
		}

		byCourse[courseID] = append(byCourse[courseID], dto.AssignmentGrade{
			AssignmentID: submission.AssignmentID,
			Title:        submission.Assignment.Title,
			Points:       points,
			Grade:        grade,
			Percentage:   derived.Percentage,
			LetterGrade:  derived.LetterGrade,
			IsLate:       submission.IsLate,
			SubmittedAt:  submission.SubmittedAt,
			GradedAt:     submission.GradedAt,
		})

		stats := courseStats[courseID]
		stats.Graded++
		stats.TotalEarned += grade
		stats.TotalPossible += points
	}

	if overall.TotalAssignments > 0 {
		overall.AverageGrade = round2(overall.TotalEarned / float64(overall.TotalAssignments))
		overall.AveragePercentage = round2(percentageSum / float64(overall.TotalAssignments))
	}

	breakdown := make([]dto.CourseGradeBreakdown, 0, len(courseOrder))
	for _, courseID := range courseOrder {
		stats := courseStats[courseID]
		if stats.TotalPossible > 0 {
			stats.AveragePercentage = grading.Percentage(stats.TotalEarned, stats.TotalPossible)
		}
		breakdown = append(breakdown, dto.CourseGradeBreakdown{
			CourseID:    courseID,
			CourseName:  courseNames[courseID],
			Assignments: byCourse[courseID],
			Stats:       *stats,
		})
	}

	return dto.StudentGradesResponse{
		StudentID:    student.ID,
		StudentName:  student.Name,
		OverallStats: overall,
		Courses:      breakdown,
	}
}

// CourseGradebook produces the enrolled-students × active-assignments matrix
// with per-cell submission state and course-wide aggregates. Results are
// cached per course with a TTL; grading invalidates the key.
func (s *reportService) CourseGradebook(ctx context.Context, courseID uint, principal models.Principal) (dto.CourseGradebookResponse, error) {
	course, err := s.courses.GetByIDWithStudents(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseGradebookResponse{}, apperr.New(apperr.KindNotFound, "course %d not found", courseID)
		}
		return dto.CourseGradebookResponse{}, err
	}

	if err := s.access.CanViewGradebook(ctx, principal, course); err != nil {
		return dto.CourseGradebookResponse{}, err
	}

	cacheKey := gradebookCacheKey(courseID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.CourseGradebookResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("course_id", courseID).Msg("gradebook cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read gradebook cache")
		}
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{CourseID: &courseID, ActiveOnly: true})
	if err != nil {
		return dto.CourseGradebookResponse{}, err
	}

	submissions, err := s.submissions.ListByCourse(ctx, courseID)
	if err != nil {
		return dto.CourseGradebookResponse{}, err
	}

	response := s.buildGradebook(course, assignments, submissions)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store gradebook cache")
			}
		}
	}

	return response, nil
}

func (s *reportService) buildGradebook(course models.Course, assignments []models.Assignment, submissions []models.Submission) dto.CourseGradebookResponse {
	type cellKey struct {
		studentID    uint
		assignmentID uint
	}

	cells := make(map[cellKey]models.Submission, len(submissions))
	for _, submission := range submissions {
		cells[cellKey{submission.StudentID, submission.AssignmentID}] = submission
	}

	columns := make([]dto.GradebookAssignment, 0, len(assignments))
	for _, assignment := range assignments {
		columns = append(columns, dto.GradebookAssignment{
			ID:      assignment.ID,
			Title:   assignment.Title,
			Points:  assignment.Points,
			DueDate: assignment.DueDate,
		})
	}

	rows := make([]dto.GradebookRow, 0, len(course.Students))
	totalSubmitted := 0
	totalGraded := 0
	var classPercentageSum float64
	classPercentageCount := 0

	for _, student := range course.Students {
		row := dto.GradebookRow{
			StudentID:   student.ID,
			StudentName: student.Name,
			Cells:       make([]dto.GradebookCell, 0, len(assignments)),
		}

		var percentageSum float64

		for _, assignment := range assignments {
			cell := dto.GradebookCell{AssignmentID: assignment.ID}

			if submission, ok := cells[cellKey{student.ID, assignment.ID}]; ok {
				submissionID := submission.ID
				cell.SubmissionID = &submissionID
				cell.Submitted = true
				cell.IsLate = submission.IsLate
				row.Stats.Submitted++
				totalSubmitted++

				if submission.IsGraded() {
					derived := grading.Derive(*submission.Grade, assignment.Points)
					cell.Grade = submission.Grade
					percentage := derived.Percentage
					cell.Percentage = &percentage
					letter := derived.LetterGrade
					cell.LetterGrade = &letter
					row.Stats.Graded++
					totalGraded++
					percentageSum += percentage
				}
			}

			row.Cells = append(row.Cells, cell)
		}

		if row.Stats.Graded > 0 {
			row.Stats.AveragePercentage = round2(percentageSum / float64(row.Stats.Graded))
		}

		// Class average is the mean of the students' non-zero averages, so
		// students with no graded work yet do not drag the class down.
		if row.Stats.AveragePercentage > 0 {
			classPercentageSum += row.Stats.AveragePercentage
			classPercentageCount++
		}

		rows = append(rows, row)
	}

	stats := dto.GradebookStats{}
	if classPercentageCount > 0 {
		stats.ClassAverage = round2(classPercentageSum / float64(classPercentageCount))
	}
	possible := len(course.Students) * len(assignments)
	if possible > 0 {
		stats.SubmissionRate = round2(float64(totalSubmitted) / float64(possible) * 100)
	}
	if totalSubmitted > 0 {
		stats.GradingProgress = round2(float64(totalGraded) / float64(totalSubmitted) * 100)
	}

	return dto.CourseGradebookResponse{
		CourseID:    course.ID,
		CourseName:  course.Name,
		Assignments: columns,
		Students:    rows,
		Stats:       stats,
		GeneratedAt: s.now().UTC(),
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
