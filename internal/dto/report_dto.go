package dto

import "time"

// OverallStats aggregates every graded submission of one student. Ungraded
// submissions are excluded entirely, never counted as zero.
type OverallStats struct {
	TotalAssignments  int     `json:"total_assignments"`
	TotalEarned       float64 `json:"total_earned"`
	TotalPossible     float64 `json:"total_possible"`
	AverageGrade      float64 `json:"average_grade"`
	AveragePercentage float64 `json:"average_percentage"`
}

// AssignmentGrade is one graded assignment inside a student's breakdown.
type AssignmentGrade struct {
	AssignmentID uint       `json:"assignment_id"`
	Title        string     `json:"title"`
	Points       float64    `json:"points"`
	Grade        float64    `json:"grade"`
	Percentage   float64    `json:"percentage"`
	LetterGrade  string     `json:"letter_grade"`
	IsLate       bool       `json:"is_late"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at"`
}

// CourseGradeStats aggregates one course inside a student's breakdown.
type CourseGradeStats struct {
	Graded            int     `json:"graded"`
	TotalEarned       float64 `json:"total_earned"`
	TotalPossible     float64 `json:"total_possible"`
	AveragePercentage float64 `json:"average_percentage"`
}

// CourseGradeBreakdown groups a student's graded work by course.
type CourseGradeBreakdown struct {
	CourseID    uint              `json:"course_id"`
	CourseName  string            `json:"course_name"`
	Assignments []AssignmentGrade `json:"assignments"`
	Stats       CourseGradeStats  `json:"stats"`
}

// StudentGradesResponse is the full per-student grade summary.
type StudentGradesResponse struct {
	StudentID    uint                   `json:"student_id"`
	StudentName  string                 `json:"student_name"`
	OverallStats OverallStats           `json:"overall_stats"`
	Courses      []CourseGradeBreakdown `json:"courses"`
}

// GradebookAssignment is one column of the gradebook matrix.
type GradebookAssignment struct {
	ID      uint      `json:"id"`
	Title   string    `json:"title"`
	Points  float64   `json:"points"`
	DueDate time.Time `json:"due_date"`
}

// GradebookCell is one student × assignment intersection. Pointer fields are
// nil where nothing was submitted or graded.
type GradebookCell struct {
	AssignmentID uint     `json:"assignment_id"`
	SubmissionID *uint    `json:"submission_id"`
	Submitted    bool     `json:"submitted"`
	IsLate       bool     `json:"is_late"`
	Grade        *float64 `json:"grade"`
	Percentage   *float64 `json:"percentage"`
	LetterGrade  *string  `json:"letter_grade"`
}

// GradebookRowStats aggregates one student's row.
type GradebookRowStats struct {
	Submitted         int     `json:"submitted"`
	Graded            int     `json:"graded"`
	AveragePercentage float64 `json:"average_percentage"`
}

// GradebookRow is one student's row across every active assignment.
type GradebookRow struct {
	StudentID   uint              `json:"student_id"`
	StudentName string            `json:"student_name"`
	Cells       []GradebookCell   `json:"cells"`
	Stats       GradebookRowStats `json:"stats"`
}

// GradebookStats aggregates the whole course.
type GradebookStats struct {
	ClassAverage    float64 `json:"class_average"`
	SubmissionRate  float64 `json:"submission_rate"`
	GradingProgress float64 `json:"grading_progress"`
}

// CourseGradebookResponse is the students × assignments matrix for a course.
type CourseGradebookResponse struct {
	CourseID    uint                  `json:"course_id"`
	CourseName  string                `json:"course_name"`
	Assignments []GradebookAssignment `json:"assignments"`
	Students    []GradebookRow        `json:"students"`
	Stats       GradebookStats        `json:"stats"`
	GeneratedAt time.Time             `json:"generated_at"`
}
