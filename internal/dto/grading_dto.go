package dto

// GradeRequest carries a single grading action. Grade is a pointer so a
// missing value is distinguishable from an explicit zero.
type GradeRequest struct {
	Grade    *float64 `json:"grade"`
	Feedback string   `json:"feedback" validate:"omitempty,max=2000"`
}

// GradeResponse returns the graded submission alongside derived values and
// the regrade signal.
type GradeResponse struct {
	Submission    SubmissionResponse `json:"submission"`
	Percentage    float64            `json:"percentage"`
	LetterGrade   string             `json:"letter_grade"`
	IsRegrade     bool               `json:"is_regrade"`
	PreviousGrade *float64           `json:"previous_grade"`
}

// BulkGradeEntry is one unit of a bulk grading batch.
type BulkGradeEntry struct {
	SubmissionID uint     `json:"submission_id"`
	Grade        *float64 `json:"grade"`
	Feedback     string   `json:"feedback" validate:"omitempty,max=2000"`
}

// BulkGradeRequest wraps a non-empty batch of grading entries.
type BulkGradeRequest struct {
	Entries []BulkGradeEntry `json:"entries" validate:"required,min=1,dive"`
}

// BulkGradeFailure records why one entry of a batch was rejected. Failures
// are data, not errors: one bad entry never aborts the batch.
type BulkGradeFailure struct {
	SubmissionID uint   `json:"submission_id"`
	Kind         string `json:"kind"`
	Reason       string `json:"reason"`
}

// BulkGradeResponse partitions a processed batch.
type BulkGradeResponse struct {
	Successful     []GradeResponse    `json:"successful"`
	Failed         []BulkGradeFailure `json:"failed"`
	TotalProcessed int                `json:"total_processed"`
}
