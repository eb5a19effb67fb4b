// Package apperr defines the stable error taxonomy shared by the core
// services. Every error carries a machine-readable kind plus a message
// parameterized with the concrete offending values, so handlers can map
// failures to precise responses without re-deriving context.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable classification of a core failure.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindNotEnrolled        Kind = "not_enrolled"
	KindSubmissionClosed   Kind = "submission_closed"
	KindInvalidGradeFormat Kind = "invalid_grade_format"
	KindInvalidGradeRange  Kind = "invalid_grade_range"
)

// Error pairs a Kind with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, or "" when err is not a taxonomy error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
