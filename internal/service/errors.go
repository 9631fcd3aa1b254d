package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"literacytrack/internal/models"
	"literacytrack/internal/validation"
)

var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrPlanNotFound     = errors.New("intervention plan not found")
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrNotAssessed      = errors.New("student has not been assessed")
	ErrPlanNotActive    = errors.New("intervention plan is not active")
	ErrUnknownCategory  = errors.New("unknown reading category")
)

// PersistenceError is a failed store operation
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// UnitFailure records one student or category that failed inside a batch
type UnitFailure struct {
	StudentID string
	Category  models.Category
	Step      string
	Err       error
}

func (f UnitFailure) String() string {
	if f.Category != "" {
		return fmt.Sprintf("student=%s category=%s step=%s: %v", f.StudentID, f.Category, f.Step, f.Err)
	}
	return fmt.Sprintf("student=%s step=%s: %v", f.StudentID, f.Step, f.Err)
}

// PartialFailureError reports the units that failed while the rest of the run
// was still applied
type PartialFailureError struct {
	Failures []UnitFailure
}

func (e *PartialFailureError) Error() string {
	if len(e.Failures) == 1 {
		return "1 unit failed: " + e.Failures[0].String()
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%d units failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *PartialFailureError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// partialFailure returns nil when nothing failed
func partialFailure(failures []UnitFailure) error {
	if len(failures) == 0 {
		return nil
	}
	return &PartialFailureError{Failures: failures}
}

// HTTPStatus maps a service error to the status a transport layer should return
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrStudentNotFound),
		errors.Is(err, ErrPlanNotFound),
		errors.Is(err, ErrAnalysisNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotAssessed),
		errors.Is(err, ErrPlanNotActive),
		errors.Is(err, ErrUnknownCategory),
		validation.IsValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns a message safe to show to a caller. Store failures are
// redacted.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "An internal error occurred"
	}
	return err.Error()
}
