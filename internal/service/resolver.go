package service

import (
	"strings"

	"github.com/google/uuid"

	"literacytrack/internal/models"
)

// StudentResolver turns either form of student reference into the canonical id.
// No other component looks at which form it was given.
type StudentResolver struct {
	students StudentStore
}

// NewStudentResolver creates a new resolver
func NewStudentResolver(students StudentStore) *StudentResolver {
	return &StudentResolver{students: students}
}

// Resolve returns the canonical id for rawID
func (r *StudentResolver) Resolve(rawID string) (string, error) {
	student, err := r.ResolveStudent(rawID)
	if err != nil {
		return "", err
	}
	return student.ID, nil
}

// ResolveStudent returns the student record referenced by rawID. A raw id in
// canonical form is looked up directly; anything not found that way is tried
// as an enrollment number.
func (r *StudentResolver) ResolveStudent(rawID string) (*models.Student, error) {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return nil, ErrStudentNotFound
	}

	if _, err := uuid.Parse(rawID); err == nil {
		student, err := r.students.GetByID(rawID)
		if err != nil {
			return nil, persistErr("look up student", err)
		}
		if student != nil {
			return student, nil
		}
	}

	student, err := r.students.GetByExternalNumber(rawID)
	if err != nil {
		return nil, persistErr("look up student", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}
