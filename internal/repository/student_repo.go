package repository

import (
	"database/sql"
	"fmt"

	"literacytrack/internal/database"
	"literacytrack/internal/models"
)

const studentColumns = "id, external_number, name, grade_level, reading_level, created_at, updated_at"

// StudentRepository reads the student directory and records reading levels
type StudentRepository struct {
	db database.DBTX
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db database.DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a student. The directory normally owns these rows; this is
// used by imports and tests.
func (r *StudentRepository) Create(student *models.Student) error {
	if student.ID == "" {
		student.ID = newID()
	}
	student.CreatedAt = now()
	student.UpdatedAt = student.CreatedAt

	var level sql.NullString
	if student.ReadingLevel != nil {
		level = sql.NullString{String: string(*student.ReadingLevel), Valid: true}
	}

	query := "INSERT INTO students (" + studentColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query,
		student.ID,
		student.ExternalNumber,
		student.Name,
		nullString(student.GradeLevel),
		level,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// GetByID retrieves a student by canonical id
func (r *StudentRepository) GetByID(id string) (*models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE id = ?"
	return r.getOne(query, id)
}

// GetByExternalNumber retrieves a student by enrollment number
func (r *StudentRepository) GetByExternalNumber(number string) (*models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE external_number = ?"
	return r.getOne(query, number)
}

// ListAll retrieves every student ordered by name
func (r *StudentRepository) ListAll() ([]models.Student, error) {
	query := "SELECT " + studentColumns + " FROM students ORDER BY name ASC, id ASC"
	return r.list(query)
}

// ListWithGradeLevel retrieves the students that have a grade level assigned
func (r *StudentRepository) ListWithGradeLevel() ([]models.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE grade_level IS NOT NULL AND grade_level <> ''
		ORDER BY name ASC, id ASC
	`
	return r.list(query)
}

// UpdateReadingLevel sets the student's reading level
func (r *StudentRepository) UpdateReadingLevel(id string, level models.ReadingLevel) error {
	query := "UPDATE students SET reading_level = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, string(level), now(), id); err != nil {
		return fmt.Errorf("failed to update reading level: %w", err)
	}
	return nil
}

func (r *StudentRepository) getOne(query string, arg interface{}) (*models.Student, error) {
	student, err := scanStudent(r.db.QueryRow(query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

func (r *StudentRepository) list(query string) ([]models.Student, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, *student)
	}
	return students, rows.Err()
}

func scanStudent(row rowScanner) (*models.Student, error) {
	var student models.Student
	var gradeLevel, readingLevel sql.NullString
	if err := row.Scan(
		&student.ID,
		&student.ExternalNumber,
		&student.Name,
		&gradeLevel,
		&readingLevel,
		&student.CreatedAt,
		&student.UpdatedAt,
	); err != nil {
		return nil, err
	}

	student.GradeLevel = stringPtr(gradeLevel)
	if readingLevel.Valid {
		level := models.ReadingLevel(readingLevel.String)
		student.ReadingLevel = &level
	}
	return &student, nil
}
