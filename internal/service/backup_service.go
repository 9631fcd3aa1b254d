package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"literacytrack/internal/models"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string                        `json:"version"`
	ExportedAt   time.Time                     `json:"exported_at"`
	DatabaseType string                        `json:"database_type"`
	Students     []StudentBackup               `json:"students"`
	Assessments  []models.AssessmentResult     `json:"assessment_results"`
	Analyses     []models.PrescriptiveAnalysis `json:"prescriptive_analyses"`
	Plans        []models.InterventionPlan     `json:"intervention_plans"`
	Progress     []models.InterventionProgress `json:"intervention_progress"`
}

// StudentBackup represents a student record for backup
type StudentBackup struct {
	ID             string    `json:"id"`
	ExternalNumber string    `json:"external_number"`
	Name           string    `json:"name"`
	GradeLevel     *string   `json:"grade_level"`
	ReadingLevel   *string   `json:"reading_level"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BackupSource lists every record of each collection
type BackupSource struct {
	Students    interface{ ListAll() ([]models.Student, error) }
	Assessments interface {
		ListAll() ([]models.AssessmentResult, error)
	}
	Analyses interface {
		ListAll() ([]models.PrescriptiveAnalysis, error)
	}
	Plans interface {
		ListAll() ([]models.InterventionPlan, error)
	}
	Progress interface {
		ListAll() ([]models.InterventionProgress, error)
	}
}

// BackupService exports the pipeline's collections to JSON
type BackupService struct {
	source       BackupSource
	databaseType string
}

// NewBackupService creates a new backup service
func NewBackupService(source BackupSource, databaseType string) *BackupService {
	return &BackupService{source: source, databaseType: databaseType}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(file)
	if err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	log.Printf("Exported: %d students, %d assessment results, %d analyses, %d plans, %d progress records",
		len(backup.Students), len(backup.Assessments), len(backup.Analyses),
		len(backup.Plans), len(backup.Progress))

	return nil
}

// ExportToWriter writes the backup as indented JSON to w
func (s *BackupService) ExportToWriter(w io.Writer) (*BackupData, error) {
	backup, err := s.collect()
	if err != nil {
		return nil, err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

func (s *BackupService) collect() (*BackupData, error) {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.databaseType,
	}

	students, err := s.source.Students.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to export students: %w", err)
	}
	for _, st := range students {
		backup.Students = append(backup.Students, studentBackup(st))
	}

	if backup.Assessments, err = s.source.Assessments.ListAll(); err != nil {
		return nil, fmt.Errorf("failed to export assessment results: %w", err)
	}
	if backup.Analyses, err = s.source.Analyses.ListAll(); err != nil {
		return nil, fmt.Errorf("failed to export analyses: %w", err)
	}
	if backup.Plans, err = s.source.Plans.ListAll(); err != nil {
		return nil, fmt.Errorf("failed to export intervention plans: %w", err)
	}
	if backup.Progress, err = s.source.Progress.ListAll(); err != nil {
		return nil, fmt.Errorf("failed to export intervention progress: %w", err)
	}

	return backup, nil
}

func studentBackup(st models.Student) StudentBackup {
	b := StudentBackup{
		ID:             st.ID,
		ExternalNumber: st.ExternalNumber,
		Name:           st.Name,
		GradeLevel:     st.GradeLevel,
		CreatedAt:      st.CreatedAt,
		UpdatedAt:      st.UpdatedAt,
	}
	if st.ReadingLevel != nil {
		level := string(*st.ReadingLevel)
		b.ReadingLevel = &level
	}
	return b
}
