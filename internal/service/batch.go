package service

import (
	"log"
)

// BatchResult aggregates one bulk reconciliation run
type BatchResult struct {
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	Populated int           `json:"populated"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Failures  []UnitFailure `json:"-"`
}

// RepairResult aggregates one back-reference repair run
type RepairResult struct {
	Checked  int           `json:"checked"`
	Linked   int           `json:"linked"`
	Failed   int           `json:"failed"`
	Failures []UnitFailure `json:"-"`
}

// BatchService applies the reconciler to every student
type BatchService struct {
	students   StudentStore
	analyses   AnalysisStore
	reconciler *Reconciler
}

// NewBatchService creates a new batch service
func NewBatchService(students StudentStore, analyses AnalysisStore, reconciler *Reconciler) *BatchService {
	return &BatchService{
		students:   students,
		analyses:   analyses,
		reconciler: reconciler,
	}
}

// InitializeForAllStudents ensures category coverage and fills empty content
// for every graded student. Students that are not assessed are skipped. A
// failing student is counted and the run continues; the returned error is only
// set when the student list itself cannot be read.
func (s *BatchService) InitializeForAllStudents() (*BatchResult, error) {
	students, err := s.students.ListWithGradeLevel()
	if err != nil {
		return nil, persistErr("list students", err)
	}

	log.Printf("Initializing analyses for %d students", len(students))

	result := &BatchResult{}
	for i := range students {
		student := &students[i]
		if !student.IsAssessed() {
			result.Skipped++
			continue
		}

		var stats ReconcileStats
		var failures []UnitFailure

		_, ensured, err := s.reconciler.ensureAll(student.ID, student.CurrentReadingLevel())
		stats.add(ensured)
		failures = append(failures, failuresOf(err, student.ID, "ensure")...)

		_, refilled, err := s.reconciler.refill(student)
		stats.add(refilled)
		failures = append(failures, failuresOf(err, student.ID, "refill")...)

		result.Created += stats.Created
		result.Updated += stats.Updated
		result.Populated += stats.Populated

		if len(failures) > 0 {
			log.Printf("Failed to initialize student=%s: %d failures", student.ID, len(failures))
			result.Failed++
			result.Failures = append(result.Failures, failures...)
		}
	}

	log.Printf("Initialization complete: created=%d updated=%d populated=%d skipped=%d failed=%d",
		result.Created, result.Updated, result.Populated, result.Skipped, result.Failed)

	return result, nil
}

// RepairBackReferences links every analysis that has no assessment result to
// the most recent result covering its category
func (s *BatchService) RepairBackReferences() (*RepairResult, error) {
	missing, err := s.analyses.ListMissingBackReference()
	if err != nil {
		return nil, persistErr("list analyses without back-reference", err)
	}

	result := &RepairResult{}
	for _, analysis := range missing {
		result.Checked++

		repaired, err := s.reconciler.ReconcileBackReference(analysis.ID)
		if err != nil {
			log.Printf("Failed to repair back-reference analysis=%s: %v", analysis.ID, err)
			result.Failed++
			result.Failures = append(result.Failures, UnitFailure{
				StudentID: analysis.StudentID,
				Category:  analysis.Category,
				Step:      "repair",
				Err:       err,
			})
			continue
		}
		if repaired.HasBackReference() {
			result.Linked++
		}
	}

	log.Printf("Back-reference repair complete: checked=%d linked=%d failed=%d", result.Checked, result.Linked, result.Failed)
	return result, nil
}

