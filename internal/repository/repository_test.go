package repository

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"literacytrack/internal/database"
	"literacytrack/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo_test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createStudent(t *testing.T, repo *StudentRepository, number string, level *models.ReadingLevel) *models.Student {
	t.Helper()
	grade := "Grade 2"
	student := &models.Student{
		ExternalNumber: number,
		Name:           "Student " + number,
		GradeLevel:     &grade,
		ReadingLevel:   level,
	}
	if err := repo.Create(student); err != nil {
		t.Fatalf("Failed to create student: %v", err)
	}
	return student
}

func TestStudentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)

	level := models.ReadingLevelDeveloping
	student := createStudent(t, repo, "2024-001", &level)

	byID, err := repo.GetByID(student.ID)
	if err != nil || byID == nil {
		t.Fatalf("GetByID() = %v, %v", byID, err)
	}
	if byID.CurrentReadingLevel() != models.ReadingLevelDeveloping {
		t.Errorf("reading level = %q", byID.CurrentReadingLevel())
	}

	byNumber, err := repo.GetByExternalNumber("2024-001")
	if err != nil || byNumber == nil || byNumber.ID != student.ID {
		t.Fatalf("GetByExternalNumber() = %v, %v", byNumber, err)
	}

	missing, err := repo.GetByID("does-not-exist")
	if err != nil || missing != nil {
		t.Errorf("GetByID(missing) = %v, %v, want nil, nil", missing, err)
	}

	dup := &models.Student{ExternalNumber: "2024-001", Name: "Copy"}
	if err := repo.Create(dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate external number error = %v, want ErrDuplicate", err)
	}

	noGrade := &models.Student{ExternalNumber: "2024-002", Name: "No Grade"}
	if err := repo.Create(noGrade); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	graded, err := repo.ListWithGradeLevel()
	if err != nil {
		t.Fatalf("ListWithGradeLevel() error = %v", err)
	}
	if len(graded) != 1 || graded[0].ID != student.ID {
		t.Errorf("ListWithGradeLevel() = %v, want only %s", graded, student.ID)
	}

	if err := repo.UpdateReadingLevel(noGrade.ID, models.ReadingLevelAtGradeLevel); err != nil {
		t.Fatalf("UpdateReadingLevel() error = %v", err)
	}
	updated, _ := repo.GetByID(noGrade.ID)
	if updated.CurrentReadingLevel() != models.ReadingLevelAtGradeLevel {
		t.Errorf("reading level after update = %q", updated.CurrentReadingLevel())
	}
}

func TestAnalysisRepositoryUniqueness(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalysisRepository(db)

	first := &models.PrescriptiveAnalysis{
		StudentID:    "student-1",
		Category:     models.CategoryDecoding,
		ReadingLevel: models.ReadingLevelDeveloping,
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second := &models.PrescriptiveAnalysis{
		StudentID:    "student-1",
		Category:     models.CategoryDecoding,
		ReadingLevel: models.ReadingLevelDeveloping,
	}
	if err := repo.Create(second); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second Create() error = %v, want ErrDuplicate", err)
	}

	stored, err := repo.GetByStudentAndCategory("student-1", models.CategoryDecoding)
	if err != nil || stored == nil {
		t.Fatalf("GetByStudentAndCategory() = %v, %v", stored, err)
	}
	if stored.Strengths == nil || len(stored.Strengths) != 0 {
		t.Errorf("empty strengths should load as an empty list, got %#v", stored.Strengths)
	}
}

func TestAnalysisRepositoryFillEmptyContent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalysisRepository(db)

	analysis := &models.PrescriptiveAnalysis{
		StudentID:    "student-1",
		Category:     models.CategoryWordRecognition,
		ReadingLevel: models.ReadingLevelDeveloping,
		Strengths:    models.StringList([]string{"Teacher note"}),
	}
	if err := repo.Create(analysis); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	filled, err := repo.FillEmptyContent(analysis.ID,
		[]string{"Derived strength"},
		[]string{"Derived weakness"},
		[]string{"Derived recommendation"},
	)
	if err != nil {
		t.Fatalf("FillEmptyContent() error = %v", err)
	}
	if !filled {
		t.Fatal("FillEmptyContent() = false, want true")
	}

	stored, _ := repo.GetByID(analysis.ID)
	if !reflect.DeepEqual([]string(stored.Strengths), []string{"Teacher note"}) {
		t.Errorf("strengths = %v, want original teacher note", stored.Strengths)
	}
	if !reflect.DeepEqual([]string(stored.Weaknesses), []string{"Derived weakness"}) {
		t.Errorf("weaknesses = %v", stored.Weaknesses)
	}
	if !reflect.DeepEqual([]string(stored.Recommendations), []string{"Derived recommendation"}) {
		t.Errorf("recommendations = %v", stored.Recommendations)
	}

	// Nothing left to fill
	filled, err = repo.FillEmptyContent(analysis.ID, []string{"x"}, []string{"y"}, []string{"z"})
	if err != nil || filled {
		t.Errorf("second FillEmptyContent() = %v, %v, want false, nil", filled, err)
	}

	filled, err = repo.FillEmptyContent(analysis.ID, nil, nil, nil)
	if err != nil || filled {
		t.Errorf("FillEmptyContent(nothing) = %v, %v, want false, nil", filled, err)
	}
}

func TestAnalysisRepositoryConditionalUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalysisRepository(db)

	analysis := &models.PrescriptiveAnalysis{
		StudentID:    "student-1",
		Category:     models.CategoryAlphabetKnowledge,
		ReadingLevel: models.ReadingLevelLowEmerging,
	}
	if err := repo.Create(analysis); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if ok, err := repo.UpdateReadingLevel(analysis.ID, models.ReadingLevelLowEmerging); err != nil || ok {
		t.Errorf("UpdateReadingLevel(same) = %v, %v, want false", ok, err)
	}
	if ok, err := repo.UpdateReadingLevel(analysis.ID, models.ReadingLevelDeveloping); err != nil || !ok {
		t.Errorf("UpdateReadingLevel(new) = %v, %v, want true", ok, err)
	}

	missing, err := repo.ListMissingBackReference()
	if err != nil || len(missing) != 1 {
		t.Fatalf("ListMissingBackReference() = %v, %v", missing, err)
	}

	if ok, err := repo.SetAssessmentResultIfMissing(analysis.ID, "result-1"); err != nil || !ok {
		t.Fatalf("SetAssessmentResultIfMissing() = %v, %v, want true", ok, err)
	}
	if ok, err := repo.SetAssessmentResultIfMissing(analysis.ID, "result-2"); err != nil || ok {
		t.Errorf("second SetAssessmentResultIfMissing() = %v, %v, want false", ok, err)
	}

	stored, _ := repo.GetByID(analysis.ID)
	if !stored.HasBackReference() || *stored.AssessmentResultID != "result-1" {
		t.Errorf("back-reference = %v, want result-1", stored.AssessmentResultID)
	}
}

func TestAnalysisRepositoryListSortedByCategory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalysisRepository(db)

	for _, category := range models.RequiredCategories() {
		analysis := &models.PrescriptiveAnalysis{
			StudentID:    "student-1",
			Category:     category,
			ReadingLevel: models.ReadingLevelDeveloping,
		}
		if err := repo.Create(analysis); err != nil {
			t.Fatalf("Create(%s) error = %v", category, err)
		}
	}

	analyses, err := repo.ListForStudent("student-1")
	if err != nil {
		t.Fatalf("ListForStudent() error = %v", err)
	}
	want := []models.Category{
		models.CategoryAlphabetKnowledge,
		models.CategoryDecoding,
		models.CategoryPhonologicalAwareness,
		models.CategoryReadingComprehension,
		models.CategoryWordRecognition,
	}
	if len(analyses) != len(want) {
		t.Fatalf("got %d analyses, want %d", len(analyses), len(want))
	}
	for i, a := range analyses {
		if a.Category != want[i] {
			t.Errorf("analyses[%d].Category = %q, want %q", i, a.Category, want[i])
		}
	}
}

func TestAssessmentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssessmentRepository(db)

	older := &models.AssessmentResult{
		StudentID:    "student-1",
		Kind:         models.AssessmentPre,
		ReadingLevel: models.ReadingLevelLowEmerging,
		CategoryResults: []models.CategoryResult{
			{Category: models.CategoryDecoding, TotalQuestions: 4, CorrectAnswers: 1},
		},
	}
	older.ScoreCategories(75)
	if err := repo.Create(older); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newer := &models.AssessmentResult{
		StudentID:    "student-1",
		Kind:         models.AssessmentPost,
		ReadingLevel: models.ReadingLevelDeveloping,
		CategoryResults: []models.CategoryResult{
			{Category: models.CategoryDecoding, TotalQuestions: 4, CorrectAnswers: 3},
		},
		TakenAt: older.TakenAt.Add(1e9),
	}
	newer.ScoreCategories(75)
	if err := repo.Create(newer); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	latest, err := repo.GetLatestForStudent("student-1")
	if err != nil || latest == nil {
		t.Fatalf("GetLatestForStudent() = %v, %v", latest, err)
	}
	if latest.ID != newer.ID {
		t.Errorf("latest = %s, want %s", latest.ID, newer.ID)
	}
	if score, ok := latest.CategoryScore(models.CategoryDecoding); !ok || score != 75 {
		t.Errorf("CategoryScore(Decoding) = %v, %v, want 75", score, ok)
	}

	if ok, err := repo.MarkReadingLevelPropagated(newer.ID); err != nil || !ok {
		t.Fatalf("MarkReadingLevelPropagated() = %v, %v, want true", ok, err)
	}
	if ok, err := repo.MarkReadingLevelPropagated(newer.ID); err != nil || ok {
		t.Errorf("second MarkReadingLevelPropagated() = %v, %v, want false", ok, err)
	}

	none, err := repo.GetLatestForStudent("student-2")
	if err != nil || none != nil {
		t.Errorf("GetLatestForStudent(unknown) = %v, %v, want nil, nil", none, err)
	}
}

func TestPlanAndProgressRepositories(t *testing.T) {
	db := setupTestDB(t)
	plans := NewPlanRepository(db)
	progressRepo := NewProgressRepository(db)

	plan := &models.InterventionPlan{
		StudentID:     "student-1",
		Category:      models.CategoryDecoding,
		PassThreshold: models.DefaultPassThreshold,
		Status:        models.PlanStatusActive,
		Questions: []models.QuestionSpec{
			{Prompt: "Read: cat", QuestionType: "oral_reading"},
			{Prompt: "Read: dog", QuestionType: "oral_reading"},
		},
	}
	if err := plans.Create(plan); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	count, err := plans.CountActiveForStudent("student-1")
	if err != nil || count != 1 {
		t.Errorf("CountActiveForStudent() = %d, %v, want 1", count, err)
	}

	progress := &models.InterventionProgress{PlanID: plan.ID, StudentID: plan.StudentID, TotalActivities: 2}
	if err := progressRepo.Create(progress); err != nil {
		t.Fatalf("Create progress error = %v", err)
	}
	if err := progressRepo.Create(&models.InterventionProgress{PlanID: plan.ID, StudentID: plan.StudentID}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second progress Create() error = %v, want ErrDuplicate", err)
	}

	progress.CompletedActivities = 2
	progress.CorrectAnswers = 2
	progress.Recompute(plan.PassThreshold)
	if err := progressRepo.Update(progress); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stored, err := progressRepo.GetByPlanID(plan.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetByPlanID() = %v, %v", stored, err)
	}
	if stored.PercentComplete != 100 || !stored.PassedThreshold {
		t.Errorf("stored progress = %+v", stored)
	}

	if ok, err := plans.TransitionStatus(plan.ID, models.PlanStatusActive, models.PlanStatusCompleted); err != nil || !ok {
		t.Fatalf("TransitionStatus() = %v, %v, want true", ok, err)
	}
	if ok, err := plans.TransitionStatus(plan.ID, models.PlanStatusActive, models.PlanStatusCompleted); err != nil || ok {
		t.Errorf("repeated TransitionStatus() = %v, %v, want false", ok, err)
	}
	if ok, err := plans.UpdateQuestions(plan.ID, nil); err != nil || ok {
		t.Errorf("UpdateQuestions(completed plan) = %v, %v, want false", ok, err)
	}

	loaded, _ := plans.GetByID(plan.ID)
	if loaded.Status != models.PlanStatusCompleted || len(loaded.Questions) != 2 {
		t.Errorf("loaded plan = %+v", loaded)
	}
}
