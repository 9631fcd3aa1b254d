package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"literacytrack/internal/models"
	"literacytrack/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

type fakeStudentStore struct {
	mu       sync.Mutex
	students map[string]*models.Student
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{students: make(map[string]*models.Student)}
}

func (f *fakeStudentStore) add(number, name string, level models.ReadingLevel, grade string) *models.Student {
	f.mu.Lock()
	defer f.mu.Unlock()
	student := &models.Student{ID: uuid.NewString(), ExternalNumber: number, Name: name}
	if level != "" {
		l := level
		student.ReadingLevel = &l
	}
	if grade != "" {
		g := grade
		student.GradeLevel = &g
	}
	f.students[student.ID] = student
	return student
}

func (f *fakeStudentStore) GetByID(id string) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.students[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStudentStore) GetByExternalNumber(number string) (*models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.students {
		if s.ExternalNumber == number {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStudentStore) ListAll() ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Student
	for _, s := range f.students {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStudentStore) ListWithGradeLevel() ([]models.Student, error) {
	all, _ := f.ListAll()
	var out []models.Student
	for _, s := range all {
		if s.HasGradeLevel() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStudentStore) UpdateReadingLevel(id string, level models.ReadingLevel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[id]
	if !ok {
		return nil
	}
	l := level
	s.ReadingLevel = &l
	return nil
}

type fakeAssessmentStore struct {
	mu      sync.Mutex
	results []*models.AssessmentResult
}

func (f *fakeAssessmentStore) Create(result *models.AssessmentResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	cp := *result
	f.results = append(f.results, &cp)
	return nil
}

func (f *fakeAssessmentStore) GetByID(id string) (*models.AssessmentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.results {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

// ListForStudent returns results newest first; later inserts win ties
func (f *fakeAssessmentStore) ListForStudent(studentID string) ([]models.AssessmentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AssessmentResult
	for i := len(f.results) - 1; i >= 0; i-- {
		if f.results[i].StudentID == studentID {
			out = append(out, *f.results[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	return out, nil
}

func (f *fakeAssessmentStore) GetLatestForStudent(studentID string) (*models.AssessmentResult, error) {
	results, _ := f.ListForStudent(studentID)
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

func (f *fakeAssessmentStore) MarkReadingLevelPropagated(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.results {
		if r.ID == id && !r.ReadingLevelPropagated {
			r.ReadingLevelPropagated = true
			return true, nil
		}
	}
	return false, nil
}

type fakeAnalysisStore struct {
	mu       sync.Mutex
	analyses map[string]*models.PrescriptiveAnalysis
	// failCategory makes every write for that category fail
	failCategory models.Category
	creates      int
}

func newFakeAnalysisStore() *fakeAnalysisStore {
	return &fakeAnalysisStore{analyses: make(map[string]*models.PrescriptiveAnalysis)}
}

func cloneAnalysis(a *models.PrescriptiveAnalysis) *models.PrescriptiveAnalysis {
	cp := *a
	cp.Strengths = models.StringList(a.Strengths)
	cp.Weaknesses = models.StringList(a.Weaknesses)
	cp.Recommendations = models.StringList(a.Recommendations)
	return &cp
}

func (f *fakeAnalysisStore) Create(analysis *models.PrescriptiveAnalysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if analysis.Category == f.failCategory {
		return errStoreDown
	}
	for _, a := range f.analyses {
		if a.StudentID == analysis.StudentID && a.Category == analysis.Category {
			return repository.ErrDuplicate
		}
	}
	if analysis.ID == "" {
		analysis.ID = uuid.NewString()
	}
	f.creates++
	f.analyses[analysis.ID] = cloneAnalysis(analysis)
	return nil
}

func (f *fakeAnalysisStore) GetByID(id string) (*models.PrescriptiveAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.analyses[id]; ok {
		return cloneAnalysis(a), nil
	}
	return nil, nil
}

func (f *fakeAnalysisStore) GetByStudentAndCategory(studentID string, category models.Category) (*models.PrescriptiveAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.analyses {
		if a.StudentID == studentID && a.Category == category {
			return cloneAnalysis(a), nil
		}
	}
	return nil, nil
}

func (f *fakeAnalysisStore) ListForStudent(studentID string) ([]models.PrescriptiveAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PrescriptiveAnalysis
	for _, a := range f.analyses {
		if a.StudentID == studentID {
			out = append(out, *cloneAnalysis(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (f *fakeAnalysisStore) ListMissingBackReference() ([]models.PrescriptiveAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PrescriptiveAnalysis
	for _, a := range f.analyses {
		if !a.HasBackReference() {
			out = append(out, *cloneAnalysis(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (f *fakeAnalysisStore) UpdateReadingLevel(id string, level models.ReadingLevel) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.analyses[id]
	if !ok || a.ReadingLevel == level {
		return false, nil
	}
	if a.Category == f.failCategory {
		return false, errStoreDown
	}
	a.ReadingLevel = level
	return true, nil
}

func (f *fakeAnalysisStore) FillEmptyContent(id string, strengths, weaknesses, recommendations []string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.analyses[id]
	if !ok {
		return false, nil
	}
	if a.Category == f.failCategory {
		return false, errStoreDown
	}
	filled := false
	if len(strengths) > 0 && len(a.Strengths) == 0 {
		a.Strengths = models.StringList(strengths)
		filled = true
	}
	if len(weaknesses) > 0 && len(a.Weaknesses) == 0 {
		a.Weaknesses = models.StringList(weaknesses)
		filled = true
	}
	if len(recommendations) > 0 && len(a.Recommendations) == 0 {
		a.Recommendations = models.StringList(recommendations)
		filled = true
	}
	return filled, nil
}

func (f *fakeAnalysisStore) Update(analysis *models.PrescriptiveAnalysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.analyses[analysis.ID]; !ok {
		return fmt.Errorf("analysis %s not stored", analysis.ID)
	}
	f.analyses[analysis.ID] = cloneAnalysis(analysis)
	return nil
}

func (f *fakeAnalysisStore) SetAssessmentResultIfMissing(id, resultID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.analyses[id]
	if !ok || a.HasBackReference() {
		return false, nil
	}
	r := resultID
	a.AssessmentResultID = &r
	return true, nil
}

func (f *fakeAnalysisStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.analyses)
}

type fakePlanStore struct {
	mu    sync.Mutex
	plans map[string]*models.InterventionPlan
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{plans: make(map[string]*models.InterventionPlan)}
}

func (f *fakePlanStore) Create(plan *models.InterventionPlan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	cp := *plan
	f.plans[plan.ID] = &cp
	return nil
}

func (f *fakePlanStore) GetByID(id string) (*models.InterventionPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.plans[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakePlanStore) ListForStudent(studentID string) ([]models.InterventionPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.InterventionPlan
	for _, p := range f.plans {
		if p.StudentID == studentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlanStore) CountActiveForStudent(studentID string) (int, error) {
	plans, _ := f.ListForStudent(studentID)
	count := 0
	for _, p := range plans {
		if p.Status == models.PlanStatusActive {
			count++
		}
	}
	return count, nil
}

func (f *fakePlanStore) TransitionStatus(id string, from, to models.PlanStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (f *fakePlanStore) UpdateQuestions(id string, questions []models.QuestionSpec) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plans[id]
	if !ok || p.Status == models.PlanStatusCompleted {
		return false, nil
	}
	p.Questions = append([]models.QuestionSpec{}, questions...)
	return true, nil
}

type fakeProgressStore struct {
	mu     sync.Mutex
	byPlan map[string]*models.InterventionProgress
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{byPlan: make(map[string]*models.InterventionProgress)}
}

func (f *fakeProgressStore) Create(progress *models.InterventionProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byPlan[progress.PlanID]; ok {
		return repository.ErrDuplicate
	}
	if progress.ID == "" {
		progress.ID = uuid.NewString()
	}
	cp := *progress
	f.byPlan[progress.PlanID] = &cp
	return nil
}

func (f *fakeProgressStore) GetByPlanID(planID string) (*models.InterventionProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.byPlan[planID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeProgressStore) Update(progress *models.InterventionProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *progress
	f.byPlan[progress.PlanID] = &cp
	return nil
}

func (f *fakeProgressStore) delete(planID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byPlan, planID)
}

// testEnv wires every service to the fakes
type testEnv struct {
	students     *fakeStudentStore
	assessments  *fakeAssessmentStore
	analyses     *fakeAnalysisStore
	plans        *fakePlanStore
	progress     *fakeProgressStore
	resolver     *StudentResolver
	reconciler   *Reconciler
	assessment   *AssessmentService
	intervention *InterventionService
	analysis     *AnalysisService
	summary      *SummaryService
	batch        *BatchService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		students:    newFakeStudentStore(),
		assessments: &fakeAssessmentStore{},
		analyses:    newFakeAnalysisStore(),
		plans:       newFakePlanStore(),
		progress:    newFakeProgressStore(),
	}
	env.resolver = NewStudentResolver(env.students)
	env.reconciler = NewReconciler(env.resolver, env.assessments, env.analyses)
	env.assessment = NewAssessmentService(env.resolver, env.students, env.assessments, env.reconciler, 75)
	env.intervention = NewInterventionService(env.resolver, env.analyses, env.plans, env.progress, 75)
	env.analysis = NewAnalysisService(env.resolver, env.analyses)
	env.summary = NewSummaryService(env.students, env.assessments, env.plans)
	env.batch = NewBatchService(env.students, env.analyses, env.reconciler)
	return env
}
