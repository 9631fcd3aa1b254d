package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"literacytrack/internal/config"
	"literacytrack/internal/database"
	"literacytrack/internal/repository"
	"literacytrack/internal/service"
)

// app holds the services every subcommand runs against
type app struct {
	db           *database.DB
	cfg          *config.Config
	assessment   *service.AssessmentService
	reconciler   *service.Reconciler
	analysis     *service.AnalysisService
	intervention *service.InterventionService
	summary      *service.SummaryService
	batch        *service.BatchService
}

func main() {
	cfg := config.Load()

	rootFlags := flag.NewFlagSet("reconcile", flag.ExitOnError)
	_ = rootFlags.String("config", "", "config file (optional), json format")
	dbType := rootFlags.String("db-type", cfg.DatabaseType, "database type: sqlite, postgres, or mysql")
	dbPath := rootFlags.String("db-path", cfg.DatabasePath, "SQLite database path")
	dbURL := rootFlags.String("db-url", cfg.DatabaseURL, "PostgreSQL or MySQL connection URL")

	a := &app{cfg: cfg}
	open := func() error {
		cfg.DatabaseType = *dbType
		cfg.DatabasePath = *dbPath
		cfg.DatabaseURL = *dbURL
		return a.open()
	}

	refillFlags := flag.NewFlagSet("reconcile refill", flag.ExitOnError)
	refillStudent := refillFlags.String("student", "", "student id or external student number (required)")

	analysesFlags := flag.NewFlagSet("reconcile analyses", flag.ExitOnError)
	analysesStudent := analysesFlags.String("student", "", "student id or external student number (required)")

	recordFlags := flag.NewFlagSet("reconcile record", flag.ExitOnError)
	recordInput := recordFlags.String("input", "", "JSON file holding one assessment result (required)")

	progressFlags := flag.NewFlagSet("reconcile progress", flag.ExitOnError)
	progressPlan := progressFlags.String("plan", "", "intervention plan id (required)")
	progressCompleted := progressFlags.Int("completed", 0, "completed activities")
	progressCorrect := progressFlags.Int("correct", 0, "correct answers")
	progressIncorrect := progressFlags.Int("incorrect", 0, "incorrect answers")
	progressNotes := progressFlags.String("notes", "", "optional notes")

	initialize := &ffcli.Command{
		Name:       "initialize",
		ShortUsage: "reconcile initialize",
		ShortHelp:  "Ensure every graded student has all category analyses with content",
		Exec: func(ctx context.Context, args []string) error {
			if err := open(); err != nil {
				return err
			}
			defer a.db.Close()

			result, err := a.batch.InitializeForAllStudents()
			if err != nil {
				return err
			}
			for _, f := range result.Failures {
				log.Printf("Failure: %s", f)
			}
			return printJSON(result)
		},
	}

	refill := &ffcli.Command{
		Name:       "refill",
		ShortUsage: "reconcile refill -student <id>",
		ShortHelp:  "Fill empty analysis fields for one student",
		FlagSet:    refillFlags,
		Exec: func(ctx context.Context, args []string) error {
			if *refillStudent == "" {
				return errors.New("-student is required")
			}
			if err := open(); err != nil {
				return err
			}
			defer a.db.Close()

			analyses, err := a.reconciler.RefillEmptyAnalyses(*refillStudent)
			if err != nil {
				var partial *service.PartialFailureError
				if !errors.As(err, &partial) {
					return err
				}
				log.Printf("Warning: %v", err)
			}
			return printJSON(analyses)
		},
	}

	analyses := &ffcli.Command{
		Name:       "analyses",
		ShortUsage: "reconcile analyses -student <id>",
		ShortHelp:  "Print a student's analyses sorted by category",
		FlagSet:    analysesFlags,
		Exec: func(ctx context.Context, args []string) error {
			if *analysesStudent == "" {
				return errors.New("-student is required")
			}
			if err := open(); err != nil {
				return err
			}
			defer a.db.Close()

			list, err := a.analysis.GetStudentAnalyses(*analysesStudent)
			if err != nil {
				return errors.New(service.PublicMessage(err))
			}
			return printJSON(list)
		},
	}

	repair := &ffcli.Command{
		Name:       "repair-refs",
		ShortUsage: "reconcile repair-refs",
		ShortHelp:  "Link analyses without an assessment result to the latest matching result",
		Exec: func(ctx context.Context, args []string) error {
			if err := open(); err != nil {
				return err
			}
			defer a.db.Close()

			result, err := a.batch.RepairBackReferences()
			if err != nil {
				return err
			}
			for _, f := range result.Failures {
				log.Printf("Failure: %s", f)
			}
			return printJSON(result)
		},
	}

	record := &ffcli.Command{
		Name:       "record",
		ShortUsage: "reconcile record -input <file>",
		ShortHelp:  "Store an assessment result and run the reconciliation cascade",
		FlagSet:    recordFlags,
		Exec: func(ctx context.Context, args []string) error {
			if *recordInput == "" {
				return errors.New("-input is required")
			}
			data, err := os.ReadFile(*recordInput)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			var input service.RecordResultInput
			if err := json.Unmarshal(data, &input); err != nil {
				return fmt.Errorf("failed to parse input file: %w", err)
			}

			if err := open(); err != nil {
				return err
			}
			defer a.db.Close()

			result, report, err := a.assessment.RecordResult(input)
			if err != nil {
				return errors.New(service.PublicMessage(err))
			}
			for _, f := range report.Failures {
				log.Printf("Failure: %s", f)
			}
			log.Printf("Recorded assessment %s for student %s (overall %.1f)", result.ID, result.StudentID, result.OverallScore)
			return printJSON(report)
		},
	}

	progress := &ffcli.Command{
		Name:       "progress",
		ShortUsage: "reconcile progress -plan <id> [flags]",
		ShortHelp:  "Record a progress report against an intervention plan",
		FlagSet:    progressFlags,
		Exec: func(ctx context.Context, args []string) error {
			if *progressPlan == "" {
				return errors.New("-plan is required")
			}
			if err := open(); err != nil {
				return err
			}
			defer a.db.Close()

			p, err := a.intervention.RecordProgress(*progressPlan, service.ProgressUpdate{
				CompletedActivities: *progressCompleted,
				CorrectAnswers:      *progressCorrect,
				IncorrectAnswers:    *progressIncorrect,
				Notes:               *progressNotes,
			})
			if err != nil {
				return errors.New(service.PublicMessage(err))
			}
			return printJSON(p)
		},
	}

	summary := &ffcli.Command{
		Name:       "summary",
		ShortUsage: "reconcile summary",
		ShortHelp:  "Print the per-student progress overview",
		Exec: func(ctx context.Context, args []string) error {
			if err := open(); err != nil {
				return err
			}
			defer a.db.Close()

			rows, err := a.summary.GetProgressSummary()
			if err != nil {
				return err
			}
			return printJSON(rows)
		},
	}

	root := &ffcli.Command{
		ShortUsage: "reconcile [flags] <subcommand> [flags]",
		FlagSet:    rootFlags,
		Options: []ff.Option{
			ff.WithEnvVarPrefix("LITERACY"),
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ff.JSONParser),
		},
		Subcommands: []*ffcli.Command{initialize, refill, analyses, repair, record, progress, summary},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}

	if err := root.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(1)
		}
		log.Fatalf("Error: %v", err)
	}
}

// open connects to the database, runs migrations, and wires the services
func (a *app) open() error {
	db, err := database.InitializeWithConfig(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Printf("Database ready (type: %s)", a.cfg.DatabaseType)

	studentRepo := repository.NewStudentRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	planRepo := repository.NewPlanRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	resolver := service.NewStudentResolver(studentRepo)
	reconciler := service.NewReconciler(resolver, assessmentRepo, analysisRepo)

	a.db = db
	a.reconciler = reconciler
	a.assessment = service.NewAssessmentService(resolver, studentRepo, assessmentRepo, reconciler, a.cfg.CategoryPassScore)
	a.analysis = service.NewAnalysisService(resolver, analysisRepo)
	a.intervention = service.NewInterventionService(resolver, analysisRepo, planRepo, progressRepo, a.cfg.DefaultPassThreshold)
	a.summary = service.NewSummaryService(studentRepo, assessmentRepo, planRepo)
	a.batch = service.NewBatchService(studentRepo, analysisRepo, reconciler)
	return nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
