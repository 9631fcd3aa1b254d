package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"literacytrack/internal/config"
	"literacytrack/internal/database"
	"literacytrack/internal/repository"
	"literacytrack/internal/service"
)

func main() {
	cfg := config.Load()

	rootFlags := flag.NewFlagSet("backup", flag.ExitOnError)
	_ = rootFlags.String("config", "", "config file (optional), json format")
	dbType := rootFlags.String("db-type", cfg.DatabaseType, "database type: sqlite, postgres, or mysql")
	dbPath := rootFlags.String("db-path", cfg.DatabasePath, "SQLite database path")
	dbURL := rootFlags.String("db-url", cfg.DatabaseURL, "PostgreSQL or MySQL connection URL")

	exportFlags := flag.NewFlagSet("backup export", flag.ExitOnError)
	exportOutput := exportFlags.String("output", "", "output file path (default: <backup dir>/backup_YYYYMMDD_HHMMSS.json)")

	export := &ffcli.Command{
		Name:       "export",
		ShortUsage: "backup export [-output <file>]",
		ShortHelp:  "Export every student, assessment, analysis, and plan to a JSON file",
		FlagSet:    exportFlags,
		Exec: func(ctx context.Context, args []string) error {
			cfg.DatabaseType = *dbType
			cfg.DatabasePath = *dbPath
			cfg.DatabaseURL = *dbURL
			return handleExport(cfg, *exportOutput)
		},
	}

	root := &ffcli.Command{
		ShortUsage: "backup [flags] <subcommand> [flags]",
		FlagSet:    rootFlags,
		Options: []ff.Option{
			ff.WithEnvVarPrefix("LITERACY"),
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(ff.JSONParser),
		},
		Subcommands: []*ffcli.Command{export},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}

	if err := root.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(1)
		}
		log.Fatalf("Export failed: %v", err)
	}
}

func handleExport(cfg *config.Config, outputPath string) error {
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = filepath.Join(cfg.BackupDir, fmt.Sprintf("backup_%s.json", timestamp))
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Schema must be current before every table is read
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	backupService := service.NewBackupService(service.BackupSource{
		Students:    repository.NewStudentRepository(db),
		Assessments: repository.NewAssessmentRepository(db),
		Analyses:    repository.NewAnalysisRepository(db),
		Plans:       repository.NewPlanRepository(db),
		Progress:    repository.NewProgressRepository(db),
	}, cfg.DatabaseType)

	log.Printf("Exporting database to: %s", outputPath)
	if err := backupService.Export(outputPath); err != nil {
		return err
	}

	if fileInfo, err := os.Stat(outputPath); err == nil {
		log.Printf("Export complete! File size: %.2f MB", float64(fileInfo.Size())/1024/1024)
	}
	return nil
}
