// Package main is the entry point of the student dashboard API server.
//
// The server exposes fleet metrics, the student roster, student detail,
// write operations and XLSX reports over HTTP. Storage is either the seeded
// in-memory roster or PostgreSQL, optionally fronted by Redis.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alem-hub/student-dashboard/config"
	"github.com/alem-hub/student-dashboard/internal/application/command"
	"github.com/alem-hub/student-dashboard/internal/application/query"
	"github.com/alem-hub/student-dashboard/internal/bootstrap"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/report"
	httpapi "github.com/alem-hub/student-dashboard/internal/interface/http"
	"github.com/alem-hub/student-dashboard/internal/interface/http/handlers"
	"github.com/alem-hub/student-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting student dashboard API",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("storage", string(cfg.App.Storage)),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. STORAGE (PostgreSQL or memory, optional Redis)
	// ─────────────────────────────────────────────────────────────────────────
	store, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing storage connections")
		store.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	policy := bootstrap.Policy(cfg.Metrics)
	students := store.Students
	addStudent := command.NewAddStudentHandler(students, log)

	deps := httpapi.Dependencies{
		GetDashboardHandler:     query.NewGetDashboardHandler(students, store.Snapshots, policy),
		ListStudentsHandler:     query.NewListStudentsHandler(students),
		GetStudentDetailHandler: query.NewGetStudentDetailHandler(students),
		ExportRosterHandler:     query.NewExportRosterHandler(students, policy, report.WriteWorkbook),

		AddStudentHandler:     addStudent,
		RecordGradeHandler:    command.NewRecordGradeHandler(students, log),
		MarkAttendanceHandler: command.NewMarkAttendanceHandler(students, log),
		DeleteStudentHandler:  command.NewDeleteStudentHandler(students, log),
		ImportStudentsHandler: command.NewImportStudentsHandler(addStudent, log),

		Logger:        log,
		HealthChecker: healthChecker(cfg, store),
		Version:       cfg.App.Version,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpapi.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.EnableCORS = cfg.HTTP.EnableCORS
	httpCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpCfg.WriteAPI = cfg.Features.WriteAPI
	httpCfg.Reports = cfg.Features.Reports

	server := httpapi.NewServer(httpCfg, deps)
	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		log.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			return err
		}
		return errors.New("http server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", logger.Err(err))
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func setupLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		Format:    logger.ParseFormat(cfg.Observability.LogFormat),
		AddCaller: cfg.App.Debug,
	}).With(logger.String("service", cfg.App.Name))
}

func healthChecker(cfg *config.Config, store *bootstrap.Storage) *handlers.CompositeHealthChecker {
	checker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	checker.AddCheck("store", handlers.NewStoreCheck(store.Students))
	for name, p := range store.Pingers {
		checker.AddCheck(name, handlers.NewPingCheck(p))
	}
	return checker
}
