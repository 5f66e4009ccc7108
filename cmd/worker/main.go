// Package main is the entry point of the background worker.
//
// The worker periodically computes fleet metrics from the student store and
// appends a snapshot so averages and attendance can be charted over time.
//
// With -migrate=up|down|status it manages the PostgreSQL schema instead and
// exits:
//
//	worker -migrate=status
//	worker -migrate=down
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alem-hub/student-dashboard/config"
	"github.com/alem-hub/student-dashboard/internal/bootstrap"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/scheduler"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/scheduler/jobs"
	"github.com/alem-hub/student-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	migrate := flag.String("migrate", "", "apply a schema action (up, down, status) and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrate); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, migrate string) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION & LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		Format:    logger.ParseFormat(cfg.Observability.LogFormat),
		AddCaller: cfg.App.Debug,
	}).With(logger.String("service", cfg.App.Name+"-worker"))

	if migrate != "" {
		return runMigrations(ctx, cfg, migrate, log)
	}

	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler disabled, nothing to do")
		return nil
	}
	if err := cfg.ValidateWorker(); err != nil {
		return err
	}

	log.Info("starting student dashboard worker",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("storage", string(cfg.App.Storage)),
		logger.Duration("snapshot_interval", cfg.Scheduler.SnapshotInterval),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	store, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. SCHEDULER & JOBS
	// ─────────────────────────────────────────────────────────────────────────
	schedCfg := scheduler.DefaultConfig()
	schedCfg.Logger = log
	if cfg.Scheduler.JobTimeout > 0 {
		schedCfg.JobTimeout = cfg.Scheduler.JobTimeout
	}
	sched := scheduler.New(schedCfg)

	snapshotJob := jobs.NewSnapshotMetricsJob(store.Students, store.Snapshots, bootstrap.Policy(cfg.Metrics), log)
	if err := sched.Register(snapshotJob, scheduler.NewIntervalSchedule(cfg.Scheduler.SnapshotInterval), true); err != nil {
		return fmt.Errorf("register %s: %w", snapshotJob.Name(), err)
	}

	sched.OnJobComplete(func(res scheduler.JobResult) {
		if !res.Success || res.JobName != snapshotJob.Name() {
			return
		}
		if snap := snapshotJob.Last(); snap != nil {
			log.Debug("fleet snapshot stored",
				logger.Int("students", snap.TotalStudents),
				logger.Float64("average_grade", snap.AverageGrade),
				logger.Float64("attendance_rate", snap.AttendanceRate),
			)
		}
	})

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info("received shutdown signal")

	if err := sched.Stop(); err != nil {
		log.Error("scheduler stop failed", logger.Err(err))
	}

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

func runMigrations(ctx context.Context, cfg *config.Config, action string, log *logger.Logger) error {
	if cfg.App.Storage != config.StoragePostgres {
		return fmt.Errorf("-migrate requires APP_STORAGE=postgres, got %q", cfg.App.Storage)
	}

	conn, err := bootstrap.ConnectPostgres(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	return bootstrap.RunMigrations(ctx, postgres.NewMigrator(conn), action, os.Stdout, log)
}
