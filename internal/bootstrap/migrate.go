package bootstrap

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/alem-hub/student-dashboard/config"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/student-dashboard/pkg/logger"
	"github.com/alem-hub/student-dashboard/pkg/retry"
	"github.com/alem-hub/student-dashboard/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// POSTGRES CONNECTION
// ══════════════════════════════════════════════════════════════════════════════

// PostgresConfig maps database settings onto pool settings. Unset values keep
// the pool defaults.
func PostgresConfig(cfg config.DatabaseConfig) postgres.Config {
	pgCfg := postgres.DefaultConfig(cfg.URL)
	if cfg.MaxOpenConns > 0 {
		pgCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pgCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pgCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		pgCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}
	if cfg.QueryTimeout > 0 {
		pgCfg.QueryTimeout = cfg.QueryTimeout
	}
	return pgCfg
}

// ConnectPostgres opens the pool, retrying while the server comes up.
func ConnectPostgres(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*postgres.Connection, error) {
	pgCfg := PostgresConfig(cfg)

	log.Info("connecting to PostgreSQL")
	conn, err := retry.DoWithData(ctx, func(ctx context.Context) (*postgres.Connection, error) {
		return postgres.NewConnection(ctx, pgCfg)
	}, retry.Connect(func(attempt int, err error, delay time.Duration) {
		log.Warn("PostgreSQL not ready, retrying",
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err),
		)
	})...)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return conn, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// Migration actions accepted by RunMigrations.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// SchemaMigrator is implemented by *postgres.Migrator.
type SchemaMigrator interface {
	Migrate(ctx context.Context) (int, error)
	Rollback(ctx context.Context) error
	Status(ctx context.Context) ([]postgres.Migration, error)
}

var _ SchemaMigrator = (*postgres.Migrator)(nil)

// RunMigrations performs one migration action and reports the schema state
// to out.
func RunMigrations(ctx context.Context, m SchemaMigrator, action string, out io.Writer, log *logger.Logger) error {
	switch action {
	case MigrateUp:
		applied, err := m.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Info("database schema is up to date", logger.Int("applied", applied))
	case MigrateDown:
		if err := m.Rollback(ctx); err != nil {
			return fmt.Errorf("rollback migration: %w", err)
		}
		log.Info("rolled back latest migration")
	case MigrateStatus:
	default:
		return fmt.Errorf("unknown migrate action %q (want %s, %s or %s)", action, MigrateUp, MigrateDown, MigrateStatus)
	}

	status, err := m.Status(ctx)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED")
	for _, mig := range status {
		applied := "pending"
		if mig.IsApplied {
			applied = timeutil.FormatDate(mig.AppliedAt)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", mig.Version, mig.Name, applied)
	}
	return tw.Flush()
}
