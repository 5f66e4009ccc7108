package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-dashboard/config"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/student-dashboard/pkg/logger"
)

type fakeMigrator struct {
	migrations  []postgres.Migration
	rollbackErr error
	calls       []string
}

func newFakeMigrator() *fakeMigrator {
	return &fakeMigrator{migrations: []postgres.Migration{
		{Version: 1, Name: "create_students"},
		{Version: 2, Name: "create_grades_and_attendance"},
	}}
}

func (m *fakeMigrator) Migrate(context.Context) (int, error) {
	m.calls = append(m.calls, "migrate")
	applied := 0
	for i := range m.migrations {
		if !m.migrations[i].IsApplied {
			m.migrations[i].IsApplied = true
			m.migrations[i].AppliedAt = time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
			applied++
		}
	}
	return applied, nil
}

func (m *fakeMigrator) Rollback(context.Context) error {
	m.calls = append(m.calls, "rollback")
	if m.rollbackErr != nil {
		return m.rollbackErr
	}
	for i := len(m.migrations) - 1; i >= 0; i-- {
		if m.migrations[i].IsApplied {
			m.migrations[i].IsApplied = false
			break
		}
	}
	return nil
}

func (m *fakeMigrator) Status(context.Context) ([]postgres.Migration, error) {
	m.calls = append(m.calls, "status")
	return append([]postgres.Migration(nil), m.migrations...), nil
}

func TestRunMigrations_UpThenDown(t *testing.T) {
	ctx := context.Background()
	m := newFakeMigrator()

	var out bytes.Buffer
	require.NoError(t, RunMigrations(ctx, m, MigrateUp, &out, logger.Nop()))
	assert.Contains(t, out.String(), "create_students")
	assert.Contains(t, out.String(), "2024-09-02")
	assert.NotContains(t, out.String(), "pending")

	out.Reset()
	require.NoError(t, RunMigrations(ctx, m, MigrateDown, &out, logger.Nop()))
	assert.True(t, m.migrations[0].IsApplied)
	assert.False(t, m.migrations[1].IsApplied)
	assert.Contains(t, out.String(), "pending")

	assert.Equal(t, []string{"migrate", "status", "rollback", "status"}, m.calls)
}

func TestRunMigrations_Status(t *testing.T) {
	m := newFakeMigrator()

	var out bytes.Buffer
	require.NoError(t, RunMigrations(context.Background(), m, MigrateStatus, &out, logger.Nop()))
	assert.Equal(t, []string{"status"}, m.calls)
	assert.Contains(t, out.String(), "VERSION")
	assert.Contains(t, out.String(), "create_grades_and_attendance")
}

func TestRunMigrations_Errors(t *testing.T) {
	ctx := context.Background()

	m := newFakeMigrator()
	err := RunMigrations(ctx, m, "sideways", &bytes.Buffer{}, logger.Nop())
	assert.ErrorContains(t, err, "unknown migrate action")
	assert.Empty(t, m.calls)

	m.rollbackErr = postgres.ErrMigrationFailed
	err = RunMigrations(ctx, m, MigrateDown, &bytes.Buffer{}, logger.Nop())
	assert.True(t, errors.Is(err, postgres.ErrMigrationFailed))
	assert.Equal(t, []string{"rollback"}, m.calls)
}

func TestPostgresConfig(t *testing.T) {
	def := PostgresConfig(config.DatabaseConfig{URL: "postgres://localhost/dashboard"})
	assert.Equal(t, postgres.DefaultConfig("postgres://localhost/dashboard"), def)

	cfg := PostgresConfig(config.DatabaseConfig{
		URL:          "postgres://localhost/dashboard",
		MaxOpenConns: 20,
		MaxIdleConns: 4,
		QueryTimeout: 3 * time.Second,
	})
	assert.Equal(t, int32(20), cfg.MaxConns)
	assert.Equal(t, int32(4), cfg.MinConns)
	assert.Equal(t, 3*time.Second, cfg.QueryTimeout)
	assert.Equal(t, def.MaxConnLifetime, cfg.MaxConnLifetime)
}
