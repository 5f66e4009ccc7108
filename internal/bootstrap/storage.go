// Package bootstrap assembles the storage stack shared by the API server and
// the worker from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alem-hub/student-dashboard/config"
	"github.com/alem-hub/student-dashboard/internal/domain/metrics"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/student-dashboard/pkg/circuitbreaker"
	"github.com/alem-hub/student-dashboard/pkg/logger"
	"github.com/alem-hub/student-dashboard/pkg/retry"
)

// Pinger reports connectivity of a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Storage is the opened persistence layer.
type Storage struct {
	Students  student.Repository
	Snapshots metrics.SnapshotRepository

	// Pingers holds the external services behind Students, keyed by name.
	Pingers map[string]Pinger

	// seeded counts students loaded from the sample roster during this open.
	seeded  int
	closers []func()
}

// Close releases connections in reverse order of opening.
func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// OpenStorage opens the configured student store, applies migrations, seeds
// the sample roster into an empty store and fronts it with Redis when
// enabled. A Redis failure only disables caching.
func OpenStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Storage, error) {
	st := &Storage{Pingers: make(map[string]Pinger)}

	switch cfg.App.Storage {
	case config.StoragePostgres:
		if err := st.openPostgres(ctx, cfg, log); err != nil {
			st.Close()
			return nil, err
		}
	default:
		if cfg.App.SeedSampleData {
			st.Students = memory.NewSeededStudentRepository()
		} else {
			st.Students = memory.NewStudentRepository()
		}
		st.Snapshots = memory.NewSnapshotRepository()
		log.Info("using in-memory storage", logger.Bool("seeded", cfg.App.SeedSampleData))
	}

	if !cfg.Redis.Disabled {
		st.openRedis(ctx, cfg, log)
	}

	return st, nil
}

func (st *Storage) openPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	conn, err := ConnectPostgres(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	st.closers = append(st.closers, conn.Close)
	st.Pingers["postgres"] = conn

	if cfg.Database.AutoMigrate {
		applied, err := postgres.NewMigrator(conn).Migrate(ctx)
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Info("database schema is up to date", logger.Int("applied", applied))
	}

	repo := postgres.NewStudentRepository(conn)
	st.Students = repo
	st.Snapshots = postgres.NewSnapshotRepository(conn)

	if cfg.App.SeedSampleData {
		seeded, err := SeedIfEmpty(ctx, repo)
		if err != nil {
			return err
		}
		if seeded > 0 {
			log.Info("seeded sample roster", logger.Count(seeded))
		}
		st.seeded = seeded
	}
	return nil
}

func (st *Storage) openRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) {
	rc := redis.DefaultConfig()
	rc.Host = cfg.Redis.Host
	rc.Port = cfg.Redis.Port
	rc.Password = cfg.Redis.Password
	rc.DB = cfg.Redis.DB
	if cfg.Redis.PoolSize > 0 {
		rc.PoolSize = cfg.Redis.PoolSize
	}
	if cfg.Redis.MinIdleConns > 0 {
		rc.MinIdleConns = cfg.Redis.MinIdleConns
	}
	if cfg.Redis.DialTimeout > 0 {
		rc.DialTimeout = cfg.Redis.DialTimeout
	}
	if cfg.Redis.ReadTimeout > 0 {
		rc.ReadTimeout = cfg.Redis.ReadTimeout
	}
	if cfg.Redis.WriteTimeout > 0 {
		rc.WriteTimeout = cfg.Redis.WriteTimeout
	}

	cache, err := retry.DoWithData(ctx, func(ctx context.Context) (*redis.Cache, error) {
		return redis.NewCache(ctx, rc)
	},
		retry.WithMaxAttempts(2),
		retry.WithInitialDelay(200*time.Millisecond),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("Redis not ready, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		}),
	)
	if err != nil {
		log.Warn("failed to connect to Redis, caching disabled",
			logger.String("address", rc.Addr()),
			logger.Err(err),
		)
		return
	}
	st.closers = append(st.closers, func() { _ = cache.Close() })
	st.Pingers["redis"] = cache

	st.attachCache(ctx, redis.NewStudentCache(cache, cfg.Redis.StudentTTL), log)
	log.Info("Redis student cache enabled", logger.Duration("ttl", cfg.Redis.StudentTTL))
}

// attachCache fronts Students with cache behind the cache circuit breaker.
// Entries left from before a reseed are dropped.
func (st *Storage) attachCache(ctx context.Context, cache student.Cache, log *logger.Logger) {
	cached := redis.NewCachedStudentRepository(st.Students, cache, log).WithBreaker(cacheBreaker(log))
	if st.seeded > 0 {
		_ = cached.InvalidateRoster(ctx)
	}
	st.Students = cached
}

func cacheBreaker(log *logger.Logger) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.CacheBreaker(
		func(err error) bool { return errors.Is(err, redis.ErrCacheMiss) },
		func(name string, from, to circuitbreaker.State) {
			log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	)
}

// SeedIfEmpty loads the sample roster into repo when it holds no students.
// It returns the number of students created.
func SeedIfEmpty(ctx context.Context, repo student.Repository) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	seeded := 0
	for _, s := range memory.SampleStudents() {
		if err := repo.Create(ctx, s); err != nil {
			return seeded, fmt.Errorf("seed %s: %w", s.StudentID, err)
		}
		seeded++
	}
	return seeded, nil
}

// Policy builds the fleet metrics policy from configuration. Unset fields
// keep their defaults.
func Policy(cfg config.MetricsConfig) metrics.Policy {
	p := metrics.DefaultPolicy()
	if cfg.TopPerformerThreshold > 0 {
		p.TopThreshold = cfg.TopPerformerThreshold
	}
	if cfg.ImprovementNeededBelow > 0 {
		p.ImprovementBelow = cfg.ImprovementNeededBelow
	}
	if cfg.PassThreshold > 0 {
		p.PassThreshold = cfg.PassThreshold
	}
	if cfg.PerformerLimit > 0 {
		p.Limit = cfg.PerformerLimit
	}
	if len(cfg.Subjects) > 0 {
		p.Subjects = append([]string(nil), cfg.Subjects...)
	}
	return p
}
