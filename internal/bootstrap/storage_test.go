package bootstrap

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-dashboard/config"
	"github.com/alem-hub/student-dashboard/internal/domain/metrics"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/student-dashboard/pkg/logger"
)

func memoryConfig(seed bool) *config.Config {
	return &config.Config{
		App:   config.AppConfig{Storage: config.StorageMemory, SeedSampleData: seed},
		Redis: config.RedisConfig{Disabled: true},
	}
}

func TestOpenStorage_Memory(t *testing.T) {
	ctx := context.Background()

	st, err := OpenStorage(ctx, memoryConfig(true), logger.Nop())
	require.NoError(t, err)
	defer st.Close()

	n, err := st.Students.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NotNil(t, st.Snapshots)
	assert.Empty(t, st.Pingers)

	empty, err := OpenStorage(ctx, memoryConfig(false), logger.Nop())
	require.NoError(t, err)
	n, err = empty.Students.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStudentRepository()

	seeded, err := SeedIfEmpty(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 4, seeded)

	seeded, err = SeedIfEmpty(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, seeded)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestPolicy(t *testing.T) {
	assert.Equal(t, metrics.DefaultPolicy(), Policy(config.MetricsConfig{}))

	p := Policy(config.MetricsConfig{
		TopPerformerThreshold: 90,
		PerformerLimit:        5,
		Subjects:              []string{"Mathematics", "Art"},
	})
	assert.Equal(t, 90.0, p.TopThreshold)
	assert.Equal(t, metrics.ImprovementNeededBelow, p.ImprovementBelow)
	assert.Equal(t, metrics.PassThreshold, p.PassThreshold)
	assert.Equal(t, 5, p.Limit)
	assert.Equal(t, []string{"Mathematics", "Art"}, p.Subjects)
}

type countingCache struct {
	flushes int
}

func (c *countingCache) Get(context.Context, string) (*student.Student, error) {
	return nil, redis.ErrCacheMiss
}
func (c *countingCache) Set(context.Context, *student.Student) error { return nil }
func (c *countingCache) Invalidate(context.Context, string) error     { return nil }
func (c *countingCache) InvalidateRoster(context.Context) error       { c.flushes++; return nil }

func TestAttachCache_FlushesAfterReseed(t *testing.T) {
	ctx := context.Background()

	fresh := &Storage{Students: memory.NewSeededStudentRepository(), seeded: 4}
	cache := &countingCache{}
	fresh.attachCache(ctx, cache, logger.Nop())
	assert.Equal(t, 1, cache.flushes)

	s, err := fresh.Students.GetByStudentID(ctx, "STU001")
	require.NoError(t, err)
	assert.Equal(t, "Alice Johnson", s.Name)

	existing := &Storage{Students: memory.NewSeededStudentRepository()}
	cache = &countingCache{}
	existing.attachCache(ctx, cache, logger.Nop())
	assert.Zero(t, cache.flushes)
}

func TestOpenStorage_UnreachableRedisDisablesCache(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig(true)
	cfg.Redis = config.RedisConfig{
		Host:        "127.0.0.1",
		Port:        1,
		DialTimeout: 200 * time.Millisecond,
	}

	var out bytes.Buffer
	st, err := OpenStorage(ctx, cfg, logger.New(logger.Options{Output: &out, Level: logger.LevelDebug}))
	require.NoError(t, err)
	defer st.Close()

	assert.NotContains(t, st.Pingers, "redis")
	assert.Equal(t, 1, strings.Count(out.String(), "Redis not ready, retrying"))
	assert.Contains(t, out.String(), "caching disabled")

	s, err := st.Students.GetByStudentID(ctx, "STU002")
	require.NoError(t, err)
	assert.Equal(t, "Bob Smith", s.Name)
}
