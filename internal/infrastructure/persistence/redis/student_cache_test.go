package redis

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-dashboard/internal/domain/shared"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/student-dashboard/pkg/circuitbreaker"
	"github.com/alem-hub/student-dashboard/pkg/timeutil"
)

type fakeCache struct {
	mu          sync.Mutex
	items       map[string]*student.Student
	gets        int
	hits        int
	invalidated []string
	flushes     int
	failReads   bool
	failWrites  bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]*student.Student)}
}

func (c *fakeCache) Get(_ context.Context, id string) (*student.Student, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failReads {
		return nil, errors.New("connection refused")
	}
	s, ok := c.items[id]
	if !ok {
		return nil, ErrCacheMiss
	}
	c.hits++
	return s.Clone(), nil
}

func (c *fakeCache) Set(_ context.Context, s *student.Student) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrites {
		return errors.New("connection refused")
	}
	c.items[s.StudentID] = s.Clone()
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func (c *fakeCache) InvalidateRoster(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushes++
	if c.failWrites {
		return errors.New("connection refused")
	}
	c.items = make(map[string]*student.Student)
	return nil
}

func TestStudentKey(t *testing.T) {
	assert.Equal(t, "dashboard:student:STU001", StudentKey("STU001"))
}

func TestDefaultConfig_Addr(t *testing.T) {
	assert.Equal(t, "localhost:6379", DefaultConfig().Addr())
}

func TestCachedStudentRepository_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	repo := NewCachedStudentRepository(memory.NewSeededStudentRepository(), cache, nil)

	first, err := repo.GetByStudentID(ctx, "STU001")
	require.NoError(t, err)
	assert.Equal(t, "Alice Johnson", first.Name)
	assert.Equal(t, 0, cache.hits)

	second, err := repo.GetByStudentID(ctx, "STU001")
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, 1, cache.hits)
}

func TestCachedStudentRepository_WritesInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	repo := NewCachedStudentRepository(memory.NewSeededStudentRepository(), cache, nil)

	before, err := repo.GetByStudentID(ctx, "STU002")
	require.NoError(t, err)

	g, err := student.NewGrade(student.NewGradeParams{
		Subject:       "History",
		Assignment:    "Essay",
		MaxMarks:      50,
		ObtainedMarks: 40,
		Date:          timeutil.Date(2024, 3, 1),
		Category:      student.CategoryAssignment,
	})
	require.NoError(t, err)
	require.NoError(t, repo.AddGrade(ctx, "STU002", g))
	assert.Contains(t, cache.invalidated, "STU002")

	after, err := repo.GetByStudentID(ctx, "STU002")
	require.NoError(t, err)
	assert.Len(t, after.Grades, len(before.Grades)+1)

	require.NoError(t, repo.Delete(ctx, "STU002"))
	_, err = repo.GetByStudentID(ctx, "STU002")
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)
}

func TestCachedStudentRepository_CacheFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	cache.failReads = true
	repo := NewCachedStudentRepository(memory.NewSeededStudentRepository(), cache, nil)

	s, err := repo.GetByStudentID(ctx, "STU003")
	require.NoError(t, err)
	assert.Equal(t, "STU003", s.StudentID)
}

func TestCachedStudentRepository_BreakerSkipsDeadCache(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	cache.failReads = true
	cache.failWrites = true

	cb := circuitbreaker.CacheBreaker(func(err error) bool { return errors.Is(err, ErrCacheMiss) }, nil)
	repo := NewCachedStudentRepository(memory.NewSeededStudentRepository(), cache, nil).WithBreaker(cb)

	for i := 0; i < 3; i++ {
		s, err := repo.GetByStudentID(ctx, "STU002")
		require.NoError(t, err)
		assert.Equal(t, "Bob Smith", s.Name)
	}

	assert.Equal(t, circuitbreaker.StateOpen, cb.State())
	assert.Equal(t, 2, cache.gets)
}

func TestCachedStudentRepository_BreakerIgnoresMisses(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	cb := circuitbreaker.CacheBreaker(func(err error) bool { return errors.Is(err, ErrCacheMiss) }, nil)
	repo := NewCachedStudentRepository(memory.NewSeededStudentRepository(), cache, nil).WithBreaker(cb)

	for _, id := range []string{"STU001", "STU002", "STU003", "STU004"} {
		_, err := repo.GetByStudentID(ctx, id)
		require.NoError(t, err)
	}
	assert.Equal(t, circuitbreaker.StateClosed, cb.State())
	assert.Len(t, cache.items, 4)
}

func TestCachedStudentRepository_InvalidateRoster(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	repo := NewCachedStudentRepository(memory.NewSeededStudentRepository(), cache, nil)

	for _, id := range []string{"STU001", "STU002"} {
		_, err := repo.GetByStudentID(ctx, id)
		require.NoError(t, err)
	}
	require.Len(t, cache.items, 2)

	require.NoError(t, repo.InvalidateRoster(ctx))
	assert.Empty(t, cache.items)
	assert.Equal(t, 1, cache.flushes)

	cache.failWrites = true
	assert.Error(t, repo.InvalidateRoster(ctx))
}
