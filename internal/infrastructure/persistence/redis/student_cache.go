package redis

import (
	"context"
	"errors"
	"time"

	"github.com/alem-hub/student-dashboard/internal/domain/student"
	"github.com/alem-hub/student-dashboard/pkg/circuitbreaker"
	"github.com/alem-hub/student-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT CACHE
// ══════════════════════════════════════════════════════════════════════════════

// StudentCache implements student.Cache over Cache.
type StudentCache struct {
	cache *Cache
	ttl   time.Duration
}

var _ student.Cache = (*StudentCache)(nil)

// NewStudentCache creates a new StudentCache. A non-positive ttl uses
// TTLStudentCache.
func NewStudentCache(cache *Cache, ttl time.Duration) *StudentCache {
	if ttl <= 0 {
		ttl = TTLStudentCache
	}
	return &StudentCache{cache: cache, ttl: ttl}
}

// Get returns ErrCacheMiss when the student is not cached.
func (s *StudentCache) Get(ctx context.Context, studentID string) (*student.Student, error) {
	var st student.Student
	if err := s.cache.Get(ctx, StudentKey(studentID), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Set caches st under its StudentID.
func (s *StudentCache) Set(ctx context.Context, st *student.Student) error {
	if st == nil {
		return ErrCacheNilValue
	}
	return s.cache.Set(ctx, StudentKey(st.StudentID), st, s.ttl)
}

// Invalidate drops one student.
func (s *StudentCache) Invalidate(ctx context.Context, studentID string) error {
	return s.cache.Delete(ctx, StudentKey(studentID))
}

// InvalidateRoster drops every cached student.
func (s *StudentCache) InvalidateRoster(ctx context.Context) error {
	return s.cache.DeleteByPattern(ctx, PrefixStudent+"*")
}

// ══════════════════════════════════════════════════════════════════════════════
// READ-THROUGH REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// CachedStudentRepository serves GetByStudentID from a cache and
// invalidates on every write. Cache failures are logged and never fail the
// call; the underlying repository stays the source of truth.
type CachedStudentRepository struct {
	student.Repository
	cache   student.Cache
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

var _ student.Repository = (*CachedStudentRepository)(nil)

// NewCachedStudentRepository wraps repo with cache.
func NewCachedStudentRepository(repo student.Repository, cache student.Cache, log *logger.Logger) *CachedStudentRepository {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedStudentRepository{
		Repository: repo,
		cache:      cache,
		log:        log.Named("student_cache"),
	}
}

// WithBreaker guards cache reads and fills with cb. While the circuit is
// open, lookups go straight to the repository. Invalidations are always
// attempted.
func (r *CachedStudentRepository) WithBreaker(cb *circuitbreaker.CircuitBreaker) *CachedStudentRepository {
	r.breaker = cb
	return r
}

// GetByStudentID reads through the cache.
func (r *CachedStudentRepository) GetByStudentID(ctx context.Context, studentID string) (*student.Student, error) {
	var cached *student.Student
	err := r.guard(ctx, func(ctx context.Context) error {
		var err error
		cached, err = r.cache.Get(ctx, studentID)
		return err
	})
	switch {
	case err == nil:
		return cached, nil
	case errors.Is(err, ErrCacheMiss), circuitbreaker.IsRejected(err):
	default:
		r.log.Warn("cache read failed", logger.StudentID(studentID), logger.Err(err))
	}

	st, err := r.Repository.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	err = r.guard(ctx, func(ctx context.Context) error { return r.cache.Set(ctx, st) })
	if err != nil && !circuitbreaker.IsRejected(err) {
		r.log.Warn("cache write failed", logger.StudentID(studentID), logger.Err(err))
	}
	return st, nil
}

func (r *CachedStudentRepository) guard(ctx context.Context, fn func(context.Context) error) error {
	if r.breaker == nil {
		return fn(ctx)
	}
	return r.breaker.Execute(ctx, fn)
}

// Update writes through and invalidates.
func (r *CachedStudentRepository) Update(ctx context.Context, s *student.Student) error {
	if err := r.Repository.Update(ctx, s); err != nil {
		return err
	}
	r.invalidate(ctx, s.StudentID)
	return nil
}

// Delete removes the student and its cache entry.
func (r *CachedStudentRepository) Delete(ctx context.Context, studentID string) error {
	if err := r.Repository.Delete(ctx, studentID); err != nil {
		return err
	}
	r.invalidate(ctx, studentID)
	return nil
}

// AddGrade appends and invalidates.
func (r *CachedStudentRepository) AddGrade(ctx context.Context, studentID string, g student.Grade) error {
	if err := r.Repository.AddGrade(ctx, studentID, g); err != nil {
		return err
	}
	r.invalidate(ctx, studentID)
	return nil
}

// RecordAttendance appends and invalidates.
func (r *CachedStudentRepository) RecordAttendance(ctx context.Context, studentID string, rec student.AttendanceRecord) error {
	if err := r.Repository.RecordAttendance(ctx, studentID, rec); err != nil {
		return err
	}
	r.invalidate(ctx, studentID)
	return nil
}

// InvalidateRoster drops every cached student. Call it when the underlying
// roster was replaced outside this repository, such as a reseed.
func (r *CachedStudentRepository) InvalidateRoster(ctx context.Context) error {
	if err := r.cache.InvalidateRoster(ctx); err != nil {
		r.log.Warn("cache roster invalidation failed", logger.Err(err))
		return err
	}
	return nil
}

func (r *CachedStudentRepository) invalidate(ctx context.Context, studentID string) {
	if err := r.cache.Invalidate(ctx, studentID); err != nil {
		r.log.Warn("cache invalidation failed", logger.StudentID(studentID), logger.Err(err))
	}
}
