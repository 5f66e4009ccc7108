package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fail(context.Context) error { return errBoom }
func ok(context.Context) error   { return nil }

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	now := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)
	var transitions []string

	cb := New("test",
		WithFailureThreshold(2),
		WithSuccessThreshold(1),
		WithTimeout(10*time.Second),
		WithOnStateChange(func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		}),
	)
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, fail), errBoom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, fail), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.True(t, IsRejected(err))
	assert.False(t, called)

	now = now.Add(10 * time.Second)
	require.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, StateClosed, cb.State())

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
	assert.Equal(t, 3, cb.Counts().Requests)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)
	cb := New("test", WithFailureThreshold(1), WithTimeout(time.Second))
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	require.Equal(t, StateOpen, cb.State())

	now = now.Add(time.Second)
	assert.ErrorIs(t, cb.Execute(ctx, fail), errBoom)
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, ok), ErrCircuitOpen)

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	assert.Zero(t, cb.Counts().Requests)
}

func TestCacheBreaker_IgnoresMisses(t *testing.T) {
	errMiss := errors.New("miss")
	cb := CacheBreaker(func(err error) bool { return errors.Is(err, errMiss) }, nil)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_ = cb.Execute(ctx, func(context.Context) error { return errMiss })
	}
	assert.Equal(t, StateClosed, cb.State())

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, fail)
	}
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, "redis-cache", cb.Name())
}

func TestCircuitBreaker_HalfOpenRequestBudget(t *testing.T) {
	now := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)
	cb := New("test",
		WithFailureThreshold(1),
		WithSuccessThreshold(2),
		WithTimeout(time.Second),
		WithMaxHalfOpenRequests(2),
	)
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	require.Equal(t, StateOpen, cb.State())
	now = now.Add(time.Second)

	var second, third error
	err := cb.Execute(ctx, func(ctx context.Context) error {
		second = cb.Execute(ctx, func(ctx context.Context) error {
			third = cb.Execute(ctx, ok)
			return nil
		})
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, second)
	assert.ErrorIs(t, third, ErrTooManyRequests)
	assert.True(t, IsRejected(third))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_IsFailureClassifier(t *testing.T) {
	errInput := errors.New("bad input")
	cb := New("test",
		WithFailureThreshold(1),
		WithIsFailure(func(err error) bool { return !errors.Is(err, errInput) }),
	)
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return errInput }), errInput)
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 1, cb.Counts().TotalSuccesses)

	_ = cb.Execute(ctx, fail)
	assert.Equal(t, StateOpen, cb.State())
}
