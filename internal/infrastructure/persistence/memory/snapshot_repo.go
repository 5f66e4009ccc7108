package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/alem-hub/student-dashboard/internal/domain/metrics"
)

// SnapshotRepository keeps metrics snapshots in process memory.
type SnapshotRepository struct {
	mu        sync.RWMutex
	snapshots []metrics.Snapshot
}

var _ metrics.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates an empty SnapshotRepository.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{}
}

// Save appends s.
func (r *SnapshotRepository) Save(_ context.Context, s metrics.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
	return nil
}

// Recent returns up to limit snapshots, newest first.
func (r *SnapshotRepository) Recent(_ context.Context, limit int) ([]metrics.Snapshot, error) {
	r.mu.RLock()
	out := append([]metrics.Snapshot(nil), r.snapshots...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
