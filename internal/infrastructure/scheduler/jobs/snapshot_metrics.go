// Package jobs contains the scheduled jobs run by the worker.
package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/student-dashboard/internal/domain/metrics"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
	"github.com/alem-hub/student-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT METRICS JOB
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotMetricsJob computes fleet metrics from the roster and appends them
// to the snapshot history.
type SnapshotMetricsJob struct {
	students  student.Repository
	snapshots metrics.SnapshotRepository
	policy    metrics.Policy
	log       *logger.Logger

	now   func() time.Time
	newID func() string

	last atomic.Pointer[metrics.Snapshot]
}

// NewSnapshotMetricsJob creates the job.
func NewSnapshotMetricsJob(
	students student.Repository,
	snapshots metrics.SnapshotRepository,
	policy metrics.Policy,
	log *logger.Logger,
) *SnapshotMetricsJob {
	if log == nil {
		log = logger.Nop()
	}
	return &SnapshotMetricsJob{
		students:  students,
		snapshots: snapshots,
		policy:    policy,
		log:       log.Named("snapshot_metrics"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
	}
}

// Name returns the job name.
func (j *SnapshotMetricsJob) Name() string {
	return "snapshot_metrics"
}

// Description returns a human-readable description.
func (j *SnapshotMetricsJob) Description() string {
	return "Stores a point-in-time copy of the dashboard fleet metrics"
}

// Run executes the job.
func (j *SnapshotMetricsJob) Run(ctx context.Context) error {
	roster, err := j.students.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	fleet := metrics.FleetMetricsWith(roster, j.policy)
	snap := metrics.NewSnapshot(j.newID(), j.now(), fleet)

	if err := j.snapshots.Save(ctx, snap); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	j.last.Store(&snap)

	j.log.Info("metrics snapshot stored",
		logger.String("snapshot_id", snap.ID),
		logger.Count(snap.TotalStudents),
		logger.Float64("average_grade", metrics.Round1(snap.AverageGrade)),
		logger.Float64("attendance_rate", metrics.Round1(snap.AttendanceRate)),
	)
	return nil
}

// Last returns the most recent snapshot stored by this job, or nil.
func (j *SnapshotMetricsJob) Last() *metrics.Snapshot {
	return j.last.Load()
}
