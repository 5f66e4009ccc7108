package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alem-hub/student-dashboard/internal/domain/metrics"
)

// SnapshotRepository stores metrics snapshots. Performer lists and the
// subject breakdown are kept as JSONB.
type SnapshotRepository struct {
	conn *Connection
}

var _ metrics.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(conn *Connection) *SnapshotRepository {
	return &SnapshotRepository{conn: conn}
}

// Save inserts s.
func (r *SnapshotRepository) Save(ctx context.Context, s metrics.Snapshot) error {
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	top, err := json.Marshal(s.TopPerformers)
	if err != nil {
		return fmt.Errorf("failed to marshal top performers: %w", err)
	}
	improve, err := json.Marshal(s.ImprovementNeeded)
	if err != nil {
		return fmt.Errorf("failed to marshal improvement list: %w", err)
	}
	subjects, err := json.Marshal(s.SubjectPerformance)
	if err != nil {
		return fmt.Errorf("failed to marshal subject performance: %w", err)
	}

	_, err = r.conn.Exec(ctx, `
		INSERT INTO metrics_snapshots (
			id, taken_at, total_students, average_grade, attendance_rate,
			top_performers, improvement_needed, subject_performance
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.TakenAt, s.TotalStudents, s.AverageGrade, s.AttendanceRate,
		top, improve, subjects,
	)
	if err != nil {
		return fmt.Errorf("failed to save metrics snapshot: %w", err)
	}
	return nil
}

// Recent returns up to limit snapshots, newest first.
func (r *SnapshotRepository) Recent(ctx context.Context, limit int) ([]metrics.Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	rows, err := r.conn.Query(ctx, `
		SELECT id::text, taken_at, total_students, average_grade, attendance_rate,
		       top_performers, improvement_needed, subject_performance
		FROM metrics_snapshots
		ORDER BY taken_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]metrics.Snapshot, 0, limit)
	for rows.Next() {
		var (
			s                      metrics.Snapshot
			top, improve, subjects []byte
		)
		if err := rows.Scan(&s.ID, &s.TakenAt, &s.TotalStudents, &s.AverageGrade, &s.AttendanceRate,
			&top, &improve, &subjects); err != nil {
			return nil, fmt.Errorf("failed to scan metrics snapshot: %w", err)
		}
		if err := json.Unmarshal(top, &s.TopPerformers); err != nil {
			return nil, fmt.Errorf("snapshot %s: top performers: %w", s.ID, err)
		}
		if err := json.Unmarshal(improve, &s.ImprovementNeeded); err != nil {
			return nil, fmt.Errorf("snapshot %s: improvement list: %w", s.ID, err)
		}
		if err := json.Unmarshal(subjects, &s.SubjectPerformance); err != nil {
			return nil, fmt.Errorf("snapshot %s: subject performance: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
