package metrics

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// METRICS SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// RankedStudent is a performer entry detached from the live roster.
type RankedStudent struct {
	StudentID string  `json:"studentId"`
	Name      string  `json:"name"`
	Average   float64 `json:"average"`
}

// Snapshot is a Fleet frozen at a point in time, kept for trend charts.
type Snapshot struct {
	ID                 string
	TakenAt            time.Time
	TotalStudents      int
	AverageGrade       float64
	AttendanceRate     float64
	TopPerformers      []RankedStudent
	ImprovementNeeded  []RankedStudent
	SubjectPerformance []SubjectPerformance
}

// NewSnapshot copies the values out of f.
func NewSnapshot(id string, takenAt time.Time, f Fleet) Snapshot {
	return Snapshot{
		ID:                 id,
		TakenAt:            takenAt.UTC(),
		TotalStudents:      f.TotalStudents,
		AverageGrade:       f.AverageGrade,
		AttendanceRate:     f.AttendanceRate,
		TopPerformers:      rank(f.TopPerformers),
		ImprovementNeeded:  rank(f.ImprovementNeeded),
		SubjectPerformance: append([]SubjectPerformance{}, f.SubjectPerformance...),
	}
}

func rank(ps []Performer) []RankedStudent {
	out := make([]RankedStudent, 0, len(ps))
	for _, p := range ps {
		out = append(out, RankedStudent{StudentID: p.Student.StudentID, Name: p.Student.Name, Average: p.Average})
	}
	return out
}

// SnapshotRepository persists snapshots.
type SnapshotRepository interface {
	Save(ctx context.Context, s Snapshot) error
	// Recent returns up to limit snapshots, newest first.
	Recent(ctx context.Context, limit int) ([]Snapshot, error)
}
