package query

import (
	"context"
	"time"

	"github.com/alem-hub/student-dashboard/internal/domain/metrics"
	"github.com/alem-hub/student-dashboard/internal/domain/shared"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DASHBOARD QUERY
// Fleet-wide figures for the overview screen.
// ══════════════════════════════════════════════════════════════════════════════

// GetDashboardQuery holds the dashboard parameters.
type GetDashboardQuery struct {
	// TrendPoints is how many stored snapshots to include, newest first.
	// Zero omits the trend.
	TrendPoints int
}

// Validate clamps TrendPoints to [0, 90].
func (q *GetDashboardQuery) Validate() error {
	if q.TrendPoints < 0 {
		return shared.Validationf("query", "GetDashboard", "trend points cannot be negative")
	}
	if q.TrendPoints > 90 {
		q.TrendPoints = 90
	}
	return nil
}

// TrendPointDTO is one stored snapshot.
type TrendPointDTO struct {
	TakenAt        time.Time `json:"taken_at"`
	TotalStudents  int       `json:"total_students"`
	AverageGrade   float64   `json:"average_grade"`
	AttendanceRate float64   `json:"attendance_rate"`
}

// DashboardResult is the overview payload.
type DashboardResult struct {
	TotalStudents      int                     `json:"total_students"`
	AverageGrade       float64                 `json:"average_grade"`
	AttendanceRate     float64                 `json:"attendance_rate"`
	TopPerformers      []PerformerDTO          `json:"top_performers"`
	ImprovementNeeded  []PerformerDTO          `json:"improvement_needed"`
	SubjectPerformance []SubjectPerformanceDTO `json:"subject_performance"`
	Trend              []TrendPointDTO         `json:"trend,omitempty"`
	GeneratedAt        time.Time               `json:"generated_at"`
}

// GetDashboardHandler computes the dashboard from the full roster.
type GetDashboardHandler struct {
	students  student.Repository
	snapshots metrics.SnapshotRepository
	policy    metrics.Policy
}

// NewGetDashboardHandler creates a new handler. snapshots may be nil, in
// which case no trend is reported.
func NewGetDashboardHandler(
	students student.Repository,
	snapshots metrics.SnapshotRepository,
	policy metrics.Policy,
) *GetDashboardHandler {
	return &GetDashboardHandler{
		students:  students,
		snapshots: snapshots,
		policy:    policy,
	}
}

// Handle runs the query.
func (h *GetDashboardHandler) Handle(ctx context.Context, q GetDashboardQuery) (*DashboardResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	roster, err := h.students.List(ctx)
	if err != nil {
		return nil, shared.WrapError("query", "GetDashboard", shared.ErrServiceUnavailable, "failed to load students", err)
	}

	fleet := metrics.FleetMetricsWith(roster, h.policy)
	result := &DashboardResult{
		TotalStudents:      fleet.TotalStudents,
		AverageGrade:       metrics.Round1(fleet.AverageGrade),
		AttendanceRate:     metrics.Round1(fleet.AttendanceRate),
		TopPerformers:      toPerformerDTOs(fleet.TopPerformers),
		ImprovementNeeded:  toPerformerDTOs(fleet.ImprovementNeeded),
		SubjectPerformance: toSubjectPerformanceDTOs(fleet.SubjectPerformance),
		GeneratedAt:        time.Now().UTC(),
	}

	if q.TrendPoints > 0 && h.snapshots != nil {
		snaps, err := h.snapshots.Recent(ctx, q.TrendPoints)
		if err != nil {
			return nil, shared.WrapError("query", "GetDashboard", shared.ErrServiceUnavailable, "failed to load snapshots", err)
		}
		result.Trend = make([]TrendPointDTO, 0, len(snaps))
		for _, s := range snaps {
			result.Trend = append(result.Trend, TrendPointDTO{
				TakenAt:        s.TakenAt,
				TotalStudents:  s.TotalStudents,
				AverageGrade:   metrics.Round1(s.AverageGrade),
				AttendanceRate: metrics.Round1(s.AttendanceRate),
			})
		}
	}

	return result, nil
}
