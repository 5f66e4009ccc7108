package query

import (
	"context"
	"io"

	"github.com/alem-hub/student-dashboard/internal/domain/metrics"
	"github.com/alem-hub/student-dashboard/internal/domain/shared"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPORT ROSTER QUERY
// ══════════════════════════════════════════════════════════════════════════════

// WorkbookWriter renders the roster and fleet metrics to w.
type WorkbookWriter func(w io.Writer, students []*student.Student, fleet metrics.Fleet) error

// ExportRosterHandler writes the full roster as a report.
type ExportRosterHandler struct {
	students student.Repository
	policy   metrics.Policy
	write    WorkbookWriter
}

// NewExportRosterHandler creates a new handler.
func NewExportRosterHandler(students student.Repository, policy metrics.Policy, write WorkbookWriter) *ExportRosterHandler {
	return &ExportRosterHandler{students: students, policy: policy, write: write}
}

// Handle renders the report into w.
func (h *ExportRosterHandler) Handle(ctx context.Context, w io.Writer) error {
	roster, err := h.students.List(ctx)
	if err != nil {
		return shared.WrapError("query", "ExportRoster", shared.ErrServiceUnavailable, "failed to load students", err)
	}
	return h.write(w, roster, metrics.FleetMetricsWith(roster, h.policy))
}
