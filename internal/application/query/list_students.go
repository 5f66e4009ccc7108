package query

import (
	"context"

	"github.com/alem-hub/student-dashboard/internal/domain/shared"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST STUDENTS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListStudentsQuery filters the roster. Empty Class or Section means all.
type ListStudentsQuery struct {
	Search  string
	Class   string
	Section string
}

// ListStudentsResult is the filtered roster in insertion order.
type ListStudentsResult struct {
	Students []StudentSummaryDTO `json:"students"`

	// Total is the unfiltered roster size.
	Total int `json:"total"`

	ClassOptions   []string `json:"class_options"`
	SectionOptions []string `json:"section_options"`
}

// ListStudentsHandler serves the roster screen.
type ListStudentsHandler struct {
	students student.Repository
}

// NewListStudentsHandler creates a new handler.
func NewListStudentsHandler(students student.Repository) *ListStudentsHandler {
	return &ListStudentsHandler{students: students}
}

// Handle runs the query.
func (h *ListStudentsHandler) Handle(ctx context.Context, q ListStudentsQuery) (*ListStudentsResult, error) {
	roster, err := h.students.List(ctx)
	if err != nil {
		return nil, shared.WrapError("query", "ListStudents", shared.ErrServiceUnavailable, "failed to load students", err)
	}

	filter := student.Filter{
		Search:  q.Search,
		Class:   q.Class,
		Section: q.Section,
	}
	matched := filter.Apply(roster)

	out := make([]StudentSummaryDTO, 0, len(matched))
	for _, s := range matched {
		out = append(out, toSummaryDTO(s))
	}

	return &ListStudentsResult{
		Students:       out,
		Total:          len(roster),
		ClassOptions:   student.ClassOptions(roster),
		SectionOptions: student.SectionOptions(roster),
	}, nil
}
