package command

import (
	"context"

	"github.com/alem-hub/student-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// IMPORT STUDENTS COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// ImportRow is one roster line. Line is the source row number used in
// error reports.
type ImportRow struct {
	Line int
	AddStudentCommand
}

// ImportStudentsCommand bulk-adds students.
type ImportStudentsCommand struct {
	Rows []ImportRow
}

// ImportRowError reports a line that was not imported.
type ImportRowError struct {
	Line      int    `json:"line"`
	StudentID string `json:"student_id,omitempty"`
	Reason    string `json:"reason"`
}

// ImportStudentsResult summarizes an import.
type ImportStudentsResult struct {
	Imported int              `json:"imported"`
	Failed   []ImportRowError `json:"failed"`
}

// ImportStudentsHandler adds every row through AddStudentHandler. A bad
// row is reported and skipped; the rest are still imported.
type ImportStudentsHandler struct {
	add *AddStudentHandler
	log *logger.Logger
}

// NewImportStudentsHandler creates a new handler.
func NewImportStudentsHandler(add *AddStudentHandler, log *logger.Logger) *ImportStudentsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ImportStudentsHandler{add: add, log: log.Named("import_students")}
}

// Handle imports cmd.Rows in order. Only context cancellation aborts the
// import.
func (h *ImportStudentsHandler) Handle(ctx context.Context, cmd ImportStudentsCommand) (*ImportStudentsResult, error) {
	res := &ImportStudentsResult{Failed: []ImportRowError{}}
	for _, row := range cmd.Rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if _, err := h.add.Handle(ctx, row.AddStudentCommand); err != nil {
			res.Failed = append(res.Failed, ImportRowError{
				Line:      row.Line,
				StudentID: row.StudentID,
				Reason:    err.Error(),
			})
			continue
		}
		res.Imported++
	}

	h.log.Info("roster imported",
		logger.Count(res.Imported),
		logger.Int("failed", len(res.Failed)),
	)
	return res, nil
}
