package command

import (
	"context"
	"strings"

	"github.com/alem-hub/student-dashboard/internal/domain/student"
	"github.com/alem-hub/student-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK ATTENDANCE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// MarkAttendanceCommand appends an attendance record. An empty Subject
// marks the whole day.
type MarkAttendanceCommand struct {
	StudentID string `json:"student_id" validate:"required"`
	Date      string `json:"date" validate:"omitempty,date"`
	Status    string `json:"status" validate:"required,oneof=present absent late"`
	Subject   string `json:"subject" validate:"omitempty,max=64"`
}

// MarkAttendanceHandler handles MarkAttendanceCommand.
type MarkAttendanceHandler struct {
	students student.Repository
	log      *logger.Logger
}

// NewMarkAttendanceHandler creates a new handler.
func NewMarkAttendanceHandler(students student.Repository, log *logger.Logger) *MarkAttendanceHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &MarkAttendanceHandler{students: students, log: log.Named("mark_attendance")}
}

// Handle validates cmd and stores the record.
func (h *MarkAttendanceHandler) Handle(ctx context.Context, cmd MarkAttendanceCommand) (*student.AttendanceRecord, error) {
	cmd.StudentID = strings.TrimSpace(cmd.StudentID)
	cmd.Status = strings.ToLower(strings.TrimSpace(cmd.Status))
	if err := validateStruct("MarkAttendance", &cmd); err != nil {
		return nil, err
	}

	date, err := dateOrToday(cmd.Date)
	if err != nil {
		return nil, err
	}

	rec, err := student.NewAttendanceRecord(date, student.AttendanceStatus(cmd.Status), strings.TrimSpace(cmd.Subject))
	if err != nil {
		return nil, err
	}

	if err := h.students.RecordAttendance(ctx, cmd.StudentID, rec); err != nil {
		return nil, err
	}

	h.log.Info("attendance marked",
		logger.StudentID(cmd.StudentID),
		logger.String("status", cmd.Status),
	)
	return &rec, nil
}
