package command

import (
	"context"
	"strings"

	"github.com/alem-hub/student-dashboard/internal/domain/student"
	"github.com/alem-hub/student-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD GRADE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RecordGradeCommand appends a grade to a student. The percentage is
// derived from the marks; an empty letter is derived from the percentage.
type RecordGradeCommand struct {
	StudentID     string  `json:"student_id" validate:"required"`
	Subject       string  `json:"subject" validate:"required,max=64"`
	Assignment    string  `json:"assignment" validate:"required,max=200"`
	MaxMarks      float64 `json:"max_marks" validate:"gt=0"`
	ObtainedMarks float64 `json:"obtained_marks" validate:"gte=0,ltefield=MaxMarks"`
	Letter        string  `json:"letter" validate:"omitempty,max=4"`
	Date          string  `json:"date" validate:"omitempty,date"`
	Category      string  `json:"category" validate:"required,oneof=exam assignment quiz project"`
}

// RecordGradeHandler handles RecordGradeCommand.
type RecordGradeHandler struct {
	students student.Repository
	log      *logger.Logger
}

// NewRecordGradeHandler creates a new handler.
func NewRecordGradeHandler(students student.Repository, log *logger.Logger) *RecordGradeHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RecordGradeHandler{students: students, log: log.Named("record_grade")}
}

// Handle validates cmd and stores the grade. It returns the stored grade.
func (h *RecordGradeHandler) Handle(ctx context.Context, cmd RecordGradeCommand) (*student.Grade, error) {
	cmd.StudentID = strings.TrimSpace(cmd.StudentID)
	cmd.Category = strings.ToLower(strings.TrimSpace(cmd.Category))
	if err := validateStruct("RecordGrade", &cmd); err != nil {
		return nil, err
	}

	date, err := dateOrToday(cmd.Date)
	if err != nil {
		return nil, err
	}

	g, err := student.NewGrade(student.NewGradeParams{
		Subject:       cmd.Subject,
		Assignment:    cmd.Assignment,
		MaxMarks:      cmd.MaxMarks,
		ObtainedMarks: cmd.ObtainedMarks,
		Letter:        cmd.Letter,
		Date:          date,
		Category:      student.Category(cmd.Category),
	})
	if err != nil {
		return nil, err
	}

	if err := h.students.AddGrade(ctx, cmd.StudentID, g); err != nil {
		return nil, err
	}

	h.log.Info("grade recorded",
		logger.StudentID(cmd.StudentID),
		logger.Subject(g.Subject),
		logger.Float64("percentage", g.Percentage),
	)
	return &g, nil
}
