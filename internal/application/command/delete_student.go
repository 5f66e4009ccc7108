package command

import (
	"context"
	"strings"

	"github.com/alem-hub/student-dashboard/internal/domain/shared"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
	"github.com/alem-hub/student-dashboard/pkg/logger"
)

// DeleteStudentHandler removes a student with all grades and attendance.
type DeleteStudentHandler struct {
	students student.Repository
	log      *logger.Logger
}

// NewDeleteStudentHandler creates a new handler.
func NewDeleteStudentHandler(students student.Repository, log *logger.Logger) *DeleteStudentHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &DeleteStudentHandler{students: students, log: log.Named("delete_student")}
}

// Handle deletes the student with the given school-issued ID.
func (h *DeleteStudentHandler) Handle(ctx context.Context, studentID string) error {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return shared.Validationf("command", "DeleteStudent", "student_id is required")
	}
	if err := h.students.Delete(ctx, studentID); err != nil {
		return err
	}
	h.log.Info("student deleted", logger.StudentID(studentID))
	return nil
}
