package command

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/student-dashboard/internal/domain/student"
	"github.com/alem-hub/student-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD STUDENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// AddStudentCommand registers a new student with no grades or attendance.
type AddStudentCommand struct {
	StudentID      string `json:"student_id" validate:"required,max=32"`
	Name           string `json:"name" validate:"required,max=200"`
	Email          string `json:"email" validate:"required,email,max=254"`
	Class          string `json:"class" validate:"required,max=64"`
	Section        string `json:"section" validate:"required,max=16"`
	EnrollmentDate string `json:"enrollment_date" validate:"omitempty,date"`

	Phone         string `json:"phone" validate:"omitempty,max=32"`
	Address       string `json:"address"`
	ParentContact string `json:"parent_contact" validate:"omitempty,max=64"`
	AvatarURL     string `json:"avatar_url" validate:"omitempty,url"`
}

// normalize trims every text field.
func (c *AddStudentCommand) normalize() {
	for _, f := range []*string{
		&c.StudentID, &c.Name, &c.Email, &c.Class, &c.Section, &c.EnrollmentDate,
		&c.Phone, &c.Address, &c.ParentContact, &c.AvatarURL,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// AddStudentResult identifies the created student.
type AddStudentResult struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AddStudentHandler handles AddStudentCommand.
type AddStudentHandler struct {
	students student.Repository
	log      *logger.Logger
	newID    func() string
}

// NewAddStudentHandler creates a new handler.
func NewAddStudentHandler(students student.Repository, log *logger.Logger) *AddStudentHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AddStudentHandler{
		students: students,
		log:      log.Named("add_student"),
		newID:    uuid.NewString,
	}
}

// Handle validates cmd and creates the student. A taken StudentID returns
// shared.ErrStudentAlreadyExists.
func (h *AddStudentHandler) Handle(ctx context.Context, cmd AddStudentCommand) (*AddStudentResult, error) {
	cmd.normalize()
	if err := validateStruct("AddStudent", &cmd); err != nil {
		return nil, err
	}

	enrolled, err := dateOrToday(cmd.EnrollmentDate)
	if err != nil {
		return nil, err
	}

	s, err := student.NewStudent(student.NewStudentParams{
		ID:             h.newID(),
		StudentID:      cmd.StudentID,
		Name:           cmd.Name,
		Email:          cmd.Email,
		Class:          cmd.Class,
		Section:        cmd.Section,
		EnrollmentDate: enrolled,
		Profile: student.Profile{
			Phone:         cmd.Phone,
			Address:       cmd.Address,
			ParentContact: cmd.ParentContact,
			AvatarURL:     cmd.AvatarURL,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := h.students.Create(ctx, s); err != nil {
		return nil, err
	}

	h.log.Info("student added",
		logger.StudentID(s.StudentID),
		logger.Class(s.Class),
		logger.Section(s.Section),
	)

	return &AddStudentResult{ID: s.ID, StudentID: s.StudentID, CreatedAt: s.CreatedAt}, nil
}
