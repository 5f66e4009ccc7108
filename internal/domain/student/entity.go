package student

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alem-hub/student-dashboard/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Profile holds optional contact details.
type Profile struct {
	Phone         string
	Address       string
	ParentContact string
	AvatarURL     string
}

// IsEmpty reports whether no contact detail is set.
func (p Profile) IsEmpty() bool {
	return p == Profile{}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is the aggregate root. It exclusively owns its grades and
// attendance records.
type Student struct {
	// ID is the internal UUID.
	ID string

	// StudentID is the school-issued identifier, unique across the roster.
	StudentID string

	Name           string
	Email          string
	Class          string
	Section        string
	EnrollmentDate time.Time

	Grades     []Grade
	Attendance []AttendanceRecord

	Profile Profile

	CreatedAt time.Time
	UpdatedAt time.Time
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NewStudentParams are the inputs to NewStudent.
type NewStudentParams struct {
	ID             string
	StudentID      string
	Name           string
	Email          string
	Class          string
	Section        string
	EnrollmentDate time.Time
	Profile        Profile
	// Now overrides the creation time. Zero means time.Now.
	Now time.Time
}

// NewStudent validates params and returns a student with no grades or
// attendance.
func NewStudent(p NewStudentParams) (*Student, error) {
	now := p.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s := &Student{
		ID:             strings.TrimSpace(p.ID),
		StudentID:      strings.TrimSpace(p.StudentID),
		Name:           strings.TrimSpace(p.Name),
		Email:          strings.TrimSpace(p.Email),
		Class:          strings.TrimSpace(p.Class),
		Section:        strings.TrimSpace(p.Section),
		EnrollmentDate: p.EnrollmentDate,
		Profile:        p.Profile,
		Grades:         []Grade{},
		Attendance:     []AttendanceRecord{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks identity and contact fields, then every owned record.
func (s *Student) Validate() error {
	required := []struct {
		name, value string
	}{
		{"id", s.ID},
		{"student ID", s.StudentID},
		{"name", s.Name},
		{"email", s.Email},
		{"class", s.Class},
		{"section", s.Section},
	}
	for _, f := range required {
		if f.value == "" {
			return shared.Validationf("student", "Validate", "%s is required", f.name)
		}
	}
	if !ValidEmail(s.Email) {
		return shared.ErrInvalidEmail
	}
	if s.EnrollmentDate.IsZero() {
		return shared.Validationf("student", "Validate", "enrollment date is required")
	}
	for i, g := range s.Grades {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("grade %d: %w", i, err)
		}
	}
	for i, r := range s.Attendance {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("attendance %d: %w", i, err)
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// AddGrade appends a validated grade.
func (s *Student) AddGrade(g Grade) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.Grades = append(s.Grades, g)
	s.touch()
	return nil
}

// RecordAttendance appends a validated attendance record.
func (s *Student) RecordAttendance(r AttendanceRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.Attendance = append(s.Attendance, r)
	s.touch()
	return nil
}

// UpdateProfile replaces the contact details.
func (s *Student) UpdateProfile(p Profile) {
	s.Profile = p
	s.touch()
}

func (s *Student) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// String returns a short representation for logs.
func (s *Student) String() string {
	return fmt.Sprintf("Student{StudentID: %s, Name: %s, Class: %s/%s, Grades: %d}",
		s.StudentID, s.Name, s.Class, s.Section, len(s.Grades))
}

// Clone returns a deep copy. Grades and attendance slices are not shared.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}
	c := *s
	c.Grades = append(make([]Grade, 0, len(s.Grades)), s.Grades...)
	c.Attendance = append(make([]AttendanceRecord, 0, len(s.Attendance)), s.Attendance...)
	return &c
}
