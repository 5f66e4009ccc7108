package student

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository stores Student aggregates. Lookups are by the school-issued
// StudentID. Implementations return copies; mutating a returned Student
// has no effect until it is written back through AddGrade, RecordAttendance
// or Update.
type Repository interface {
	// Create returns shared.ErrStudentAlreadyExists when the StudentID is taken.
	Create(ctx context.Context, s *Student) error

	// GetByStudentID returns shared.ErrStudentNotFound when absent.
	GetByStudentID(ctx context.Context, studentID string) (*Student, error)

	// List returns every student in insertion order.
	List(ctx context.Context) ([]*Student, error)

	// Update replaces the identity, contact and profile fields.
	Update(ctx context.Context, s *Student) error

	// Delete removes the student with all owned records.
	Delete(ctx context.Context, studentID string) error

	// AddGrade appends one grade to the student.
	AddGrade(ctx context.Context, studentID string, g Grade) error

	// RecordAttendance appends one attendance record to the student.
	RecordAttendance(ctx context.Context, studentID string, r AttendanceRecord) error

	// Count returns the roster size.
	Count(ctx context.Context) (int, error)
}

// Cache holds serialized students by StudentID.
type Cache interface {
	Get(ctx context.Context, studentID string) (*Student, error)
	Set(ctx context.Context, s *Student) error
	Invalidate(ctx context.Context, studentID string) error
	InvalidateRoster(ctx context.Context) error
}
