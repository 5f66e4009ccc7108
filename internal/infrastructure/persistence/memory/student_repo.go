// Package memory is the in-process Record Store. It backs the API when no
// database is configured and is seeded with the sample roster.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alem-hub/student-dashboard/internal/domain/shared"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
)

// StudentRepository keeps students in insertion order behind a RWMutex.
// Every read returns a copy.
type StudentRepository struct {
	mu       sync.RWMutex
	students []*student.Student
	index    map[string]int // StudentID -> position in students
	now      func() time.Time
}

var _ student.Repository = (*StudentRepository)(nil)

// NewStudentRepository returns an empty store.
func NewStudentRepository() *StudentRepository {
	return &StudentRepository{
		index: make(map[string]int),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// NewSeededStudentRepository returns a store holding SampleStudents.
func NewSeededStudentRepository() *StudentRepository {
	r := NewStudentRepository()
	for _, s := range SampleStudents() {
		r.insert(s)
	}
	return r
}

func (r *StudentRepository) insert(s *student.Student) {
	r.index[s.StudentID] = len(r.students)
	r.students = append(r.students, s.Clone())
}

func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[s.StudentID]; ok {
		return shared.ErrStudentAlreadyExists
	}
	r.insert(s)
	return nil
}

func (r *StudentRepository) GetByStudentID(ctx context.Context, studentID string) (*student.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[studentID]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return r.students[i].Clone(), nil
}

func (r *StudentRepository) List(ctx context.Context) ([]*student.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*student.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s.Clone())
	}
	return out, nil
}

func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	return r.mutate(ctx, s.StudentID, func(cur *student.Student) error {
		cur.Name = s.Name
		cur.Email = s.Email
		cur.Class = s.Class
		cur.Section = s.Section
		cur.EnrollmentDate = s.EnrollmentDate
		cur.Profile = s.Profile
		return nil
	})
}

func (r *StudentRepository) Delete(ctx context.Context, studentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[studentID]
	if !ok {
		return shared.ErrStudentNotFound
	}
	r.students = append(r.students[:i], r.students[i+1:]...)
	delete(r.index, studentID)
	for j := i; j < len(r.students); j++ {
		r.index[r.students[j].StudentID] = j
	}
	return nil
}

func (r *StudentRepository) AddGrade(ctx context.Context, studentID string, g student.Grade) error {
	return r.mutate(ctx, studentID, func(cur *student.Student) error {
		return cur.AddGrade(g)
	})
}

func (r *StudentRepository) RecordAttendance(ctx context.Context, studentID string, rec student.AttendanceRecord) error {
	return r.mutate(ctx, studentID, func(cur *student.Student) error {
		return cur.RecordAttendance(rec)
	})
}

func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.students), nil
}

// mutate applies fn to a working copy and commits it only on success.
func (r *StudentRepository) mutate(ctx context.Context, studentID string, fn func(*student.Student) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[studentID]
	if !ok {
		return shared.ErrStudentNotFound
	}
	working := r.students[i].Clone()
	if err := fn(working); err != nil {
		return err
	}
	working.UpdatedAt = r.now()
	r.students[i] = working
	return nil
}
