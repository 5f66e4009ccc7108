package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/student-dashboard/internal/domain/shared"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository on PostgreSQL. The
// aggregate is spread over three tables; writes that touch more than one
// of them run in a transaction.
type StudentRepository struct {
	conn *Connection
}

var _ student.Repository = (*StudentRepository)(nil)

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

const studentColumns = `
	id, student_id, name, email, class, section, enrollment_date,
	phone, address, parent_contact, avatar_url, created_at, updated_at`

const gradeColumns = `
	student_uuid, subject, assignment, max_marks, obtained_marks,
	percentage, letter, graded_on, category`

const attendanceColumns = `student_uuid, attended_on, status, subject`

// UUID columns are read back as text.
const (
	studentSelect = `
	id::text, student_id, name, email, class, section, enrollment_date,
	phone, address, parent_contact, avatar_url, created_at, updated_at`
	gradeSelect = `
	student_uuid::text, subject, assignment, max_marks, obtained_marks,
	percentage, letter, graded_on, category`
	attendanceSelect = `student_uuid::text, attended_on, status, subject`
)

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// Create inserts the student together with any grades and attendance it
// already holds.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO students (`+studentColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			s.ID, s.StudentID, s.Name, s.Email, s.Class, s.Section, s.EnrollmentDate,
			s.Profile.Phone, s.Profile.Address, s.Profile.ParentContact, s.Profile.AvatarURL,
			s.CreatedAt, s.UpdatedAt,
		)
		if err != nil {
			return err
		}
		for _, g := range s.Grades {
			if err := insertGrade(ctx, tx, s.ID, g); err != nil {
				return err
			}
		}
		for _, a := range s.Attendance {
			if err := insertAttendance(ctx, tx, s.ID, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// Update replaces the identity and profile columns.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	tag, err := r.conn.Exec(ctx, `
		UPDATE students SET
			name = $1, email = $2, class = $3, section = $4, enrollment_date = $5,
			phone = $6, address = $7, parent_contact = $8, avatar_url = $9,
			updated_at = $10
		WHERE student_id = $11`,
		s.Name, s.Email, s.Class, s.Section, s.EnrollmentDate,
		s.Profile.Phone, s.Profile.Address, s.Profile.ParentContact, s.Profile.AvatarURL,
		time.Now().UTC(), s.StudentID,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}
	return nil
}

// Delete removes the student. Grades and attendance cascade.
func (r *StudentRepository) Delete(ctx context.Context, studentID string) error {
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	tag, err := r.conn.Exec(ctx, `DELETE FROM students WHERE student_id = $1`, studentID)
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}
	return nil
}

// AddGrade locks the student row, inserts the grade and bumps updated_at.
func (r *StudentRepository) AddGrade(ctx context.Context, studentID string, g student.Grade) error {
	if err := g.Validate(); err != nil {
		return err
	}
	return r.appendRecord(ctx, studentID, func(tx pgx.Tx, uuid string) error {
		return insertGrade(ctx, tx, uuid, g)
	})
}

// RecordAttendance locks the student row, inserts the record and bumps
// updated_at.
func (r *StudentRepository) RecordAttendance(ctx context.Context, studentID string, rec student.AttendanceRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	return r.appendRecord(ctx, studentID, func(tx pgx.Tx, uuid string) error {
		return insertAttendance(ctx, tx, uuid, rec)
	})
}

func (r *StudentRepository) appendRecord(ctx context.Context, studentID string, insert func(pgx.Tx, string) error) error {
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx,
			`SELECT id::text FROM students WHERE student_id = $1 FOR UPDATE`, studentID,
		).Scan(&id)
		if IsNoRows(err) {
			return shared.ErrStudentNotFound
		}
		if err != nil {
			return err
		}

		if err := insert(tx, id); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE students SET updated_at = $1 WHERE id = $2`, time.Now().UTC(), id)
		return err
	})
	if err != nil {
		if shared.IsNotFound(err) {
			return err
		}
		if IsCheckViolation(err) {
			return shared.WrapError("student", "Append", shared.ErrValidation, "record rejected by database", err)
		}
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

func insertGrade(ctx context.Context, q pgx.Tx, studentUUID string, g student.Grade) error {
	_, err := q.Exec(ctx, `
		INSERT INTO grades (`+gradeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		studentUUID, g.Subject, g.Assignment, g.MaxMarks, g.ObtainedMarks,
		g.Percentage, g.Letter, g.Date, string(g.Category),
	)
	return err
}

func insertAttendance(ctx context.Context, q pgx.Tx, studentUUID string, a student.AttendanceRecord) error {
	_, err := q.Exec(ctx, `
		INSERT INTO attendance_records (`+attendanceColumns+`)
		VALUES ($1, $2, $3, $4)`,
		studentUUID, a.Date, string(a.Status), a.Subject,
	)
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// GetByStudentID loads one aggregate.
func (r *StudentRepository) GetByStudentID(ctx context.Context, studentID string) (*student.Student, error) {
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	var out *student.Student
	err := r.conn.WithTx(ctx, ReadOnlyTxOptions(), func(tx pgx.Tx) error {
		s, err := scanStudent(tx.QueryRow(ctx,
			`SELECT `+studentSelect+` FROM students WHERE student_id = $1`, studentID))
		if err != nil {
			return err
		}
		byID := map[string]*student.Student{s.ID: s}
		if err := loadGrades(ctx, tx, byID, `WHERE student_uuid = $1`, s.ID); err != nil {
			return err
		}
		if err := loadAttendance(ctx, tx, byID, `WHERE student_uuid = $1`, s.ID); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List loads every aggregate in insertion order with three queries.
func (r *StudentRepository) List(ctx context.Context) ([]*student.Student, error) {
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	var out []*student.Student
	err := r.conn.WithTx(ctx, ReadOnlyTxOptions(), func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `SELECT `+studentSelect+` FROM students ORDER BY seq`)
		if err != nil {
			return fmt.Errorf("failed to list students: %w", err)
		}
		students, err := scanStudents(rows)
		if err != nil {
			return err
		}

		byID := make(map[string]*student.Student, len(students))
		for _, s := range students {
			byID[s.ID] = s
		}
		if err := loadGrades(ctx, tx, byID, ``); err != nil {
			return err
		}
		if err := loadAttendance(ctx, tx, byID, ``); err != nil {
			return err
		}
		out = students
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	ctx, cancel := r.conn.withTimeout(ctx)
	defer cancel()

	var n int
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return n, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanStudent(row pgx.Row) (*student.Student, error) {
	s := &student.Student{Grades: []student.Grade{}, Attendance: []student.AttendanceRecord{}}
	err := row.Scan(
		&s.ID, &s.StudentID, &s.Name, &s.Email, &s.Class, &s.Section, &s.EnrollmentDate,
		&s.Profile.Phone, &s.Profile.Address, &s.Profile.ParentContact, &s.Profile.AvatarURL,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}
	return s, nil
}

func scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	defer rows.Close()

	out := make([]*student.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func loadGrades(ctx context.Context, q pgx.Tx, byID map[string]*student.Student, where string, args ...any) error {
	rows, err := q.Query(ctx, `SELECT `+gradeSelect+` FROM grades `+where+` ORDER BY id`, args...)
	if err != nil {
		return fmt.Errorf("failed to load grades: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			owner    string
			g        student.Grade
			category string
		)
		if err := rows.Scan(&owner, &g.Subject, &g.Assignment, &g.MaxMarks, &g.ObtainedMarks,
			&g.Percentage, &g.Letter, &g.Date, &category); err != nil {
			return fmt.Errorf("failed to scan grade: %w", err)
		}
		g.Category = student.Category(category)
		if s, ok := byID[owner]; ok {
			s.Grades = append(s.Grades, g)
		}
	}
	return rows.Err()
}

func loadAttendance(ctx context.Context, q pgx.Tx, byID map[string]*student.Student, where string, args ...any) error {
	rows, err := q.Query(ctx, `SELECT `+attendanceSelect+` FROM attendance_records `+where+` ORDER BY id`, args...)
	if err != nil {
		return fmt.Errorf("failed to load attendance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			owner  string
			rec    student.AttendanceRecord
			status string
		)
		if err := rows.Scan(&owner, &rec.Date, &status, &rec.Subject); err != nil {
			return fmt.Errorf("failed to scan attendance: %w", err)
		}
		rec.Status = student.AttendanceStatus(status)
		if s, ok := byID[owner]; ok {
			s.Attendance = append(s.Attendance, rec)
		}
	}
	return rows.Err()
}
