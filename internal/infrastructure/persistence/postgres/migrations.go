package postgres

// GetMigrations returns the embedded schema migrations in version order.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_students", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_grades_and_attendance", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_metrics_snapshots", UpSQL: migration003Up, DownSQL: migration003Down},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY,
    seq BIGSERIAL NOT NULL,
    student_id VARCHAR(32) NOT NULL UNIQUE,
    name VARCHAR(200) NOT NULL,
    email VARCHAR(254) NOT NULL,
    class VARCHAR(64) NOT NULL,
    section VARCHAR(16) NOT NULL,
    enrollment_date DATE NOT NULL,
    phone VARCHAR(32) NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    parent_contact VARCHAR(64) NOT NULL DEFAULT '',
    avatar_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- insertion order for roster listing
CREATE INDEX IF NOT EXISTS idx_students_seq ON students(seq);
CREATE INDEX IF NOT EXISTS idx_students_class_section ON students(class, section);
`

const migration001Down = `
DROP TABLE IF EXISTS students;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: GRADES & ATTENDANCE
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS grades (
    id BIGSERIAL PRIMARY KEY,
    student_uuid UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    subject VARCHAR(64) NOT NULL,
    assignment VARCHAR(200) NOT NULL,
    max_marks DOUBLE PRECISION NOT NULL,
    obtained_marks DOUBLE PRECISION NOT NULL,
    percentage DOUBLE PRECISION NOT NULL,
    letter VARCHAR(4) NOT NULL,
    graded_on DATE NOT NULL,
    category VARCHAR(16) NOT NULL,

    CONSTRAINT valid_max_marks CHECK (max_marks > 0),
    CONSTRAINT valid_obtained_marks CHECK (obtained_marks >= 0 AND obtained_marks <= max_marks),
    CONSTRAINT valid_category CHECK (category IN ('exam', 'assignment', 'quiz', 'project'))
);

CREATE INDEX IF NOT EXISTS idx_grades_student ON grades(student_uuid);
CREATE INDEX IF NOT EXISTS idx_grades_subject ON grades(subject);

CREATE TABLE IF NOT EXISTS attendance_records (
    id BIGSERIAL PRIMARY KEY,
    student_uuid UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    attended_on DATE NOT NULL,
    status VARCHAR(16) NOT NULL,
    subject VARCHAR(64) NOT NULL DEFAULT '',

    CONSTRAINT valid_status CHECK (status IN ('present', 'absent', 'late'))
);

CREATE INDEX IF NOT EXISTS idx_attendance_student ON attendance_records(student_uuid);
`

const migration002Down = `
DROP TABLE IF EXISTS attendance_records;
DROP TABLE IF EXISTS grades;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: METRICS SNAPSHOTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE TABLE IF NOT EXISTS metrics_snapshots (
    id UUID PRIMARY KEY,
    taken_at TIMESTAMP WITH TIME ZONE NOT NULL,
    total_students INTEGER NOT NULL,
    average_grade DOUBLE PRECISION NOT NULL,
    attendance_rate DOUBLE PRECISION NOT NULL,
    top_performers JSONB NOT NULL DEFAULT '[]'::jsonb,
    improvement_needed JSONB NOT NULL DEFAULT '[]'::jsonb,
    subject_performance JSONB NOT NULL DEFAULT '[]'::jsonb
);

CREATE INDEX IF NOT EXISTS idx_metrics_snapshots_taken_at ON metrics_snapshots(taken_at DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS metrics_snapshots;
`
