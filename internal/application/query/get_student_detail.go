package query

import (
	"context"
	"sort"
	"strings"

	"github.com/alem-hub/student-dashboard/internal/domain/metrics"
	"github.com/alem-hub/student-dashboard/internal/domain/shared"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT DETAIL QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentDetailQuery identifies a student by the school-issued ID.
type GetStudentDetailQuery struct {
	StudentID string
}

// Validate checks that an ID was given.
func (q *GetStudentDetailQuery) Validate() error {
	q.StudentID = strings.TrimSpace(q.StudentID)
	if q.StudentID == "" {
		return shared.Validationf("query", "GetStudentDetail", "student_id is required")
	}
	return nil
}

// StudentDetailDTO is the full student profile with derived figures.
type StudentDetailDTO struct {
	StudentSummaryDTO

	PerformanceLabel string `json:"performance_label"`

	Profile         ProfileDTO           `json:"profile"`
	SubjectAverages []SubjectAverageDTO  `json:"subject_averages"`
	Attendance      AttendanceSummaryDTO `json:"attendance"`
	CategoryCounts  map[string]int       `json:"category_counts"`

	// Grades and AttendanceLog are newest first.
	Grades        []GradeDTO      `json:"grades"`
	AttendanceLog []AttendanceDTO `json:"attendance_log"`
}

// GetStudentDetailHandler serves the student profile screen.
type GetStudentDetailHandler struct {
	students student.Repository
}

// NewGetStudentDetailHandler creates a new handler.
func NewGetStudentDetailHandler(students student.Repository) *GetStudentDetailHandler {
	return &GetStudentDetailHandler{students: students}
}

// Handle runs the query.
func (h *GetStudentDetailHandler) Handle(ctx context.Context, q GetStudentDetailQuery) (*StudentDetailDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s, err := h.students.GetByStudentID(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}

	sum := metrics.Summarize(s)

	subjects := make([]SubjectAverageDTO, 0, len(sum.SubjectAverages))
	for _, sa := range sum.SubjectAverages {
		subjects = append(subjects, SubjectAverageDTO{
			Subject: sa.Subject,
			Average: metrics.Round1(sa.Average),
			Count:   sa.Count,
		})
	}

	categories := make(map[string]int, len(student.Categories))
	for _, c := range student.Categories {
		categories[string(c)] = sum.Categories[c]
	}

	grades := make([]GradeDTO, 0, len(s.Grades))
	sorted := append([]student.Grade(nil), s.Grades...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	for _, g := range sorted {
		grades = append(grades, NewGradeDTO(g))
	}

	log := make([]AttendanceDTO, 0, len(s.Attendance))
	records := append([]student.AttendanceRecord(nil), s.Attendance...)
	sort.SliceStable(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
	for _, r := range records {
		log = append(log, NewAttendanceDTO(r))
	}

	return &StudentDetailDTO{
		StudentSummaryDTO: toSummaryDTO(s),
		PerformanceLabel:  string(sum.Label),
		Profile: ProfileDTO{
			Phone:         s.Profile.Phone,
			Address:       s.Profile.Address,
			ParentContact: s.Profile.ParentContact,
			AvatarURL:     s.Profile.AvatarURL,
		},
		SubjectAverages: subjects,
		Attendance:      toAttendanceSummaryDTO(sum.Attendance),
		CategoryCounts:  categories,
		Grades:          grades,
		AttendanceLog:   log,
	}, nil
}
