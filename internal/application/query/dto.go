// Package query contains read operations (CQRS - Queries).
package query

import (
	"github.com/alem-hub/student-dashboard/internal/domain/metrics"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
	"github.com/alem-hub/student-dashboard/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHARED DTOs
// Averages and rates are rounded to one decimal place.
// ══════════════════════════════════════════════════════════════════════════════

// StudentSummaryDTO is one roster row.
type StudentSummaryDTO struct {
	ID             string  `json:"id"`
	StudentID      string  `json:"student_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Class          string  `json:"class"`
	Section        string  `json:"section"`
	EnrollmentDate string  `json:"enrollment_date"`
	AvatarURL      string  `json:"avatar_url,omitempty"`
	Average        float64 `json:"average"`
	Band           string  `json:"band"`
	GradeCount     int     `json:"grade_count"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// PerformerDTO is an entry of a ranked performer list.
type PerformerDTO struct {
	StudentID string  `json:"student_id"`
	Name      string  `json:"name"`
	Class     string  `json:"class"`
	Section   string  `json:"section"`
	Average   float64 `json:"average"`
}

// SubjectPerformanceDTO is a fleet-wide subject breakdown.
type SubjectPerformanceDTO struct {
	Subject          string  `json:"subject"`
	AverageScore     float64 `json:"average_score"`
	TotalAssignments int     `json:"total_assignments"`
	PassRate         float64 `json:"pass_rate"`
}

// SubjectAverageDTO is one student's average in one subject.
type SubjectAverageDTO struct {
	Subject string  `json:"subject"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// AttendanceSummaryDTO counts roll-call outcomes.
type AttendanceSummaryDTO struct {
	Total       int     `json:"total"`
	Present     int     `json:"present"`
	Absent      int     `json:"absent"`
	Late        int     `json:"late"`
	PresentRate float64 `json:"present_rate"`
}

// GradeDTO is a single graded assessment.
type GradeDTO struct {
	Subject       string  `json:"subject"`
	Assignment    string  `json:"assignment"`
	MaxMarks      float64 `json:"max_marks"`
	ObtainedMarks float64 `json:"obtained_marks"`
	Percentage    float64 `json:"percentage"`
	Letter        string  `json:"letter"`
	Date          string  `json:"date"`
	Category      string  `json:"category"`
}

// AttendanceDTO is a single attendance record.
type AttendanceDTO struct {
	Date    string `json:"date"`
	Status  string `json:"status"`
	Subject string `json:"subject,omitempty"`
}

// ProfileDTO holds optional contact details.
type ProfileDTO struct {
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	ParentContact string `json:"parent_contact,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapping
// ──────────────────────────────────────────────────────────────────────────────

func toSummaryDTO(s *student.Student) StudentSummaryDTO {
	avg := metrics.StudentAverage(s.Grades)
	att := metrics.AttendanceStats(s.Attendance)
	return StudentSummaryDTO{
		ID:             s.ID,
		StudentID:      s.StudentID,
		Name:           s.Name,
		Email:          s.Email,
		Class:          s.Class,
		Section:        s.Section,
		EnrollmentDate: timeutil.FormatDate(s.EnrollmentDate),
		AvatarURL:      s.Profile.AvatarURL,
		Average:        metrics.Round1(avg),
		Band:           string(metrics.Band(avg)),
		GradeCount:     len(s.Grades),
		AttendanceRate: metrics.Round1(att.PresentRate),
	}
}

func toPerformerDTOs(ps []metrics.Performer) []PerformerDTO {
	out := make([]PerformerDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, PerformerDTO{
			StudentID: p.Student.StudentID,
			Name:      p.Student.Name,
			Class:     p.Student.Class,
			Section:   p.Student.Section,
			Average:   metrics.Round1(p.Average),
		})
	}
	return out
}

func toSubjectPerformanceDTOs(sps []metrics.SubjectPerformance) []SubjectPerformanceDTO {
	out := make([]SubjectPerformanceDTO, 0, len(sps))
	for _, sp := range sps {
		out = append(out, SubjectPerformanceDTO{
			Subject:          sp.Subject,
			AverageScore:     metrics.Round1(sp.AverageScore),
			TotalAssignments: sp.TotalAssignments,
			PassRate:         metrics.Round1(sp.PassRate),
		})
	}
	return out
}

func toAttendanceSummaryDTO(a metrics.AttendanceSummary) AttendanceSummaryDTO {
	return AttendanceSummaryDTO{
		Total:       a.Total,
		Present:     a.Present,
		Absent:      a.Absent,
		Late:        a.Late,
		PresentRate: metrics.Round1(a.PresentRate),
	}
}

// NewGradeDTO maps a stored grade.
func NewGradeDTO(g student.Grade) GradeDTO {
	return GradeDTO{
		Subject:       g.Subject,
		Assignment:    g.Assignment,
		MaxMarks:      g.MaxMarks,
		ObtainedMarks: g.ObtainedMarks,
		Percentage:    g.Percentage,
		Letter:        g.Letter,
		Date:          timeutil.FormatDate(g.Date),
		Category:      string(g.Category),
	}
}

// NewAttendanceDTO maps a stored attendance record.
func NewAttendanceDTO(r student.AttendanceRecord) AttendanceDTO {
	return AttendanceDTO{
		Date:    timeutil.FormatDate(r.Date),
		Status:  string(r.Status),
		Subject: r.Subject,
	}
}
