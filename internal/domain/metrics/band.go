package metrics

import (
	"math"

	"github.com/alem-hub/student-dashboard/internal/domain/student"
)

// PerformanceBand is the coarse roster badge for an average.
type PerformanceBand string

const (
	BandA PerformanceBand = "A"
	BandB PerformanceBand = "B"
	BandC PerformanceBand = "C"
	BandD PerformanceBand = "D"
	BandF PerformanceBand = "F"
)

// Band maps an average to a badge: A ≥ 90, B ≥ 80, C ≥ 70, D ≥ 60, else F.
func Band(average float64) PerformanceBand {
	switch {
	case average >= 90:
		return BandA
	case average >= 80:
		return BandB
	case average >= 70:
		return BandC
	case average >= 60:
		return BandD
	default:
		return BandF
	}
}

// PerformanceLabel is the wording the detail view shows under an average.
type PerformanceLabel string

const (
	LabelExcellent        PerformanceLabel = "Excellent"
	LabelGood             PerformanceLabel = "Good"
	LabelAverage          PerformanceLabel = "Average"
	LabelNeedsImprovement PerformanceLabel = "Needs Improvement"
)

// Label maps an average to its label: Excellent ≥ 90, Good ≥ 80,
// Average ≥ 70, else Needs Improvement.
func Label(average float64) PerformanceLabel {
	switch {
	case average >= 90:
		return LabelExcellent
	case average >= 80:
		return LabelGood
	case average >= 70:
		return LabelAverage
	default:
		return LabelNeedsImprovement
	}
}

// StudentSummary is every per-student figure the roster and detail views show.
type StudentSummary struct {
	Average         float64
	Band            PerformanceBand
	Label           PerformanceLabel
	SubjectAverages []SubjectAverage
	Attendance      AttendanceSummary
	Categories      map[student.Category]int
}

// Summarize computes the per-student figures of s.
func Summarize(s *student.Student) StudentSummary {
	avg := StudentAverage(s.Grades)
	return StudentSummary{
		Average:         avg,
		Band:            Band(avg),
		Label:           Label(avg),
		SubjectAverages: SortedSubjectAverages(s.Grades),
		Attendance:      AttendanceStats(s.Attendance),
		Categories:      CategoryCounts(s.Grades),
	}
}

// Round1 rounds v to one decimal place for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
