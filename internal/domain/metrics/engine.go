package metrics

import (
	"sort"

	"github.com/alem-hub/student-dashboard/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESULT TYPES
// ══════════════════════════════════════════════════════════════════════════════

// SubjectAverage is the mean percentage of one subject's grades.
type SubjectAverage struct {
	Subject string
	Average float64
	Count   int
}

// AttendanceSummary counts roll-call outcomes.
// Present + Absent + Late == Total always holds.
type AttendanceSummary struct {
	Total       int
	Present     int
	Absent      int
	Late        int
	PresentRate float64
}

// Performer pairs a student with their grade average.
type Performer struct {
	Student *student.Student
	Average float64
}

// SubjectPerformance is a fleet-wide subject breakdown.
type SubjectPerformance struct {
	Subject          string  `json:"subject"`
	AverageScore     float64 `json:"averageScore"`
	TotalAssignments int     `json:"totalAssignments"`
	PassRate         float64 `json:"passRate"`
}

// Fleet aggregates every student.
type Fleet struct {
	TotalStudents      int
	AverageGrade       float64
	AttendanceRate     float64
	TopPerformers      []Performer
	ImprovementNeeded  []Performer
	SubjectPerformance []SubjectPerformance
}

// ratio returns num/den*100, or 0 when den is 0.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

// mean returns sum/n, or 0 when n is 0.
func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ══════════════════════════════════════════════════════════════════════════════
// PER-STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// StudentAverage is the unweighted mean of the grades' percentages, or 0
// for no grades.
func StudentAverage(grades []student.Grade) float64 {
	var sum float64
	for _, g := range grades {
		sum += g.Percentage
	}
	return mean(sum, len(grades))
}

// SubjectAverages groups grades by subject. Subjects without grades are
// absent from the result.
func SubjectAverages(grades []student.Grade) map[string]SubjectAverage {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, g := range grades {
		sums[g.Subject] += g.Percentage
		counts[g.Subject]++
	}

	out := make(map[string]SubjectAverage, len(counts))
	for subject, n := range counts {
		out[subject] = SubjectAverage{
			Subject: subject,
			Average: mean(sums[subject], n),
			Count:   n,
		}
	}
	return out
}

// SortedSubjectAverages is SubjectAverages ordered by subject name.
func SortedSubjectAverages(grades []student.Grade) []SubjectAverage {
	m := SubjectAverages(grades)
	out := make([]SubjectAverage, 0, len(m))
	for _, sa := range m {
		out = append(out, sa)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out
}

// AttendanceStats counts statuses and the present rate.
func AttendanceStats(records []student.AttendanceRecord) AttendanceSummary {
	var s AttendanceSummary
	for _, r := range records {
		switch r.Status {
		case student.StatusPresent:
			s.Present++
		case student.StatusAbsent:
			s.Absent++
		case student.StatusLate:
			s.Late++
		default:
			// Unknown statuses are rejected at the boundary; never count them.
			continue
		}
		s.Total++
	}
	s.PresentRate = ratio(s.Present, s.Total)
	return s
}

// CategoryCounts counts grades per category.
func CategoryCounts(grades []student.Grade) map[student.Category]int {
	out := make(map[student.Category]int, len(student.Categories))
	for _, g := range grades {
		out[g.Category]++
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// FLEET-WIDE
// ══════════════════════════════════════════════════════════════════════════════

// FleetMetrics aggregates students with DefaultPolicy.
func FleetMetrics(students []*student.Student) Fleet {
	return FleetMetricsWith(students, DefaultPolicy())
}

// FleetMetricsWith aggregates students with the given policy.
//
// Grade and attendance figures are flattened across all students, so a
// student with more records weighs more. Students without grades appear in
// neither performer list.
func FleetMetricsWith(students []*student.Student, p Policy) Fleet {
	p = p.normalized()

	var (
		gradeSum     float64
		gradeCount   int
		present      int
		attendance   int
		subjectSum   = make(map[string]float64, len(p.Subjects))
		subjectCount = make(map[string]int, len(p.Subjects))
		subjectPass  = make(map[string]int, len(p.Subjects))
		top          []Performer
		improve      []Performer
	)

	for _, s := range students {
		for _, g := range s.Grades {
			gradeSum += g.Percentage
			gradeCount++
			subjectSum[g.Subject] += g.Percentage
			subjectCount[g.Subject]++
			if g.Passed(p.PassThreshold) {
				subjectPass[g.Subject]++
			}
		}
		for _, r := range s.Attendance {
			attendance++
			if r.Status == student.StatusPresent {
				present++
			}
		}

		avg := StudentAverage(s.Grades)
		if avg >= p.TopThreshold {
			top = append(top, Performer{Student: s, Average: avg})
		}
		if avg < p.ImprovementBelow {
			improve = append(improve, Performer{Student: s, Average: avg})
		}
	}

	sort.SliceStable(top, func(i, j int) bool { return top[i].Average > top[j].Average })
	sort.SliceStable(improve, func(i, j int) bool { return improve[i].Average < improve[j].Average })

	subjects := make([]SubjectPerformance, 0, len(p.Subjects))
	for _, name := range p.Subjects {
		n := subjectCount[name]
		subjects = append(subjects, SubjectPerformance{
			Subject:          name,
			AverageScore:     mean(subjectSum[name], n),
			TotalAssignments: n,
			PassRate:         ratio(subjectPass[name], n),
		})
	}

	return Fleet{
		TotalStudents:      len(students),
		AverageGrade:       mean(gradeSum, gradeCount),
		AttendanceRate:     ratio(present, attendance),
		TopPerformers:      truncate(top, p.Limit),
		ImprovementNeeded:  truncate(improve, p.Limit),
		SubjectPerformance: subjects,
	}
}

func truncate(ps []Performer, limit int) []Performer {
	if ps == nil {
		return []Performer{}
	}
	if len(ps) > limit {
		return ps[:limit]
	}
	return ps
}
