// Package metrics derives read-only statistics from student records.
//
// Every function is pure: it reads its arguments, allocates its result and
// keeps no state between calls. Ratios over an empty set are 0.
package metrics

// Default thresholds used by FleetMetrics.
const (
	TopPerformerThreshold  = 85.0
	ImprovementNeededBelow = 75.0
	PassThreshold          = 60.0
	PerformerListLimit     = 3
)

const (
	SubjectMathematics = "Mathematics"
	SubjectScience     = "Science"
	SubjectEnglish     = "English"
	SubjectHistory     = "History"
)

// DefaultSubjects is the fixed subject list reported fleet-wide.
var DefaultSubjects = []string{SubjectMathematics, SubjectScience, SubjectEnglish, SubjectHistory}

// Policy holds the thresholds that shape fleet metrics.
type Policy struct {
	// TopThreshold is the minimum average (inclusive) for top performers.
	TopThreshold float64
	// ImprovementBelow is the exclusive upper bound for improvement needed.
	ImprovementBelow float64
	// PassThreshold is the minimum percentage (inclusive) of a passing grade.
	PassThreshold float64
	// Limit caps both performer lists.
	Limit int
	// Subjects are reported in this order.
	Subjects []string
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		TopThreshold:     TopPerformerThreshold,
		ImprovementBelow: ImprovementNeededBelow,
		PassThreshold:    PassThreshold,
		Limit:            PerformerListLimit,
		Subjects:         append([]string(nil), DefaultSubjects...),
	}
}

// normalized fills unset fields from DefaultPolicy.
func (p Policy) normalized() Policy {
	d := DefaultPolicy()
	if p.Limit <= 0 {
		p.Limit = d.Limit
	}
	if len(p.Subjects) == 0 {
		p.Subjects = d.Subjects
	}
	if p.TopThreshold == 0 && p.ImprovementBelow == 0 && p.PassThreshold == 0 {
		p.TopThreshold = d.TopThreshold
		p.ImprovementBelow = d.ImprovementBelow
		p.PassThreshold = d.PassThreshold
	}
	return p
}
