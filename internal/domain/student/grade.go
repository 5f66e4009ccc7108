package student

import (
	"math"
	"strings"
	"time"

	"github.com/alem-hub/student-dashboard/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATEGORY
// ══════════════════════════════════════════════════════════════════════════════

// Category classifies a graded piece of work.
type Category string

const (
	CategoryExam       Category = "exam"
	CategoryAssignment Category = "assignment"
	CategoryQuiz       Category = "quiz"
	CategoryProject    Category = "project"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryExam, CategoryAssignment, CategoryQuiz, CategoryProject}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryExam, CategoryAssignment, CategoryQuiz, CategoryProject:
		return true
	default:
		return false
	}
}

// ParseCategory accepts any letter case and surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", shared.ErrInvalidCategory
	}
	return c, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE
// ══════════════════════════════════════════════════════════════════════════════

// Grade is a single scored piece of work.
type Grade struct {
	Subject       string
	Assignment    string
	MaxMarks      float64
	ObtainedMarks float64
	// Percentage is derived from the marks, see ComputePercentage.
	Percentage float64
	Letter     string
	Date       time.Time
	Category   Category
}

// ComputePercentage returns obtained/max*100 rounded to a whole percent.
// A non-positive max yields 0.
func ComputePercentage(obtained, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return math.Round(obtained / max * 100)
}

// LetterFor maps a percentage to the school's letter scale.
func LetterFor(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 83:
		return "B+"
	case percentage >= 75:
		return "B"
	case percentage >= 70:
		return "B-"
	case percentage >= 60:
		return "C"
	case percentage >= 50:
		return "D"
	default:
		return "F"
	}
}

// NewGradeParams are the inputs to NewGrade. Letter is optional.
type NewGradeParams struct {
	Subject       string
	Assignment    string
	MaxMarks      float64
	ObtainedMarks float64
	Letter        string
	Date          time.Time
	Category      Category
}

// NewGrade validates params and derives the percentage (and the letter
// when none was given).
func NewGrade(p NewGradeParams) (Grade, error) {
	g := Grade{
		Subject:       strings.TrimSpace(p.Subject),
		Assignment:    strings.TrimSpace(p.Assignment),
		MaxMarks:      p.MaxMarks,
		ObtainedMarks: p.ObtainedMarks,
		Letter:        strings.TrimSpace(p.Letter),
		Date:          p.Date,
		Category:      p.Category,
	}
	g.Percentage = ComputePercentage(g.ObtainedMarks, g.MaxMarks)
	if g.Letter == "" {
		g.Letter = LetterFor(g.Percentage)
	}
	if err := g.Validate(); err != nil {
		return Grade{}, err
	}
	return g, nil
}

// Validate checks the mark bounds, the category and percentage drift.
func (g Grade) Validate() error {
	if g.Subject == "" {
		return shared.Validationf("grade", "Validate", "subject is required")
	}
	if g.Assignment == "" {
		return shared.Validationf("grade", "Validate", "assignment is required")
	}
	if g.MaxMarks <= 0 || math.IsNaN(g.MaxMarks) || math.IsInf(g.MaxMarks, 0) {
		return shared.ErrInvalidMaxMarks
	}
	if g.ObtainedMarks < 0 || g.ObtainedMarks > g.MaxMarks || math.IsNaN(g.ObtainedMarks) {
		return shared.ErrInvalidObtainedMarks
	}
	if !g.Category.IsValid() {
		return shared.ErrInvalidCategory
	}
	if g.Date.IsZero() {
		return shared.Validationf("grade", "Validate", "date is required")
	}
	if g.Percentage != ComputePercentage(g.ObtainedMarks, g.MaxMarks) {
		return shared.ErrPercentageMismatch
	}
	return nil
}

// Passed reports whether the grade meets threshold.
func (g Grade) Passed(threshold float64) bool {
	return g.Percentage >= threshold
}
