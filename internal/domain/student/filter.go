package student

import (
	"sort"
	"strings"
)

// FilterAll disables the class or section constraint.
const FilterAll = "All"

// MatchesFilter reports whether s matches the roster search.
//
// The search text is matched case-insensitively as a substring of the name,
// the student ID or the email. Class and section are either FilterAll (or
// empty) or must equal the student's label exactly.
func MatchesFilter(s *Student, searchText, classFilter, sectionFilter string) bool {
	if s == nil {
		return false
	}
	if !matchesLabel(s.Class, classFilter) || !matchesLabel(s.Section, sectionFilter) {
		return false
	}

	q := strings.ToLower(searchText)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.StudentID), q) ||
		strings.Contains(strings.ToLower(s.Email), q)
}

func matchesLabel(value, filter string) bool {
	return filter == "" || filter == FilterAll || value == filter
}

// Filter is a roster query.
type Filter struct {
	Search  string
	Class   string
	Section string
}

// Matches applies MatchesFilter with f's fields.
func (f Filter) Matches(s *Student) bool {
	return MatchesFilter(s, f.Search, f.Class, f.Section)
}

// Apply returns the matching students in roster order.
func (f Filter) Apply(students []*Student) []*Student {
	out := make([]*Student, 0, len(students))
	for _, s := range students {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// ClassOptions returns the distinct class labels, sorted.
func ClassOptions(students []*Student) []string {
	return distinct(students, func(s *Student) string { return s.Class })
}

// SectionOptions returns the distinct section labels, sorted.
func SectionOptions(students []*Student) []string {
	return distinct(students, func(s *Student) string { return s.Section })
}

func distinct(students []*Student, key func(*Student) string) []string {
	seen := make(map[string]struct{}, len(students))
	out := make([]string, 0)
	for _, s := range students {
		k := key(s)
		if _, ok := seen[k]; ok || k == "" {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
