// Package navigation holds the dashboard's screen state as a plain value
// and the pure transition function that advances it.
package navigation

import (
	"fmt"
	"strings"
)

// View names a dashboard screen.
type View string

const (
	ViewDashboard     View = "dashboard"
	ViewStudents      View = "students"
	ViewAnalytics     View = "analytics"
	ViewSettings      View = "settings"
	ViewStudentDetail View = "student-detail"
	ViewAddStudent    View = "add-student"
)

// TopLevelViews are the screens reachable from the navigation bar.
var TopLevelViews = []View{ViewDashboard, ViewStudents, ViewAnalytics, ViewSettings}

// IsTopLevel reports whether v is a navigation bar screen.
func (v View) IsTopLevel() bool {
	for _, t := range TopLevelViews {
		if v == t {
			return true
		}
	}
	return false
}

// State is the complete screen state. The zero value is not valid; use
// Initial.
type State struct {
	View              View   `json:"view"`
	SelectedStudentID string `json:"selected_student_id,omitempty"`
}

// Initial is the state on first load.
func Initial() State {
	return State{View: ViewDashboard}
}

// ActionType names a transition.
type ActionType string

const (
	ActionNavigate       ActionType = "navigate"
	ActionSelectStudent  ActionType = "select_student"
	ActionOpenAddStudent ActionType = "open_add_student"
	ActionBack           ActionType = "back"
	ActionStudentSaved   ActionType = "student_saved"
)

// Action is a transition request. View is read by navigate, StudentID by
// select_student.
type Action struct {
	Type      ActionType `json:"type"`
	View      View       `json:"view,omitempty"`
	StudentID string     `json:"student_id,omitempty"`
}

// Reduce returns the state after applying a. It never mutates s.
//
//   - navigate: go to a top-level view and clear the selection. Unknown
//     views fall back to the dashboard.
//   - select_student: open the detail screen for StudentID. An empty ID
//     leaves s unchanged.
//   - open_add_student: open the add-student form.
//   - back: from detail or the form, return to the roster. Elsewhere a
//     no-op.
//   - student_saved: return to the roster.
//
// Unknown action types leave s unchanged.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionNavigate:
		v := View(strings.TrimSpace(string(a.View)))
		if !v.IsTopLevel() {
			v = ViewDashboard
		}
		return State{View: v}

	case ActionSelectStudent:
		id := strings.TrimSpace(a.StudentID)
		if id == "" {
			return s
		}
		return State{View: ViewStudentDetail, SelectedStudentID: id}

	case ActionOpenAddStudent:
		return State{View: ViewAddStudent}

	case ActionBack:
		if s.View == ViewStudentDetail || s.View == ViewAddStudent {
			return State{View: ViewStudents}
		}
		return s

	case ActionStudentSaved:
		return State{View: ViewStudents}

	default:
		return s
	}
}

// Normalize repairs a state received from a client: an unknown view or a
// detail view without a student becomes the dashboard, and the selection is
// dropped outside the detail view.
func Normalize(s State) State {
	switch s.View {
	case ViewStudentDetail:
		if strings.TrimSpace(s.SelectedStudentID) == "" {
			return Initial()
		}
		return s
	case ViewAddStudent:
		return State{View: ViewAddStudent}
	default:
		if !s.View.IsTopLevel() {
			return Initial()
		}
		return State{View: s.View}
	}
}

// Validate rejects unknown action types.
func (a Action) Validate() error {
	switch a.Type {
	case ActionNavigate, ActionSelectStudent, ActionOpenAddStudent, ActionBack, ActionStudentSaved:
		return nil
	default:
		return fmt.Errorf("unknown navigation action %q", a.Type)
	}
}
