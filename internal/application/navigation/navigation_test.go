package navigation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	detail := State{View: ViewStudentDetail, SelectedStudentID: "STU001"}

	tests := []struct {
		name   string
		state  State
		action Action
		want   State
	}{
		{"navigate clears selection", detail, Action{Type: ActionNavigate, View: ViewAnalytics}, State{View: ViewAnalytics}},
		{"navigate unknown view", Initial(), Action{Type: ActionNavigate, View: "reports"}, Initial()},
		{"navigate to detail is refused", Initial(), Action{Type: ActionNavigate, View: ViewStudentDetail}, Initial()},
		{"select student", State{View: ViewStudents}, Action{Type: ActionSelectStudent, StudentID: "STU002"}, State{View: ViewStudentDetail, SelectedStudentID: "STU002"}},
		{"select without id", State{View: ViewStudents}, Action{Type: ActionSelectStudent}, State{View: ViewStudents}},
		{"open form", State{View: ViewStudents}, Action{Type: ActionOpenAddStudent}, State{View: ViewAddStudent}},
		{"back from detail", detail, Action{Type: ActionBack}, State{View: ViewStudents}},
		{"back from form", State{View: ViewAddStudent}, Action{Type: ActionBack}, State{View: ViewStudents}},
		{"back elsewhere", State{View: ViewSettings}, Action{Type: ActionBack}, State{View: ViewSettings}},
		{"saved", State{View: ViewAddStudent}, Action{Type: ActionStudentSaved}, State{View: ViewStudents}},
		{"unknown action", detail, Action{Type: "zoom"}, detail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.state
			assert.Equal(t, tt.want, Reduce(tt.state, tt.action))
			assert.Equal(t, before, tt.state)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Initial(), Normalize(State{}))
	assert.Equal(t, Initial(), Normalize(State{View: ViewStudentDetail}))
	assert.Equal(t, State{View: ViewStudents}, Normalize(State{View: ViewStudents, SelectedStudentID: "STU001"}))
	assert.Equal(t, State{View: ViewStudentDetail, SelectedStudentID: "STU001"},
		Normalize(State{View: ViewStudentDetail, SelectedStudentID: "STU001"}))
}

func TestActionValidate(t *testing.T) {
	assert.NoError(t, Action{Type: ActionBack}.Validate())
	assert.Error(t, Action{Type: "zoom"}.Validate())
}

func TestStateJSON(t *testing.T) {
	data, err := json.Marshal(State{View: ViewStudentDetail, SelectedStudentID: "STU001"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"view":"student-detail","selected_student_id":"STU001"}`, string(data))

	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"type":"navigate","view":"students"}`), &a))
	assert.Equal(t, State{View: ViewStudents}, Reduce(Initial(), a))
}
