package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-dashboard/internal/domain/metrics"
	"github.com/alem-hub/student-dashboard/internal/domain/shared"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
)

func TestSampleStudents_MatchRecordedPercentages(t *testing.T) {
	roster := SampleStudents()
	require.Len(t, roster, 4)

	want := map[string]float64{"STU001": 90.6, "STU002": 77.8, "STU003": 86.6, "STU004": 64.8}
	for _, s := range roster {
		require.NoError(t, s.Validate(), s.StudentID)
		assert.InDelta(t, want[s.StudentID], metrics.StudentAverage(s.Grades), 1e-9, s.StudentID)
		assert.Len(t, s.Attendance, 3)
	}

	again := SampleStudents()
	assert.Equal(t, roster[0].ID, again[0].ID)
	assert.NotEqual(t, roster[0].ID, roster[1].ID)
}

func TestStudentRepository_ListPreservesOrderAndCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewSeededStudentRepository()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "STU001", list[0].StudentID)
	assert.Equal(t, "STU004", list[3].StudentID)

	list[0].Name = "Mutated"
	list[0].Grades[0].Percentage = 0

	fresh, err := repo.GetByStudentID(ctx, "STU001")
	require.NoError(t, err)
	assert.Equal(t, "Alice Johnson", fresh.Name)
	assert.Equal(t, 92.0, fresh.Grades[0].Percentage)
}

func TestStudentRepository_CreateAndDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewSeededStudentRepository()

	s, err := student.NewStudent(student.NewStudentParams{
		ID: "x", StudentID: "STU005", Name: "Eve Moore", Email: "eve.moore@school.edu",
		Class: "10th Grade", Section: "A", EnrollmentDate: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, s))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	err = repo.Create(ctx, s)
	assert.True(t, shared.IsAlreadyExists(err))
}

func TestStudentRepository_AppendsAndUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewSeededStudentRepository()
	fixed := time.Date(2024, time.November, 5, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	g, err := student.NewGrade(student.NewGradeParams{
		Subject: "History", Assignment: "Quiz 2", MaxMarks: 20, ObtainedMarks: 20,
		Date: fixed, Category: student.CategoryQuiz,
	})
	require.NoError(t, err)
	require.NoError(t, repo.AddGrade(ctx, "STU004", g))
	require.NoError(t, repo.RecordAttendance(ctx, "STU004", student.AttendanceRecord{Date: fixed, Status: student.StatusLate}))

	got, err := repo.GetByStudentID(ctx, "STU004")
	require.NoError(t, err)
	assert.Len(t, got.Grades, 6)
	assert.Len(t, got.Attendance, 4)
	assert.Equal(t, fixed, got.UpdatedAt)

	err = repo.RecordAttendance(ctx, "STU004", student.AttendanceRecord{Date: fixed, Status: "excused"})
	assert.True(t, shared.IsValidation(err))
	got, _ = repo.GetByStudentID(ctx, "STU004")
	assert.Len(t, got.Attendance, 4)

	assert.True(t, shared.IsNotFound(repo.AddGrade(ctx, "NOPE", g)))
}

func TestStudentRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSeededStudentRepository()

	bob, err := repo.GetByStudentID(ctx, "STU002")
	require.NoError(t, err)
	bob.Section = "C"
	bob.Grades = nil
	require.NoError(t, repo.Update(ctx, bob))

	bob, err = repo.GetByStudentID(ctx, "STU002")
	require.NoError(t, err)
	assert.Equal(t, "C", bob.Section)
	assert.Len(t, bob.Grades, 5)

	require.NoError(t, repo.Delete(ctx, "STU002"))
	_, err = repo.GetByStudentID(ctx, "STU002")
	assert.True(t, shared.IsNotFound(err))

	carol, err := repo.GetByStudentID(ctx, "STU003")
	require.NoError(t, err)
	assert.Equal(t, "Carol Davis", carol.Name)

	list, _ := repo.List(ctx)
	assert.Equal(t, []string{"STU001", "STU003", "STU004"},
		[]string{list[0].StudentID, list[1].StudentID, list[2].StudentID})

	assert.True(t, shared.IsNotFound(repo.Delete(ctx, "STU002")))
}

func TestStudentRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSeededStudentRepository().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
