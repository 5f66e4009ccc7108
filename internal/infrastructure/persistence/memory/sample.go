package memory

import (
	"github.com/google/uuid"

	"github.com/alem-hub/student-dashboard/internal/domain/student"
	"github.com/alem-hub/student-dashboard/pkg/timeutil"
)

// sampleNamespace derives stable internal IDs for the seeded roster so that
// the same student keeps the same UUID across restarts.
var sampleNamespace = uuid.MustParse("6f1d6c2e-9a0b-4c1e-8d3f-2b7a5e4c9d10")

type sampleGrade struct {
	subject, assignment string
	max                 float64
	date                string
	category            student.Category
}

// gradeTemplate is the assignment schedule every sample student sat.
var gradeTemplate = [5]sampleGrade{
	{subject: "Mathematics", assignment: "Mid-term Exam", max: 100, date: "2024-10-15", category: student.CategoryExam},
	{subject: "Mathematics", assignment: "Assignment 1", max: 50, date: "2024-10-01", category: student.CategoryAssignment},
	{subject: "Science", assignment: "Lab Report", max: 30, date: "2024-10-10", category: student.CategoryProject},
	{subject: "English", assignment: "Essay Writing", max: 25, date: "2024-10-05", category: student.CategoryAssignment},
	{subject: "History", assignment: "Quiz 1", max: 20, date: "2024-09-28", category: student.CategoryQuiz},
}

var attendanceDates = [3]string{"2024-11-01", "2024-10-31", "2024-10-30"}

var (
	present = student.StatusPresent
	absent  = student.StatusAbsent
	late    = student.StatusLate
)

var sampleRoster = []struct {
	studentID, name, email, section string
	phone, parent, avatar           string
	obtained                        [5]float64
	letters                         [5]string
	attendance                      [3]student.AttendanceStatus
}{
	{
		studentID: "STU001", name: "Alice Johnson", email: "alice.johnson@school.edu", section: "A",
		phone: "+1-555-0123", parent: "+1-555-0124",
		avatar:     "https://images.pexels.com/photos/3769021/pexels-photo-3769021.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&fit=crop",
		obtained:   [5]float64{92, 45, 28, 22, 18},
		letters:    [5]string{"A", "A", "A", "B+", "A"},
		attendance: [3]student.AttendanceStatus{present, present, present},
	},
	{
		studentID: "STU002", name: "Bob Smith", email: "bob.smith@school.edu", section: "A",
		phone: "+1-555-0125", parent: "+1-555-0126",
		avatar:     "https://images.pexels.com/photos/3777943/pexels-photo-3777943.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&fit=crop",
		obtained:   [5]float64{78, 38, 24, 20, 15},
		letters:    [5]string{"B", "B", "B", "B", "B"},
		attendance: [3]student.AttendanceStatus{present, absent, present},
	},
	{
		studentID: "STU003", name: "Carol Davis", email: "carol.davis@school.edu", section: "B",
		phone: "+1-555-0127", parent: "+1-555-0128",
		avatar:     "https://images.pexels.com/photos/3785077/pexels-photo-3785077.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&fit=crop",
		obtained:   [5]float64{85, 42, 26, 23, 17},
		letters:    [5]string{"B+", "B+", "B+", "A", "B+"},
		attendance: [3]student.AttendanceStatus{present, present, late},
	},
	{
		studentID: "STU004", name: "David Wilson", email: "david.wilson@school.edu", section: "B",
		phone: "+1-555-0129", parent: "+1-555-0130",
		avatar:     "https://images.pexels.com/photos/3771511/pexels-photo-3771511.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&fit=crop",
		obtained:   [5]float64{65, 30, 20, 18, 12},
		letters:    [5]string{"C", "C", "C", "B-", "C"},
		attendance: [3]student.AttendanceStatus{absent, present, present},
	},
}

// SampleClass is the class label shared by the sample roster.
const SampleClass = "10th Grade"

// SampleStudents builds a fresh copy of the demo roster.
func SampleStudents() []*student.Student {
	enrolled := timeutil.MustParseDate("2024-09-01")
	updated := timeutil.MustParseDate("2024-11-01")

	out := make([]*student.Student, 0, len(sampleRoster))
	for _, row := range sampleRoster {
		s := &student.Student{
			ID:             uuid.NewSHA1(sampleNamespace, []byte(row.studentID)).String(),
			StudentID:      row.studentID,
			Name:           row.name,
			Email:          row.email,
			Class:          SampleClass,
			Section:        row.section,
			EnrollmentDate: enrolled,
			Profile: student.Profile{
				Phone:         row.phone,
				ParentContact: row.parent,
				AvatarURL:     row.avatar,
			},
			CreatedAt: enrolled,
			UpdatedAt: updated,
		}
		for i, tpl := range gradeTemplate {
			s.Grades = append(s.Grades, student.Grade{
				Subject:       tpl.subject,
				Assignment:    tpl.assignment,
				MaxMarks:      tpl.max,
				ObtainedMarks: row.obtained[i],
				Percentage:    student.ComputePercentage(row.obtained[i], tpl.max),
				Letter:        row.letters[i],
				Date:          timeutil.MustParseDate(tpl.date),
				Category:      tpl.category,
			})
		}
		for i, st := range row.attendance {
			s.Attendance = append(s.Attendance, student.AttendanceRecord{
				Date:   timeutil.MustParseDate(attendanceDates[i]),
				Status: st,
			})
		}
		out = append(out, s)
	}
	return out
}
