// Package student is the domain model of the dashboard: the Student
// aggregate with the Grades and AttendanceRecords it owns, the roster
// filter, and the repository contract implemented in infrastructure.
//
// A Student is created through NewStudent, which validates identity and
// contact fields. Grades and attendance are appended through the aggregate
// so that UpdatedAt always reflects the last write:
//
//	s, err := student.NewStudent(student.NewStudentParams{
//	    ID:             uuid.NewString(),
//	    StudentID:      "STU005",
//	    Name:           "Eve Moore",
//	    Email:          "eve.moore@school.edu",
//	    Class:          "10th Grade",
//	    Section:        "A",
//	    EnrollmentDate: timeutil.Date(2024, time.September, 1),
//	})
//
//	g, err := student.NewGrade(student.NewGradeParams{
//	    Subject:       "Mathematics",
//	    Assignment:    "Quiz 2",
//	    MaxMarks:      20,
//	    ObtainedMarks: 17,
//	    Category:      student.CategoryQuiz,
//	    Date:          timeutil.Date(2024, time.November, 4),
//	})
//	s.AddGrade(g)
//
// Aggregate statistics over students live in the metrics package; this
// package only answers questions about a single record.
package student
