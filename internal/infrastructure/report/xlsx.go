// Package report reads and writes XLSX rosters.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alem-hub/student-dashboard/internal/domain/metrics"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
	"github.com/alem-hub/student-dashboard/pkg/timeutil"
)

// Sheet names of the generated workbook.
const (
	SheetStudents = "Students"
	SheetSubjects = "Subjects"
)

// StudentHeader is the first row of the Students sheet.
var StudentHeader = []any{
	"Student ID", "Name", "Email", "Class", "Section", "Enrolled",
	"Grades", "Average", "Band", "Attendance %",
}

// SubjectHeader is the first row of the Subjects sheet.
var SubjectHeader = []any{"Subject", "Average", "Assignments", "Pass Rate %"}

// ══════════════════════════════════════════════════════════════════════════════
// WRITER
// ══════════════════════════════════════════════════════════════════════════════

// WriteWorkbook writes a two-sheet workbook to w: one row per student, and
// the fleet's subject breakdown.
func WriteWorkbook(w io.Writer, students []*student.Student, fleet metrics.Fleet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetStudents); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSubjects); err != nil {
		return fmt.Errorf("create sheet %s: %w", SheetSubjects, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	rows := make([][]any, 0, len(students))
	for _, s := range students {
		sum := metrics.Summarize(s)
		rows = append(rows, []any{
			s.StudentID, s.Name, s.Email, s.Class, s.Section,
			timeutil.FormatDate(s.EnrollmentDate),
			len(s.Grades),
			metrics.Round1(sum.Average),
			string(sum.Band),
			metrics.Round1(sum.Attendance.PresentRate),
		})
	}
	if err := writeSheet(f, SheetStudents, StudentHeader, rows, bold); err != nil {
		return err
	}

	rows = rows[:0]
	for _, sp := range fleet.SubjectPerformance {
		rows = append(rows, []any{
			sp.Subject,
			metrics.Round1(sp.AverageScore),
			sp.TotalAssignments,
			metrics.Round1(sp.PassRate),
		})
	}
	if err := writeSheet(f, SheetSubjects, SubjectHeader, rows, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER IMPORT
// ══════════════════════════════════════════════════════════════════════════════

// RosterRow is one student line of an imported roster.
type RosterRow struct {
	// Line is the 1-based spreadsheet row.
	Line           int
	StudentID      string
	Name           string
	Email          string
	Class          string
	Section        string
	EnrollmentDate string
}

// RowError reports a roster line that could not be used.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Reason)
}

// ErrEmptyWorkbook is returned for a workbook without sheets.
var ErrEmptyWorkbook = errors.New("report: workbook contains no sheets")

// ReadRoster reads the first sheet of an XLSX roster. The first row is a
// header. Columns are Student ID, Name, Email, Class, Section and
// Enrollment Date. Blank lines are skipped; lines missing Student ID or
// Name are returned as RowErrors.
func ReadRoster(r io.Reader) ([]RosterRow, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read rows from %s: %w", sheet, err)
	}

	var (
		out     []RosterRow
		skipped []RowError
	)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		rr := RosterRow{
			Line:           i + 1,
			StudentID:      cell(row, 0),
			Name:           cell(row, 1),
			Email:          cell(row, 2),
			Class:          cell(row, 3),
			Section:        cell(row, 4),
			EnrollmentDate: cell(row, 5),
		}
		if rr == (RosterRow{Line: rr.Line}) {
			continue
		}
		if rr.StudentID == "" || rr.Name == "" {
			skipped = append(skipped, RowError{Line: rr.Line, Reason: "student ID and name are required"})
			continue
		}
		out = append(out, rr)
	}
	return out, skipped, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
