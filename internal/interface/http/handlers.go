package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/alem-hub/student-dashboard/internal/application/command"
	"github.com/alem-hub/student-dashboard/internal/application/navigation"
	"github.com/alem-hub/student-dashboard/internal/application/query"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/report"
	"github.com/alem-hub/student-dashboard/pkg/logger"
)

// XLSXContentType is the media type of generated workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"name":    "Student Dashboard API",
		"version": s.deps.Version,
		"endpoints": map[string]string{
			"health":    "/health",
			"dashboard": "/api/v1/dashboard",
			"students":  "/api/v1/students",
			"report":    "/api/v1/reports/students.xlsx",
		},
	})
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Healthy {
		writeJSON(w, r, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

// handleReady handles the readiness probe endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": status.Message,
		})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD & ROSTER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetDashboard handles GET /api/v1/dashboard?trend=N
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetDashboardHandler == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Dashboard handler not configured")
		return
	}

	trend, err := getQueryParamInt(r, "trend", 0)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := s.deps.GetDashboardHandler.Handle(r.Context(), query.GetDashboardQuery{TrendPoints: trend})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// handleListStudents handles GET /api/v1/students?search=&class=&section=
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListStudentsHandler == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Roster handler not configured")
		return
	}

	params := r.URL.Query()
	result, err := s.deps.ListStudentsHandler.Handle(r.Context(), query.ListStudentsQuery{
		Search:  params.Get("search"),
		Class:   params.Get("class"),
		Section: params.Get("section"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{TotalCount: result.Total})
}

// handleGetStudent handles GET /api/v1/students/{id}
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetStudentDetailHandler == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Student handler not configured")
		return
	}

	result, err := s.deps.GetStudentDetailHandler.Handle(r.Context(), query.GetStudentDetailQuery{
		StudentID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// WRITE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleAddStudent handles POST /api/v1/students
func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.AddStudentHandler == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Add student handler not configured")
		return
	}

	var cmd command.AddStudentCommand
	if !s.decodeJSON(w, r, &cmd) {
		return
	}

	result, err := s.deps.AddStudentHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/students/"+result.StudentID)
	writeJSON(w, r, http.StatusCreated, result)
}

// handleDeleteStudent handles DELETE /api/v1/students/{id}
func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.DeleteStudentHandler == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Delete handler not configured")
		return
	}

	if err := s.deps.DeleteStudentHandler.Handle(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRecordGrade handles POST /api/v1/students/{id}/grades
func (s *Server) handleRecordGrade(w http.ResponseWriter, r *http.Request) {
	if s.deps.RecordGradeHandler == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Grade handler not configured")
		return
	}

	var cmd command.RecordGradeCommand
	if !s.decodeJSON(w, r, &cmd) {
		return
	}
	cmd.StudentID = r.PathValue("id")

	grade, err := s.deps.RecordGradeHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, query.NewGradeDTO(*grade))
}

// handleMarkAttendance handles POST /api/v1/students/{id}/attendance
func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	if s.deps.MarkAttendanceHandler == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Attendance handler not configured")
		return
	}

	var cmd command.MarkAttendanceCommand
	if !s.decodeJSON(w, r, &cmd) {
		return
	}
	cmd.StudentID = r.PathValue("id")

	rec, err := s.deps.MarkAttendanceHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, query.NewAttendanceDTO(*rec))
}

// ══════════════════════════════════════════════════════════════════════════════
// REPORT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleExportReport handles GET /api/v1/reports/students.xlsx
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if s.deps.ExportRosterHandler == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Report handler not configured")
		return
	}

	// Rendered to memory first so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := s.deps.ExportRosterHandler.Handle(r.Context(), &buf); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="students.xlsx"`)
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.FromContext(r.Context()).Warn("report write interrupted", logger.Err(err))
	}
}

// handleImportStudents handles POST /api/v1/students/import. The workbook
// is read from the multipart field "file" or from the raw request body.
func (s *Server) handleImportStudents(w http.ResponseWriter, r *http.Request) {
	if s.deps.ImportStudentsHandler == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Import handler not configured")
		return
	}

	body, closeBody, err := uploadedWorkbook(r)
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "INVALID_UPLOAD", err.Error())
		return
	}
	defer closeBody()

	rows, rowErrs, err := report.ReadRoster(body)
	if err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "INVALID_WORKBOOK", err.Error())
		return
	}

	cmd := command.ImportStudentsCommand{Rows: make([]command.ImportRow, 0, len(rows))}
	for _, row := range rows {
		cmd.Rows = append(cmd.Rows, command.ImportRow{
			Line: row.Line,
			AddStudentCommand: command.AddStudentCommand{
				StudentID:      row.StudentID,
				Name:           row.Name,
				Email:          row.Email,
				Class:          row.Class,
				Section:        row.Section,
				EnrollmentDate: row.EnrollmentDate,
			},
		})
	}

	result, err := s.deps.ImportStudentsHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	for _, re := range rowErrs {
		result.Failed = append(result.Failed, command.ImportRowError{Line: re.Line, Reason: re.Reason})
	}
	sort.SliceStable(result.Failed, func(i, j int) bool {
		return result.Failed[i].Line < result.Failed[j].Line
	})

	writeJSON(w, r, http.StatusOK, result)
}

// uploadedWorkbook returns the request's workbook stream.
func uploadedWorkbook(r *http.Request) (io.Reader, func(), error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.Body, func() {}, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("multipart field %q is required", "file")
	}
	return file, func() { _ = file.Close() }, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// NAVIGATION HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// NavigationRequest carries the client's current state and the action to
// apply.
type NavigationRequest struct {
	State  navigation.State  `json:"state"`
	Action navigation.Action `json:"action"`
}

// handleNavigation handles POST /api/v1/navigation
func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	var req NavigationRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Action.Validate(); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	next := navigation.Reduce(navigation.Normalize(req.State), req.Action)
	writeJSON(w, r, http.StatusOK, next)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DECODING
// ══════════════════════════════════════════════════════════════════════════════

// decodeJSON decodes the request body into dst, writing a 400 or 413 on
// failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeJSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		case errors.Is(err, io.EOF):
			writeJSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Request body is empty")
		default:
			writeJSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON: "+err.Error())
		}
		return false
	}
	return true
}
