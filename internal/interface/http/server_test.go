package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/alem-hub/student-dashboard/internal/application/command"
	"github.com/alem-hub/student-dashboard/internal/application/query"
	"github.com/alem-hub/student-dashboard/internal/domain/metrics"
	"github.com/alem-hub/student-dashboard/internal/domain/student"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/student-dashboard/internal/infrastructure/report"
	"github.com/alem-hub/student-dashboard/internal/interface/http/handlers"
	"github.com/alem-hub/student-dashboard/pkg/logger"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *APIError       `json:"error"`
	Meta      *ResponseMeta   `json:"meta"`
	RequestID string          `json:"request_id"`
}

func newTestServer(t *testing.T, mutate func(*Config, *Dependencies)) (*Server, *memory.StudentRepository) {
	t.Helper()

	repo := memory.NewSeededStudentRepository()
	policy := metrics.DefaultPolicy()
	add := command.NewAddStudentHandler(repo, logger.Nop())

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	deps := Dependencies{
		GetDashboardHandler:     query.NewGetDashboardHandler(repo, memory.NewSnapshotRepository(), policy),
		ListStudentsHandler:     query.NewListStudentsHandler(repo),
		GetStudentDetailHandler: query.NewGetStudentDetailHandler(repo),
		ExportRosterHandler:     query.NewExportRosterHandler(repo, policy, report.WriteWorkbook),
		AddStudentHandler:       add,
		RecordGradeHandler:      command.NewRecordGradeHandler(repo, logger.Nop()),
		MarkAttendanceHandler:   command.NewMarkAttendanceHandler(repo, logger.Nop()),
		DeleteStudentHandler:    command.NewDeleteStudentHandler(repo, logger.Nop()),
		ImportStudentsHandler:   command.NewImportStudentsHandler(add, logger.Nop()),
		Logger:                  logger.Nop(),
		Version:                 "test",
	}
	if mutate != nil {
		mutate(&cfg, &deps)
	}
	return NewServer(cfg, deps), repo
}

func do(t *testing.T, s *Server, method, target string, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestDashboard(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec, env := do(t, s, http.MethodGet, "/api/v1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	assert.NotEmpty(t, env.RequestID)
	assert.Equal(t, env.RequestID, rec.Header().Get("X-Request-ID"))

	var got query.DashboardResult
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 4, got.TotalStudents)
	assert.Equal(t, 80.0, got.AverageGrade)
	assert.Equal(t, 75.0, got.AttendanceRate)

	require.Len(t, got.TopPerformers, 2)
	assert.Equal(t, "STU001", got.TopPerformers[0].StudentID)
	assert.Equal(t, "STU003", got.TopPerformers[1].StudentID)
	require.Len(t, got.ImprovementNeeded, 1)
	assert.Equal(t, "STU004", got.ImprovementNeeded[0].StudentID)

	require.Len(t, got.SubjectPerformance, 4)
	assert.Equal(t, "Mathematics", got.SubjectPerformance[0].Subject)
	assert.Equal(t, 78.8, got.SubjectPerformance[0].AverageScore)
	assert.Equal(t, 8, got.SubjectPerformance[0].TotalAssignments)
}

func TestDashboard_BadTrend(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec, env := do(t, s, http.MethodGet, "/api/v1/dashboard?trend=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/dashboard?trend=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListStudents(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"all", "/api/v1/students", []string{"STU001", "STU002", "STU003", "STU004"}},
		{"search name", "/api/v1/students?search=ali", []string{"STU001"}},
		{"search id", "/api/v1/students?search=stu00", []string{"STU001", "STU002", "STU003", "STU004"}},
		{"section", "/api/v1/students?section=B", []string{"STU003", "STU004"}},
		{"all literal", "/api/v1/students?class=All&section=All", []string{"STU001", "STU002", "STU003", "STU004"}},
		{"no match", "/api/v1/students?class=9th%20Grade", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, s, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, rec.Code)

			var got query.ListStudentsResult
			require.NoError(t, json.Unmarshal(env.Data, &got))
			ids := make([]string, 0, len(got.Students))
			for _, st := range got.Students {
				ids = append(ids, st.StudentID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, 4, got.Total)
			assert.Equal(t, 4, env.Meta.TotalCount)
		})
	}
}

func TestGetStudent(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec, env := do(t, s, http.MethodGet, "/api/v1/students/STU001", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got query.StudentDetailDTO
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Alice Johnson", got.Name)
	assert.Equal(t, 90.6, got.Average)

	rec, env = do(t, s, http.MethodGet, "/api/v1/students/STU999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAddStudent(t *testing.T) {
	s, repo := newTestServer(t, nil)

	body := `{"student_id":"STU010","name":"Erin Moore","email":"erin.moore@school.edu",
		"class":"9th Grade","section":"C","enrollment_date":"2024-09-01"}`
	rec, env := do(t, s, http.MethodPost, "/api/v1/students", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/v1/students/STU010", rec.Header().Get("Location"))
	assert.True(t, env.Success)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	rec, env = do(t, s, http.MethodPost, "/api/v1/students", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", env.Error.Code)
}

func TestAddStudent_Invalid(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec, env := do(t, s, http.MethodPost, "/api/v1/students",
		`{"student_id":"STU010","name":"Erin","email":"nope","class":"9th Grade","section":"C"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, []command.FieldError{{Field: "email", Rule: "email"}}, env.Error.Fields)

	rec, env = do(t, s, http.MethodPost, "/api/v1/students", `{"student_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", env.Error.Code)

	rec, _ = do(t, s, http.MethodPost, "/api/v1/students", `{"nickname":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordGradeAndAttendance(t *testing.T) {
	s, repo := newTestServer(t, nil)

	rec, env := do(t, s, http.MethodPost, "/api/v1/students/STU004/grades",
		`{"subject":"Mathematics","assignment":"Quiz 2","max_marks":20,"obtained_marks":17,"date":"2024-11-05","category":"quiz"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var g query.GradeDTO
	require.NoError(t, json.Unmarshal(env.Data, &g))
	assert.Equal(t, 85.0, g.Percentage)
	assert.Equal(t, "B+", g.Letter)

	rec, env = do(t, s, http.MethodPost, "/api/v1/students/STU004/attendance",
		`{"date":"2024-11-05","status":"present"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var a query.AttendanceDTO
	require.NoError(t, json.Unmarshal(env.Data, &a))
	assert.Equal(t, "2024-11-05", a.Date)
	assert.Equal(t, "present", a.Status)

	st, err := repo.GetByStudentID(context.Background(), "STU004")
	require.NoError(t, err)
	assert.Len(t, st.Grades, 6)
	assert.Len(t, st.Attendance, 4)

	rec, _ = do(t, s, http.MethodPost, "/api/v1/students/STU999/attendance", `{"status":"present"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteStudent(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec, _ := do(t, s, http.MethodDelete, "/api/v1/students/STU001", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = do(t, s, http.MethodDelete, "/api/v1/students/STU001", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteAPIDisabled(t *testing.T) {
	s, _ := newTestServer(t, func(c *Config, _ *Dependencies) { c.WriteAPI = false })

	rec, _ := do(t, s, http.MethodDelete, "/api/v1/students/STU001", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/students/STU001", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportReport(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec, _ := do(t, s, http.MethodGet, "/api/v1/reports/students.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "students.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(report.SheetStudents)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}

func TestExportReport_Failure(t *testing.T) {
	s, _ := newTestServer(t, func(_ *Config, d *Dependencies) {
		repo := memory.NewSeededStudentRepository()
		d.ExportRosterHandler = query.NewExportRosterHandler(repo, metrics.DefaultPolicy(),
			func(_ io.Writer, _ []*student.Student, _ metrics.Fleet) error {
				return errors.New("disk full")
			})
	})

	rec, env := do(t, s, http.MethodGet, "/api/v1/reports/students.xlsx", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
}

func rosterWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []any{"Student ID", "Name", "Email", "Class", "Section", "Enrollment Date"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImportStudents_Multipart(t *testing.T) {
	s, repo := newTestServer(t, nil)

	data := rosterWorkbook(t,
		[]any{"STU010", "Erin Moore", "erin@school.edu", "9th Grade", "C", "2024-09-01"},
		[]any{"STU001", "Alice Again", "alice2@school.edu", "10th Grade", "A", "2024-09-01"},
		[]any{"", "", "nameless@school.edu"},
		[]any{"STU011", "Frank Lee", "frank@school.edu", "9th Grade", "C", ""},
	)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "roster.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var got command.ImportStudentsResult
	require.NoError(t, json.Unmarshal(env.Data, &got))

	assert.Equal(t, 2, got.Imported)
	require.Len(t, got.Failed, 2)
	assert.Equal(t, 3, got.Failed[0].Line)
	assert.Equal(t, "STU001", got.Failed[0].StudentID)
	assert.Equal(t, 4, got.Failed[1].Line)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestImportStudents_RawBody(t *testing.T) {
	s, _ := newTestServer(t, nil)

	data := rosterWorkbook(t, []any{"STU010", "Erin Moore", "erin@school.edu", "9th Grade", "C", "2024-09-01"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/students/import", bytes.NewReader(data))
	req.Header.Set("Content-Type", XLSXContentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := do(t, s, http.MethodPost, "/api/v1/students/import", "not a workbook")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_WORKBOOK", env.Error.Code)
}

func TestNavigation(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"select", `{"state":{"view":"students"},"action":{"type":"select_student","student_id":"STU002"}}`,
			`{"view":"student-detail","selected_student_id":"STU002"}`},
		{"back", `{"state":{"view":"student-detail","selected_student_id":"STU002"},"action":{"type":"back"}}`,
			`{"view":"students"}`},
		{"repairs state", `{"state":{"view":"reports"},"action":{"type":"back"}}`,
			`{"view":"dashboard"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, s, http.MethodPost, "/api/v1/navigation", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, string(env.Data))
		})
	}

	rec, env := do(t, s, http.MethodPost, "/api/v1/navigation", `{"state":{"view":"students"},"action":{"type":"zoom"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, func(_ *Config, d *Dependencies) {
		checker := handlers.NewCompositeHealthChecker("test")
		checker.AddCheck("store", handlers.NewStoreCheck(memory.NewSeededStudentRepository()))
		d.HealthChecker = checker
	})

	rec, env := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status handlers.HealthStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Healthy)
	assert.Contains(t, status.Checks, "store")

	rec, _ = do(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth_Unhealthy(t *testing.T) {
	s, _ := newTestServer(t, func(_ *Config, d *Dependencies) {
		checker := handlers.NewCompositeHealthChecker("test")
		checker.AddCheck("postgres", func(context.Context) error { return errors.New("connection refused") })
		d.HealthChecker = checker
	})

	rec, _ := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, env := do(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, env.Success)
}

func TestMiddleware(t *testing.T) {
	s, _ := newTestServer(t, func(c *Config, _ *Dependencies) {
		c.AllowedOrigins = []string{"https://dashboard.school.edu"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/students", nil)
	req.Header.Set("Origin", "https://dashboard.school.edu")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://dashboard.school.edu", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("X-Request-ID", "req-42")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, func(c *Config, _ *Dependencies) { c.RateLimitPerMinute = 2 })
	defer s.rateLimiter.Stop()

	for i := 0; i < 2; i++ {
		rec, _ := do(t, s, http.MethodGet, "/live", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	}
	rec, env := do(t, s, http.MethodGet, "/live", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	// rejected before any inner middleware runs
	assert.Empty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestSizeLimit(t *testing.T) {
	s, _ := newTestServer(t, func(c *Config, _ *Dependencies) { c.MaxBodyBytes = 16 })

	rec, _ := do(t, s, http.MethodPost, "/api/v1/navigation", `{"state":{"view":"students"},"action":{"type":"back"}}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRecovery(t *testing.T) {
	s, _ := newTestServer(t, nil)
	s.router.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec, env := do(t, s, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "10.0.0.7", getClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.8")
	assert.Equal(t, "10.0.0.8", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", getClientIP(req))
}
