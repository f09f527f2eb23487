package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"trackademy/backend/internal/attendance"
	"trackademy/backend/internal/course"
	"trackademy/backend/internal/dto"
	"trackademy/backend/internal/service"
	"trackademy/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock CourseService ──

type mockCourseService struct {
	listResult    []course.Course
	listErr       error
	filtersResult *course.Options
	filtersErr    error
	rosterResult  []attendance.Student
	rosterErr     error

	lastCaller  service.Caller
	lastSel     course.Selection
	lastFaculty string
	lastList    *dto.CourseListRequest
}

func (m *mockCourseService) ListCourses(_ context.Context, _ course.ListFilter) ([]course.Course, error) {
	return m.listResult, m.listErr
}
func (m *mockCourseService) List(_ context.Context, caller service.Caller, req *dto.CourseListRequest) ([]course.Course, error) {
	m.lastCaller, m.lastList = caller, req
	return m.listResult, m.listErr
}
func (m *mockCourseService) Scoped(_ context.Context, _ service.Caller, _ string) ([]course.Course, error) {
	return m.listResult, m.listErr
}
func (m *mockCourseService) Filters(_ context.Context, caller service.Caller, facultyUserID string, sel course.Selection) (*course.Options, error) {
	m.lastCaller, m.lastSel, m.lastFaculty = caller, sel, facultyUserID
	return m.filtersResult, m.filtersErr
}
func (m *mockCourseService) Authorize(_ context.Context, _ service.Caller, _ string) (*course.Course, error) {
	return nil, nil
}
func (m *mockCourseService) Roster(_ context.Context, _ service.Caller, _ string) ([]attendance.Student, error) {
	return m.rosterResult, m.rosterErr
}

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	listResult   []attendance.Record
	listErr      error
	draftResult  *dto.DraftResponse
	draftErr     error
	submitResult *attendance.Ack
	submitErr    error
	importResult *dto.ImportAttendanceResponse
	importErr    error
	templateBuf  *bytes.Buffer
	templateName string
	templateErr  error

	lastPayload  *attendance.BulkPayload
	lastFilename string
	lastFileBody string
}

func (m *mockAttendanceService) List(_ context.Context, _ service.Caller, _, _ string) ([]attendance.Record, error) {
	return m.listResult, m.listErr
}
func (m *mockAttendanceService) Draft(_ context.Context, _ service.Caller, _, _ string) (*dto.DraftResponse, error) {
	return m.draftResult, m.draftErr
}
func (m *mockAttendanceService) Submit(_ context.Context, _ service.Caller, p *attendance.BulkPayload) (*attendance.Ack, error) {
	m.lastPayload = p
	return m.submitResult, m.submitErr
}
func (m *mockAttendanceService) Import(_ context.Context, _ service.Caller, _, _ string, file attendance.Upload) (*dto.ImportAttendanceResponse, error) {
	m.lastFilename = file.Filename
	if file.Body != nil {
		b, _ := io.ReadAll(file.Body)
		m.lastFileBody = string(b)
	}
	return m.importResult, m.importErr
}
func (m *mockAttendanceService) ExportTemplate(_ context.Context, _ service.Caller, _ string) (*bytes.Buffer, string, error) {
	return m.templateBuf, m.templateName, m.templateErr
}

// ── Mock AssignmentService ──

type mockAssignmentService struct {
	createResult *dto.AssignmentResponse
	createErr    error
	listResult   []dto.AssignmentResponse
	listErr      error

	lastReq *dto.CreateAssignmentRequest
}

func (m *mockAssignmentService) Create(_ context.Context, _ service.Caller, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	m.lastReq = req
	return m.createResult, m.createErr
}
func (m *mockAssignmentService) ListByCourse(_ context.Context, _ service.Caller, _ string) ([]dto.AssignmentResponse, error) {
	return m.listResult, m.listErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

const testUserID = "55555555-0000-0000-0000-000000000001"

func setAuth(c *gin.Context) {
	c.Set("user_id", testUserID)
	c.Set("role", "faculty")
}

// newRouter 注册单个路由；auth=true 时模拟 JWT 中间件注入身份
func newRouter(method, path string, h gin.HandlerFunc, auth bool) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{}
	if auth {
		handlers = append(handlers, setAuth)
	}
	handlers = append(handlers, h)
	r.Handle(method, path, handlers...)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func multipartUpload(t *testing.T, fields map[string]string, filename, content string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("写入表单字段失败: %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("创建文件字段失败: %v", err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

// ═══════════════════════════════════════════════════════════
// Context Helper Tests
// ═══════════════════════════════════════════════════════════

func TestMustGetCaller_Unauthenticated(t *testing.T) {
	h := NewCourseHandler(&mockCourseService{})
	r := newRouter("GET", "/courses", h.List, false)

	w := serve(r, httptest.NewRequest("GET", "/courses", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10002 {
		t.Errorf("expected code 10002, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CourseHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCourseHandler_List_Success(t *testing.T) {
	mock := &mockCourseService{listResult: []course.Course{{ID: "c-1"}}}
	h := NewCourseHandler(mock)
	r := newRouter("GET", "/courses", h.List, true)

	w := serve(r, httptest.NewRequest("GET", "/courses", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastCaller.UserID != testUserID || mock.lastCaller.Role != "faculty" {
		t.Errorf("unexpected caller: %+v", mock.lastCaller)
	}
}

func TestCourseHandler_List_BadFacultyID(t *testing.T) {
	h := NewCourseHandler(&mockCourseService{})
	r := newRouter("GET", "/courses", h.List, true)

	w := serve(r, httptest.NewRequest("GET", "/courses?faculty_user_id=not-a-uuid", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCourseHandler_Filters_BindsSelection(t *testing.T) {
	mock := &mockCourseService{filtersResult: &course.Options{}}
	h := NewCourseHandler(mock)
	r := newRouter("GET", "/courses/filters", h.Filters, true)

	w := serve(r, httptest.NewRequest("GET", "/courses/filters?semester_id=sem-3&division_id=div-a&subject_id=sub-lab&batch=B1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	want := course.Selection{SemesterID: "sem-3", DivisionID: "div-a", SubjectID: "sub-lab", Batch: "B1"}
	if mock.lastSel != want {
		t.Errorf("expected selection %+v, got %+v", want, mock.lastSel)
	}
}

func TestCourseHandler_Filters_PassesFaculty(t *testing.T) {
	mock := &mockCourseService{filtersResult: &course.Options{}}
	h := NewCourseHandler(mock)
	r := newRouter("GET", "/courses/filters", h.Filters, true)

	const fac = "6f1c2a8e-9b7d-4c3e-8a21-5d0f4b6e7c91"
	w := serve(r, httptest.NewRequest("GET", "/courses/filters?faculty_user_id="+fac+"&semester_id=sem-3", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastFaculty != fac || mock.lastSel.SemesterID != "sem-3" {
		t.Errorf("unexpected forwarded values: faculty=%q sel=%+v", mock.lastFaculty, mock.lastSel)
	}

	w = serve(r, httptest.NewRequest("GET", "/courses/filters?faculty_user_id=not-a-uuid", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed faculty_user_id, got %d", w.Code)
	}
}

func TestCourseHandler_Filters_DropsOrphanLevels(t *testing.T) {
	mock := &mockCourseService{filtersResult: &course.Options{}}
	h := NewCourseHandler(mock)
	r := newRouter("GET", "/courses/filters", h.Filters, true)

	// 未选学期时下级取值无效
	serve(r, httptest.NewRequest("GET", "/courses/filters?division_id=div-a&subject_id=sub-ds", nil))

	if mock.lastSel != (course.Selection{}) {
		t.Errorf("expected empty selection, got %+v", mock.lastSel)
	}
}

func TestCourseHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrCourseNotFound, 404, 21001},
		{"Corrupt", service.ErrCourseCorrupt, 422, 21002},
		{"Forbidden", service.ErrCourseForbidden, 403, 21003},
		{"FacultyRequired", service.ErrFacultyRequired, 400, 21004},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCourseHandler(&mockCourseService{rosterErr: tt.err})
			r := newRouter("GET", "/courses/:id/students", h.Roster, true)

			w := serve(r, httptest.NewRequest("GET", "/courses/c-1/students", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_List_MissingQuery(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{}, 0)
	r := newRouter("GET", "/attendance", h.List, true)

	w := serve(r, httptest.NewRequest("GET", "/attendance?course_id=c-1", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAttendanceHandler_Draft_Success(t *testing.T) {
	mock := &mockAttendanceService{draftResult: &dto.DraftResponse{
		CourseID: "c-1",
		Date:     "2024-01-01",
		Entries:  []attendance.Entry{{StudentID: "s-1", Status: attendance.StatusPresent}},
	}}
	h := NewAttendanceHandler(mock, 0)
	r := newRouter("GET", "/attendance/draft", h.Draft, true)

	w := serve(r, httptest.NewRequest("GET", "/attendance/draft?course_id=c-1&date=2024-01-01", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAttendanceHandler_Submit_Success(t *testing.T) {
	mock := &mockAttendanceService{submitResult: &attendance.Ack{CourseID: "c-1", Date: "2024-01-01", Saved: 2}}
	h := NewAttendanceHandler(mock, 0)
	r := newRouter("POST", "/attendance/bulk", h.Submit, true)

	req := httptest.NewRequest("POST", "/attendance/bulk", jsonBody(map[string]interface{}{
		"courseId": "c-1",
		"date":     "2024-01-01",
		"records": []map[string]string{
			{"studentId": "s-1", "status": "PRESENT"},
			{"studentId": "s-2", "status": "MEDICAL_LEAVE"},
		},
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if mock.lastPayload == nil || len(mock.lastPayload.Records) != 2 {
		t.Fatalf("payload not forwarded: %+v", mock.lastPayload)
	}
	if mock.lastPayload.Records[1].Status != attendance.StatusMedicalLeave {
		t.Errorf("unexpected status: %s", mock.lastPayload.Records[1].Status)
	}
}

func TestAttendanceHandler_Submit_RejectsUnknownStatus(t *testing.T) {
	mock := &mockAttendanceService{}
	h := NewAttendanceHandler(mock, 0)
	r := newRouter("POST", "/attendance/bulk", h.Submit, true)

	req := httptest.NewRequest("POST", "/attendance/bulk", jsonBody(map[string]interface{}{
		"courseId": "c-1",
		"date":     "2024-01-01",
		"records":  []map[string]string{{"studentId": "s-1", "status": "LATE"}},
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 22001 {
		t.Errorf("expected code 22001, got %d", resp.Code)
	}
	if mock.lastPayload != nil {
		t.Error("invalid payload must not reach the service")
	}
}

func TestAttendanceHandler_Submit_EmptyRecords(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{}, 0)
	r := newRouter("POST", "/attendance/bulk", h.Submit, true)

	req := httptest.NewRequest("POST", "/attendance/bulk", jsonBody(map[string]interface{}{
		"courseId": "c-1",
		"date":     "2024-01-01",
		"records":  []map[string]string{},
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAttendanceHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"DateInvalid", attendance.ErrDateInvalid, 400, 22001},
		{"InFlight", attendance.ErrSubmissionInFlight, 409, 22002},
		{"NotEnrolled", fmt.Errorf("%w: s-9", service.ErrStudentNotEnrolled), 422, 22003},
		{"CourseForbidden", service.ErrCourseForbidden, 403, 21003},
		{"CourseNotFound", service.ErrCourseNotFound, 404, 21001},
		{"InternalError", errors.New("db down"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAttendanceHandler(&mockAttendanceService{submitErr: tt.err}, 0)
			r := newRouter("POST", "/attendance/bulk", h.Submit, true)

			req := httptest.NewRequest("POST", "/attendance/bulk", jsonBody(map[string]interface{}{
				"courseId": "c-1",
				"date":     "2024-01-01",
				"records":  []map[string]string{{"studentId": "s-1", "status": "ABSENT"}},
			}))
			req.Header.Set("Content-Type", "application/json")
			w := serve(r, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAttendanceHandler_Import_Success(t *testing.T) {
	mock := &mockAttendanceService{importResult: &dto.ImportAttendanceResponse{Total: 3, Applied: 2, Failed: 1}}
	h := NewAttendanceHandler(mock, 1<<20)
	r := newRouter("POST", "/attendance/import", h.Import, true)

	body, ct := multipartUpload(t, map[string]string{"course_id": "c-1", "date": "2024-01-01"}, "sheet.xlsx", "xlsx-bytes")
	req := httptest.NewRequest("POST", "/attendance/import", body)
	req.Header.Set("Content-Type", ct)
	w := serve(r, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if mock.lastFilename != "sheet.xlsx" || mock.lastFileBody != "xlsx-bytes" {
		t.Errorf("upload not forwarded: %q %q", mock.lastFilename, mock.lastFileBody)
	}
}

func TestAttendanceHandler_Import_MissingFile(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{}, 0)
	r := newRouter("POST", "/attendance/import", h.Import, true)

	body, ct := multipartUpload(t, map[string]string{"course_id": "c-1", "date": "2024-01-01"}, "", "")
	req := httptest.NewRequest("POST", "/attendance/import", body)
	req.Header.Set("Content-Type", ct)
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAttendanceHandler_Import_TooLarge(t *testing.T) {
	mock := &mockAttendanceService{}
	h := NewAttendanceHandler(mock, 4)
	r := newRouter("POST", "/attendance/import", h.Import, true)

	body, ct := multipartUpload(t, map[string]string{"course_id": "c-1", "date": "2024-01-01"}, "sheet.xlsx", "more than four bytes")
	req := httptest.NewRequest("POST", "/attendance/import", body)
	req.Header.Set("Content-Type", ct)
	w := serve(r, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
	if mock.lastFilename != "" {
		t.Error("oversized upload must not reach the service")
	}
}

func TestAttendanceHandler_Import_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"FileType", attendance.ErrFileType, 400, 22001},
		{"NoData", service.ErrImportNoData, 400, 22004},
		{"BadHeader", service.ErrImportBadHeader, 400, 22005},
		{"TooManyRows", fmt.Errorf("%w: 600 > 500", service.ErrImportTooManyRows), 400, 22006},
		{"Unreadable", service.ErrImportUnreadable, 400, 22007},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAttendanceHandler(&mockAttendanceService{importErr: tt.err}, 0)
			r := newRouter("POST", "/attendance/import", h.Import, true)

			body, ct := multipartUpload(t, map[string]string{"course_id": "c-1", "date": "2024-01-01"}, "sheet.xlsx", "x")
			req := httptest.NewRequest("POST", "/attendance/import", body)
			req.Header.Set("Content-Type", ct)
			w := serve(r, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAttendanceHandler_Template_Success(t *testing.T) {
	mock := &mockAttendanceService{
		templateBuf:  bytes.NewBufferString("excel content"),
		templateName: "attendance_CS301_A.xlsx",
	}
	h := NewAttendanceHandler(mock, 0)
	r := newRouter("GET", "/attendance/template", h.Template, true)

	w := serve(r, httptest.NewRequest("GET", "/attendance/template?course_id=c-1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attendance_CS301_A.xlsx") {
		t.Errorf("unexpected Content-Disposition: %s", cd)
	}
	if w.Body.String() != "excel content" {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestAttendanceHandler_Template_RosterEmpty(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{templateErr: service.ErrRosterEmpty}, 0)
	r := newRouter("GET", "/attendance/template", h.Template, true)

	w := serve(r, httptest.NewRequest("GET", "/attendance/template?course_id=c-1", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AssignmentHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAssignmentHandler_Create_Success(t *testing.T) {
	mock := &mockAssignmentService{createResult: &dto.AssignmentResponse{ID: "a-1", CourseID: "c-1", Title: "Lab 1"}}
	h := NewAssignmentHandler(mock)
	r := newRouter("POST", "/assignments", h.Create, true)

	req := httptest.NewRequest("POST", "/assignments", jsonBody(dto.CreateAssignmentRequest{
		SemesterID: "sem-3",
		DivisionID: "div-a",
		SubjectID:  "sub-lab",
		Batch:      "B1",
		Title:      "Lab 1",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.lastReq == nil || mock.lastReq.Batch != "B1" {
		t.Errorf("request not forwarded: %+v", mock.lastReq)
	}
}

func TestAssignmentHandler_Create_MissingTitle(t *testing.T) {
	h := NewAssignmentHandler(&mockAssignmentService{})
	r := newRouter("POST", "/assignments", h.Create, true)

	req := httptest.NewRequest("POST", "/assignments", jsonBody(dto.CreateAssignmentRequest{
		SemesterID: "sem-3",
		DivisionID: "div-a",
		SubjectID:  "sub-ds",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAssignmentHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"TitleEmpty", service.ErrAssignmentTitleEmpty, 400, 23001},
		{"DueDate", service.ErrAssignmentDueDateInvalid, 400, 23002},
		{"Unresolved", course.ErrUnresolved, 422, 23003},
		{"Ambiguous", course.ErrAmbiguous, 409, 23004},
		{"Forbidden", service.ErrCourseForbidden, 403, 21003},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAssignmentHandler(&mockAssignmentService{createErr: tt.err})
			r := newRouter("POST", "/assignments", h.Create, true)

			req := httptest.NewRequest("POST", "/assignments", jsonBody(dto.CreateAssignmentRequest{
				SemesterID: "sem-3",
				DivisionID: "div-a",
				SubjectID:  "sub-lab",
				Title:      "Lab 1",
			}))
			req.Header.Set("Content-Type", "application/json")
			w := serve(r, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestAssignmentHandler_List_MissingCourse(t *testing.T) {
	h := NewAssignmentHandler(&mockAssignmentService{})
	r := newRouter("GET", "/assignments", h.List, true)

	w := serve(r, httptest.NewRequest("GET", "/assignments", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
