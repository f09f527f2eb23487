// Package client 考勤服务的 REST 客户端
//
// 实现 course.Directory、attendance.Roster、attendance.Store 与 attendance.Invalidator，
// 供运维控制台驱动 attendance.Session。考勤列表在本地按 (课程, 日期) 缓存，
// 写入成功后由 Session 通过 InvalidateAttendance 失效。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"trackademy/backend/internal/attendance"
	"trackademy/backend/internal/course"
	"trackademy/backend/internal/dto"
)

var (
	_ course.Directory       = (*Client)(nil)
	_ attendance.Roster      = (*Client)(nil)
	_ attendance.Store       = (*Client)(nil)
	_ attendance.Invalidator = (*Client)(nil)
)

// APIError 服务端返回的业务错误
type APIError struct {
	Status  int
	Code    int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Details)
	}
	return e.Message
}

// Client REST 客户端
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger

	mu    sync.Mutex
	cache map[string][]attendance.Record
}

// New 创建客户端；baseURL 形如 http://localhost:8080
func New(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		token:   token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		cache:   make(map[string][]attendance.Record),
	}
}

// envelope 统一响应结构
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details string          `json:"details"`
}

// ── 课程 ──

// ListCourses 课程列表
func (c *Client) ListCourses(ctx context.Context, filter course.ListFilter) ([]course.Course, error) {
	q := url.Values{}
	if filter.FacultyUserID != "" {
		q.Set("faculty_user_id", filter.FacultyUserID)
	}
	if filter.SemesterID != "" {
		q.Set("semester_id", filter.SemesterID)
	}
	var out []course.Course
	if err := c.getJSON(ctx, "/courses", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Filters 服务端计算的级联选项；管理员身份须给出 facultyUserID
func (c *Client) Filters(ctx context.Context, facultyUserID string, sel course.Selection) (*course.Options, error) {
	q := url.Values{}
	if facultyUserID != "" {
		q.Set("faculty_user_id", facultyUserID)
	}
	q.Set("semester_id", sel.SemesterID)
	q.Set("division_id", sel.DivisionID)
	q.Set("subject_id", sel.SubjectID)
	q.Set("batch", sel.Batch)
	var out course.Options
	if err := c.getJSON(ctx, "/courses/filters", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListEnrolledStudents 课程花名册
func (c *Client) ListEnrolledStudents(ctx context.Context, courseID string) ([]attendance.Student, error) {
	var out []attendance.Student
	if err := c.getJSON(ctx, "/courses/"+url.PathEscape(courseID)+"/students", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── 考勤 ──

func cacheKey(courseID, date string) string { return courseID + ":" + date }

// ListAttendance 已存考勤记录，命中本地缓存时不发请求
func (c *Client) ListAttendance(ctx context.Context, courseID, date string) ([]attendance.Record, error) {
	key := cacheKey(courseID, date)
	c.mu.Lock()
	cached, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	q := url.Values{}
	q.Set("course_id", courseID)
	q.Set("date", date)
	var out []attendance.Record
	if err := c.getJSON(ctx, "/attendance", q, &out); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = out
	c.mu.Unlock()
	return out, nil
}

// InvalidateAttendance 失效本地缓存
func (c *Client) InvalidateAttendance(_ context.Context, courseID, date string) error {
	c.mu.Lock()
	delete(c.cache, cacheKey(courseID, date))
	c.mu.Unlock()
	return nil
}

// SubmitAttendance 批量保存
func (c *Client) SubmitAttendance(ctx context.Context, payload *attendance.BulkPayload) (*attendance.Ack, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var ack attendance.Ack
	if err := c.do(ctx, http.MethodPost, "/attendance/bulk", nil, "application/json", bytes.NewReader(body), &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// ImportAttendanceFile 上传 xlsx；部分行失败时仍返回回执，Message 中带失败行
func (c *Client) ImportAttendanceFile(ctx context.Context, courseID, date string, file attendance.Upload) (*attendance.Ack, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("course_id", courseID)
	_ = mw.WriteField("date", date)
	fw, err := mw.CreateFormFile("file", file.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, file.Body); err != nil {
		return nil, fmt.Errorf("读取导入文件失败: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var report dto.ImportAttendanceResponse
	if err := c.do(ctx, http.MethodPost, "/attendance/import", nil, mw.FormDataContentType(), &buf, &report); err != nil {
		return nil, err
	}
	return importAck(&report), nil
}

func importAck(r *dto.ImportAttendanceResponse) *attendance.Ack {
	msg := fmt.Sprintf("共 %d 行，写入 %d 行，失败 %d 行", r.Total, r.Applied, r.Failed)
	for _, e := range r.Errors {
		msg += fmt.Sprintf("\n  第 %d 行: %s", e.Row, e.Reason)
	}
	return &attendance.Ack{CourseID: r.CourseID, Date: r.Date, Saved: r.Applied, Message: msg}
}

// ExportTemplate 下载导入模板，返回内容与服务端建议的文件名
func (c *Client) ExportTemplate(ctx context.Context, courseID string) ([]byte, string, error) {
	q := url.Values{}
	q.Set("course_id", courseID)
	resp, err := c.send(ctx, http.MethodGet, "/attendance/template", q, "", nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", decodeError(resp.StatusCode, raw)
	}

	filename := "attendance_template.xlsx"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return raw, filename, nil
}

// ── 作业 ──

// CreateAssignment 新建作业
func (c *Client) CreateAssignment(ctx context.Context, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var out dto.AssignmentResponse
	if err := c.do(ctx, http.MethodPost, "/assignments", nil, "application/json", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── 传输 ──

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dst interface{}) error {
	return c.do(ctx, http.MethodGet, path, q, "", nil, dst)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, contentType string, body io.Reader, dst interface{}) error {
	resp, err := c.send(ctx, method, path, q, contentType, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("响应格式无效: %w", err)
	}
	if env.Code != 0 {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message, Details: env.Details}
	}
	if dst == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, dst)
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, contentType string, body io.Reader) (*http.Response, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("请求失败", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("请求完成",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp, nil
}

func decodeError(status int, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return &APIError{Status: status, Code: env.Code, Message: env.Message, Details: env.Details}
	}
	return &APIError{Status: status, Message: http.StatusText(status)}
}
