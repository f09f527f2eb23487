package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"trackademy/backend/internal/attendance"
	"trackademy/backend/internal/dto"
	"trackademy/backend/internal/service"
	"trackademy/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc  service.AttendanceService
	maxUploadBytes int64
}

// NewAttendanceHandler 创建 AttendanceHandler；maxUploadBytes<=0 表示不限制上传大小
func NewAttendanceHandler(attendanceSvc service.AttendanceService, maxUploadBytes int64) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc, maxUploadBytes: maxUploadBytes}
}

// List 已存考勤记录
// GET /api/v1/attendance?course_id=xxx&date=2024-01-01
func (h *AttendanceHandler) List(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.AttendanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "course_id 与 date 不能为空")
		return
	}

	records, err := h.attendanceSvc.List(c.Request.Context(), caller, q.CourseID, q.Date)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}
	response.OK(c, records)
}

// Draft 服务端合并后的点名草稿
// GET /api/v1/attendance/draft?course_id=xxx&date=2024-01-01
func (h *AttendanceHandler) Draft(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.AttendanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "course_id 与 date 不能为空")
		return
	}

	draft, err := h.attendanceSvc.Draft(c.Request.Context(), caller, q.CourseID, q.Date)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}
	response.OK(c, draft)
}

// Submit 批量保存考勤
// POST /api/v1/attendance/bulk
func (h *AttendanceHandler) Submit(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var payload attendance.BulkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 22001, "参数校验失败", err.Error())
		return
	}

	ack, err := h.attendanceSvc.Submit(c.Request.Context(), caller, &payload)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}
	response.OK(c, ack)
}

// Import 从 Excel 导入考勤
// POST /api/v1/attendance/import (multipart/form-data: file, course_id, date)
func (h *AttendanceHandler) Import(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var form dto.ImportAttendanceForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, 10001, "course_id 与 date 不能为空")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 22001, "请上传文件")
		return
	}
	defer file.Close()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, 22009, "文件过大")
		return
	}

	resp, err := h.attendanceSvc.Import(c.Request.Context(), caller, form.CourseID, form.Date,
		attendance.Upload{Filename: header.Filename, Body: file})
	if err != nil {
		handleAttendanceError(c, err)
		return
	}
	response.OK(c, resp)
}

// Template 下载考勤导入模板
// GET /api/v1/attendance/template?course_id=xxx
func (h *AttendanceHandler) Template(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.TemplateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "course_id 不能为空")
		return
	}

	buf, filename, err := h.attendanceSvc.ExportTemplate(c.Request.Context(), caller, q.CourseID)
	if err != nil {
		handleAttendanceError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func handleAttendanceError(c *gin.Context, err error) {
	var verr *attendance.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, 22001, verr.Message(), verr.Field())
	case errors.Is(err, attendance.ErrSubmissionInFlight):
		response.Conflict(c, 22002, "上一次提交尚未完成，请稍候")
	case errors.Is(err, service.ErrStudentNotEnrolled):
		response.UnprocessableEntity(c, 22003, "学生不在该课程名单中", err.Error())
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 22004, "Excel文件无数据行")
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 22005, "Excel表头缺少必要列（学号/状态）")
	case errors.Is(err, service.ErrImportTooManyRows):
		response.ErrorWithDetails(c, http.StatusBadRequest, 22006, "数据行数超过上限", err.Error())
	case errors.Is(err, service.ErrImportUnreadable):
		response.BadRequest(c, 22007, "无法解析Excel文件")
	case errors.Is(err, service.ErrRosterEmpty):
		response.NotFound(c, 22008, "课程名单为空")
	case errors.Is(err, service.ErrTemplateGenerateFail):
		response.InternalError(c)
	default:
		handleCourseError(c, err)
	}
}
