package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"trackademy/backend/internal/dto"
	"trackademy/backend/internal/service"
	"trackademy/backend/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// List 当前身份可见的课程
// GET /api/v1/courses?faculty_user_id=xxx&semester_id=xxx
func (h *CourseHandler) List(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	courses, err := h.courseSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, courses)
}

// Filters 级联筛选的可选项与解析结果
// GET /api/v1/courses/filters?faculty_user_id=&semester_id=&division_id=&subject_id=&batch=
func (h *CourseHandler) Filters(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CourseFiltersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	opts, err := h.courseSvc.Filters(c.Request.Context(), caller, req.FacultyUserID, req.Selection.Normalize())
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, opts)
}

// Roster 课程花名册
// GET /api/v1/courses/:id/students
func (h *CourseHandler) Roster(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	students, err := h.courseSvc.Roster(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, students)
}

// handleCourseError 课程相关错误；其余模块的 handleXxxError 未命中时也回落到这里
func handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 21001, "课程不存在")
	case errors.Is(err, service.ErrCourseCorrupt):
		response.UnprocessableEntity(c, 21002, "课程数据不完整", err.Error())
	case errors.Is(err, service.ErrCourseForbidden):
		response.Forbidden(c, 21003, "无权访问该课程")
	case errors.Is(err, service.ErrFacultyRequired):
		response.BadRequest(c, 21004, "管理员须指定教师（faculty_user_id）")
	default:
		response.InternalError(c)
	}
}
