package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trackademy/backend/internal/course"
	"trackademy/backend/internal/dto"
	"trackademy/backend/internal/service"
	"trackademy/backend/pkg/response"
)

// AssignmentHandler 作业模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// Create 新建作业，课程由级联选择解析
// POST /api/v1/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
		return
	}

	resp, err := h.assignmentSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.Created(c, resp)
}

// List 课程下的作业
// GET /api/v1/assignments?course_id=xxx
func (h *AssignmentHandler) List(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.AssignmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "course_id 不能为空")
		return
	}

	list, err := h.assignmentSvc.ListByCourse(c.Request.Context(), caller, req.CourseID)
	if err != nil {
		handleAssignmentError(c, err)
		return
	}
	response.OK(c, list)
}

func handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentTitleEmpty):
		response.BadRequest(c, 23001, "作业标题不能为空")
	case errors.Is(err, service.ErrAssignmentDueDateInvalid):
		response.BadRequest(c, 23002, "截止日期格式无效")
	case errors.Is(err, course.ErrUnresolved):
		response.UnprocessableEntity(c, 23003, "课程未确定", err.Error())
	case errors.Is(err, course.ErrAmbiguous):
		response.Conflict(c, 23004, "匹配到多门课程：请选择批次")
	default:
		handleCourseError(c, err)
	}
}
