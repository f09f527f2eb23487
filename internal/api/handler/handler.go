package handler

import (
	"trackademy/backend/config"
	"trackademy/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Course     *CourseHandler
	Attendance *AttendanceHandler
	Assignment *AssignmentHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Course:     NewCourseHandler(svc.Course),
		Attendance: NewAttendanceHandler(svc.Attendance, cfg.Attendance.MaxUploadBytes),
		Assignment: NewAssignmentHandler(svc.Assignment),
	}
}
