package dto

import "trackademy/backend/internal/attendance"

// ── 考勤模块 DTO ──

// AttendanceQuery (课程, 日期) 查询参数
type AttendanceQuery struct {
	CourseID string `form:"course_id" binding:"required"`
	Date     string `form:"date"      binding:"required"`
}

// TemplateQuery 模板下载参数
type TemplateQuery struct {
	CourseID string `form:"course_id" binding:"required"`
}

// ImportAttendanceForm 导入表单（multipart），文件字段为 file
type ImportAttendanceForm struct {
	CourseID string `form:"course_id" binding:"required"`
	Date     string `form:"date"      binding:"required"`
}

// DraftResponse 服务端合并后的点名草稿
type DraftResponse struct {
	CourseID string                    `json:"courseId"`
	Date     string                    `json:"date"`
	Entries  []attendance.Entry        `json:"entries"`
	Counts   map[attendance.Status]int `json:"counts"`
}

// ImportAttendanceResponse 考勤导入报告
type ImportAttendanceResponse struct {
	CourseID string           `json:"courseId"`
	Date     string           `json:"date"`
	Total    int              `json:"total"`
	Applied  int              `json:"applied"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError 导入错误详情（行号从表头下一行 2 开始）
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
