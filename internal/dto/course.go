package dto

import "trackademy/backend/internal/course"

// ── 课程模块 DTO ──

// CourseListRequest 课程列表查询参数
// faculty_user_id 仅管理员可指定；教师固定为本人
type CourseListRequest struct {
	FacultyUserID string `form:"faculty_user_id" binding:"omitempty,uuid"`
	SemesterID    string `form:"semester_id"     binding:"omitempty,uuid"`
}

// CourseFiltersRequest 级联筛选查询参数
// faculty_user_id 管理员必填，教师固定为本人
type CourseFiltersRequest struct {
	FacultyUserID string `form:"faculty_user_id" binding:"omitempty,uuid"`
	course.Selection
}
