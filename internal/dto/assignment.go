package dto

import "trackademy/backend/internal/course"

// ── 作业模块 DTO ──

// CreateAssignmentRequest 创建作业请求
// 课程不直接传 ID，而是传级联选择，由服务端解析为唯一课程
// facultyUserId 管理员必填，教师忽略
type CreateAssignmentRequest struct {
	FacultyUserID string `json:"facultyUserId" binding:"omitempty,uuid"`
	SemesterID  string `json:"semesterId"  binding:"required"`
	DivisionID  string `json:"divisionId"  binding:"required"`
	SubjectID   string `json:"subjectId"   binding:"required"`
	Batch       string `json:"batch"       binding:"omitempty,max=20"`
	Title       string `json:"title"       binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	DueDate     string `json:"dueDate"     binding:"omitempty"`
}

// Selection 转换为级联选择
func (r *CreateAssignmentRequest) Selection() course.Selection {
	return course.Selection{
		SemesterID: r.SemesterID,
		DivisionID: r.DivisionID,
		SubjectID:  r.SubjectID,
		Batch:      r.Batch,
	}.Normalize()
}

// AssignmentListRequest 作业列表查询参数
type AssignmentListRequest struct {
	CourseID string `form:"course_id" binding:"required"`
}

// AssignmentResponse 作业信息
type AssignmentResponse struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	CreatedAt   string `json:"createdAt"`
}
