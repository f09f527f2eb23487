package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"trackademy/backend/internal/attendance"
	"trackademy/backend/internal/course"
	"trackademy/backend/internal/dto"
	"trackademy/backend/internal/model"
	"trackademy/backend/internal/repository"
)

// ── 作业模块业务错误 ──

var (
	ErrAssignmentTitleEmpty     = errors.New("作业标题不能为空")
	ErrAssignmentDueDateInvalid = errors.New("截止日期格式无效")
)

// AssignmentService 作业业务接口
//
// 作业通过级联选择绑定课程，与点名共用同一套解析与歧义规则。
type AssignmentService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error)
	ListByCourse(ctx context.Context, caller Caller, courseID string) ([]dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo    *repository.Repository
	courses CourseService
	logger  *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, courses CourseService, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, courses: courses, logger: logger}
}

// pendingAssignment 待绑定课程的新作业
type pendingAssignment struct {
	model.Assignment
}

func (p *pendingAssignment) BindCourse(courseID string) {
	p.CourseID = courseID
}

func (s *assignmentService) Create(ctx context.Context, caller Caller, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrAssignmentTitleEmpty
	}

	pending := &pendingAssignment{Assignment: model.Assignment{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
	}}
	if req.DueDate != "" {
		due, err := attendance.ParseDate(req.DueDate)
		if err != nil {
			return nil, ErrAssignmentDueDateInvalid
		}
		pending.DueDate = &due
	}

	courses, err := s.courses.Scoped(ctx, caller, req.FacultyUserID)
	if err != nil {
		return nil, err
	}
	if _, err := course.Bind(course.NewIndex(courses), req.Selection(), pending); err != nil {
		return nil, err
	}

	if caller.UserID != "" {
		creator := caller.UserID
		pending.CreatedBy = &creator
	}

	if err := s.repo.Assignment.Create(ctx, &pending.Assignment); err != nil {
		s.logger.Error("创建作业失败", zap.String("course_id", pending.CourseID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("作业已创建",
		zap.String("assignment_id", pending.AssignmentID),
		zap.String("course_id", pending.CourseID),
	)

	resp := toAssignmentResponse(&pending.Assignment)
	return &resp, nil
}

func (s *assignmentService) ListByCourse(ctx context.Context, caller Caller, courseID string) ([]dto.AssignmentResponse, error) {
	if _, err := s.courses.Authorize(ctx, caller, courseID); err != nil {
		return nil, err
	}

	rows, err := s.repo.Assignment.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询作业列表失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AssignmentResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toAssignmentResponse(&rows[i]))
	}
	return result, nil
}

// toAssignmentResponse 将 model.Assignment 转换为 dto.AssignmentResponse
func toAssignmentResponse(a *model.Assignment) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:          a.AssignmentID,
		CourseID:    a.CourseID,
		Title:       a.Title,
		Description: a.Description,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
	if a.DueDate != nil {
		resp.DueDate = a.DueDate.Format(attendance.DateLayout)
	}
	return resp
}
