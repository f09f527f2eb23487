package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"trackademy/backend/internal/attendance"
	"trackademy/backend/internal/course"
	"trackademy/backend/internal/dto"
	"trackademy/backend/internal/model"
	"trackademy/backend/internal/repository"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound  = errors.New("课程不存在")
	ErrCourseForbidden = errors.New("无权访问该课程")
	ErrCourseCorrupt   = errors.New("课程数据不完整")
	ErrFacultyRequired = errors.New("管理员须指定教师（faculty_user_id）")
)

// CourseService 课程业务接口
//
// 课程列表是级联筛选的数据源：教师只看到自己讲授的课程，管理员可看全部或按教师过滤。
type CourseService interface {
	// ListCourses 课程目录查询（不做身份校验）
	ListCourses(ctx context.Context, filter course.ListFilter) ([]course.Course, error)
	// List 当前身份可见的课程
	List(ctx context.Context, caller Caller, req *dto.CourseListRequest) ([]course.Course, error)
	// Scoped 单个教师的课程集合，级联解析只在该集合内唯一
	Scoped(ctx context.Context, caller Caller, facultyUserID string) ([]course.Course, error)
	// Filters 级联筛选的可选项与解析结果
	Filters(ctx context.Context, caller Caller, facultyUserID string, sel course.Selection) (*course.Options, error)
	// Authorize 校验课程存在且当前身份可访问
	Authorize(ctx context.Context, caller Caller, courseID string) (*course.Course, error)
	// Roster 课程花名册（按学号升序）
	Roster(ctx context.Context, caller Caller, courseID string) ([]attendance.Student, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

func (s *courseService) ListCourses(ctx context.Context, filter course.ListFilter) ([]course.Course, error) {
	rows, err := s.repo.Course.List(ctx, repository.CourseFilter{
		FacultyUserID: filter.FacultyUserID,
		SemesterID:    filter.SemesterID,
	})
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}

	courses := make([]course.Course, 0, len(rows))
	for i := range rows {
		c, err := toCourse(&rows[i])
		if err != nil {
			// 单条脏数据不影响整体列表
			s.logger.Warn("跳过不完整的课程", zap.String("course_id", rows[i].CourseID), zap.Error(err))
			continue
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (s *courseService) List(ctx context.Context, caller Caller, req *dto.CourseListRequest) ([]course.Course, error) {
	filter := course.ListFilter{SemesterID: req.SemesterID}
	if caller.IsAdmin() {
		filter.FacultyUserID = req.FacultyUserID
	} else {
		filter.FacultyUserID = caller.UserID
	}
	return s.ListCourses(ctx, filter)
}

// Scoped 教师固定为本人；管理员必须指定教师，否则不同教师的同名课程无法区分
func (s *courseService) Scoped(ctx context.Context, caller Caller, facultyUserID string) ([]course.Course, error) {
	if caller.IsAdmin() && facultyUserID == "" {
		return nil, ErrFacultyRequired
	}
	return s.List(ctx, caller, &dto.CourseListRequest{FacultyUserID: facultyUserID})
}

func (s *courseService) Filters(ctx context.Context, caller Caller, facultyUserID string, sel course.Selection) (*course.Options, error) {
	courses, err := s.Scoped(ctx, caller, facultyUserID)
	if err != nil {
		return nil, err
	}
	opts := course.NewIndex(courses).OptionsFor(sel)
	return &opts, nil
}

func (s *courseService) Authorize(ctx context.Context, caller Caller, courseID string) (*course.Course, error) {
	row, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	if !caller.IsAdmin() && (row.Faculty == nil || row.Faculty.UserID != caller.UserID) {
		return nil, ErrCourseForbidden
	}

	c, err := toCourse(row)
	if err != nil {
		s.logger.Error("课程数据不完整", zap.String("course_id", courseID), zap.Error(err))
		return nil, ErrCourseCorrupt
	}
	return &c, nil
}

func (s *courseService) Roster(ctx context.Context, caller Caller, courseID string) ([]attendance.Student, error) {
	if _, err := s.Authorize(ctx, caller, courseID); err != nil {
		return nil, err
	}
	return s.listStudents(ctx, courseID)
}

func (s *courseService) listStudents(ctx context.Context, courseID string) ([]attendance.Student, error) {
	rows, err := s.repo.Enrollment.ListStudents(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程名单失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	students := make([]attendance.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, attendance.Student{
			ID:               r.StudentID,
			FullName:         r.FullName,
			EnrollmentNumber: r.EnrollmentNumber,
		})
	}
	return students, nil
}

// ── 内部辅助方法 ──

// toCourse 将预加载了关联的 model.Course 转换为 course.Course
func toCourse(m *model.Course) (course.Course, error) {
	if m.Subject == nil || m.Faculty == nil || m.Semester == nil || m.Division == nil {
		return course.Course{}, ErrCourseCorrupt
	}
	c := course.Course{
		ID:          m.CourseID,
		Subject:     course.Subject{ID: m.Subject.SubjectID, Name: m.Subject.Name, Code: m.Subject.Code},
		Faculty:     course.Faculty{ID: m.Faculty.FacultyID, FullName: m.Faculty.FullName},
		Semester:    course.Semester{ID: m.Semester.SemesterID, SemesterNumber: m.Semester.SemesterNumber, SemesterType: m.Semester.SemesterType},
		Division:    course.Division{ID: m.Division.DivisionID, Name: m.Division.Name},
		LectureType: course.LectureType(m.LectureType),
	}
	if m.Batch != nil {
		b := *m.Batch
		c.Batch = &b
	}
	if err := c.Validate(); err != nil {
		return course.Course{}, err
	}
	return c, nil
}
