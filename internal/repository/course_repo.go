package repository

import (
	"context"

	"gorm.io/gorm"

	"trackademy/backend/internal/model"
)

// CourseFilter 课程列表过滤条件，空字段表示不限制
type CourseFilter struct {
	FacultyUserID string
	SemesterID    string
}

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	List(ctx context.Context, filter CourseFilter) ([]model.Course, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) withRelations() *gorm.DB {
	return r.db.
		Preload("Subject").
		Preload("Faculty").
		Preload("Semester").
		Preload("Division")
}

// List 返回课程列表，顺序不做保证，由调用方建立索引后排序
func (r *courseRepo) List(ctx context.Context, filter CourseFilter) ([]model.Course, error) {
	var courses []model.Course
	db := r.withRelations().WithContext(ctx).Model(&model.Course{})

	if filter.FacultyUserID != "" {
		db = db.Joins("JOIN faculty f ON f.faculty_id = courses.faculty_id").
			Where("f.user_id = ?", filter.FacultyUserID)
	}
	if filter.SemesterID != "" {
		db = db.Where("courses.semester_id = ?", filter.SemesterID)
	}

	err := db.Find(&courses).Error
	return courses, err
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.withRelations().WithContext(ctx).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}
