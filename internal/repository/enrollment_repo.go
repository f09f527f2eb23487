package repository

import (
	"context"

	"gorm.io/gorm"

	"trackademy/backend/internal/model"
)

// EnrollmentRepository 选课名单数据访问接口
type EnrollmentRepository interface {
	ListStudents(ctx context.Context, courseID string) ([]model.Student, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

// ListStudents 按学号升序返回课程名单，名单顺序即点名表顺序
func (r *enrollmentRepo) ListStudents(ctx context.Context, courseID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Joins("JOIN course_students cs ON cs.student_id = students.student_id").
		Where("cs.course_id = ?", courseID).
		Order("students.enrollment_number ASC").
		Find(&students).Error
	return students, err
}
