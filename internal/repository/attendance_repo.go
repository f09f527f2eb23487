package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trackademy/backend/internal/model"
)

// AttendanceRepository 考勤记录数据访问接口
type AttendanceRepository interface {
	ListByCourseAndDate(ctx context.Context, courseID string, date time.Time) ([]model.AttendanceRecord, error)
	BulkUpsert(ctx context.Context, records []model.AttendanceRecord) error
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) ListByCourseAndDate(ctx context.Context, courseID string, date time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND date = ?", courseID, date).
		Find(&records).Error
	return records, err
}

// BulkUpsert 按 (course_id, date, student_id) 插入或覆盖状态，记录从不删除
func (r *attendanceRepo) BulkUpsert(ctx context.Context, records []model.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "course_id"}, {Name: "date"}, {Name: "student_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":     gorm.Expr("EXCLUDED.status"),
				"updated_by": gorm.Expr("EXCLUDED.updated_by"),
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).
		CreateInBatches(records, 200).Error
}
