package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"trackademy/backend/config"
	"trackademy/backend/internal/repository"
	"trackademy/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Course     CourseService
	Attendance AttendanceService
	Assignment AssignmentService
}

// Caller 当前请求的身份（来自 JWT）
type Caller struct {
	UserID string
	Role   string
}

// IsAdmin 是否管理员
func (c Caller) IsAdmin() bool { return c.Role == "admin" }

// AttendanceCache 考勤列表缓存
type AttendanceCache interface {
	GetAttendance(ctx context.Context, courseID, date string, dst interface{}) (bool, error)
	SetAttendance(ctx context.Context, courseID, date string, v interface{}, ttl time.Duration) error
	InvalidateAttendance(ctx context.Context, courseID, date string) error
}

// Locker 按名称加锁，已被占用时返回 redis.ErrLockHeld
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (func(), error)
}

// NewService 创建 Service 聚合
// rdb 为 nil 时不使用缓存，提交锁退化为进程内锁
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	var cache AttendanceCache
	var locker Locker = NewLocalLocker()
	if rdb != nil {
		cache = rdb
		locker = rdb
	}

	courseSvc := NewCourseService(repo, logger)
	return &Service{
		Course:     courseSvc,
		Attendance: NewAttendanceService(&cfg.Attendance, repo, courseSvc, cache, locker, logger),
		Assignment: NewAssignmentService(repo, courseSvc, logger),
	}
}
