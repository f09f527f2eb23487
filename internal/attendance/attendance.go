// Package attendance 点名草稿：花名册与已存考勤记录的合并、编辑与提交
package attendance

import (
	"context"
	"io"
	"strings"
)

// Status 考勤状态
type Status string

const (
	StatusPresent      Status = "PRESENT"
	StatusAbsent       Status = "ABSENT"
	StatusMedicalLeave Status = "MEDICAL_LEAVE"
)

// DefaultStatus 未记录学生的默认状态
const DefaultStatus = StatusPresent

// Statuses 全部合法状态（展示顺序）
var Statuses = []Status{StatusPresent, StatusAbsent, StatusMedicalLeave}

// Valid 是否为合法状态
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusMedicalLeave:
		return true
	}
	return false
}

// ParseStatus 宽松解析状态文本（大小写、空格、连字符不敏感），用于文件导入
func ParseStatus(text string) (Status, error) {
	norm := strings.ToUpper(strings.TrimSpace(text))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch norm {
	case "P", "PRESENT":
		return StatusPresent, nil
	case "A", "ABSENT":
		return StatusAbsent, nil
	case "M", "ML", "MEDICAL", "MEDICAL_LEAVE":
		return StatusMedicalLeave, nil
	}
	return "", ErrInvalidStatus
}

// Student 花名册条目
type Student struct {
	ID               string `json:"id"`
	FullName         string `json:"fullName"`
	EnrollmentNumber string `json:"enrollmentNumber"`
}

// Record 已持久化的考勤记录，身份为 (CourseID, Date, StudentID)
type Record struct {
	CourseID  string `json:"courseId"`
	Date      string `json:"date"`
	StudentID string `json:"studentId"`
	Status    Status `json:"status"`
}

// Key 草稿归属的 (课程, 日期)
type Key struct {
	CourseID string `json:"courseId"`
	Date     string `json:"date"`
}

// Ack 提交/导入成功回执
type Ack struct {
	CourseID string `json:"courseId"`
	Date     string `json:"date"`
	Saved    int    `json:"saved"`
	Message  string `json:"message,omitempty"`
}

// ── 外部协作方 ──

// Roster 花名册
type Roster interface {
	ListEnrolledStudents(ctx context.Context, courseID string) ([]Student, error)
}

// Upload 待导入的文件
type Upload struct {
	Filename string
	Body     io.Reader
}

// Store 考勤存储
type Store interface {
	ListAttendance(ctx context.Context, courseID, date string) ([]Record, error)
	SubmitAttendance(ctx context.Context, payload *BulkPayload) (*Ack, error)
	ImportAttendanceFile(ctx context.Context, courseID, date string, file Upload) (*Ack, error)
	ExportTemplate(ctx context.Context, courseID string) ([]byte, string, error)
}

// Invalidator 缓存失效通知；成功写入后按 (课程, 日期) 失效
type Invalidator interface {
	InvalidateAttendance(ctx context.Context, courseID, date string) error
}
