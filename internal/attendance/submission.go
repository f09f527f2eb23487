package attendance

import (
	"path/filepath"
	"strings"
	"time"
)

// DateLayout 对外统一的日期格式（ISO-8601 日历日期）
const DateLayout = "2006-01-02"

// RecordInput 批量提交中的单条记录
type RecordInput struct {
	StudentID string `json:"studentId" binding:"required"`
	Status    Status `json:"status"    binding:"required,oneof=PRESENT ABSENT MEDICAL_LEAVE"`
}

// BulkPayload 批量点名请求
type BulkPayload struct {
	CourseID string        `json:"courseId" binding:"required"`
	Date     string        `json:"date"     binding:"required"`
	Records  []RecordInput `json:"records"  binding:"required,min=1,dive"`
}

// ParseDate 解析日期；接受 2006-01-02 或 RFC 3339，返回当天零点（UTC）
func ParseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, ErrDateRequired
	}
	if d, err := time.Parse(DateLayout, text); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, text); err == nil {
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, ErrDateInvalid
}

// NormalizeDate 校验并格式化为 2006-01-02
func NormalizeDate(text string) (string, error) {
	d, err := ParseDate(text)
	if err != nil {
		return "", err
	}
	return d.Format(DateLayout), nil
}

// NewKey 校验课程与日期并构造 Key
func NewKey(courseID, date string) (Key, error) {
	if err := RequireCourse(courseID); err != nil {
		return Key{}, err
	}
	d, err := NormalizeDate(date)
	if err != nil {
		return Key{}, err
	}
	return Key{CourseID: strings.TrimSpace(courseID), Date: d}, nil
}

// BuildBulkPayload 校验并打包草稿，记录顺序与草稿一致
func BuildBulkPayload(courseID, date string, draft []Entry) (*BulkPayload, error) {
	key, err := NewKey(courseID, date)
	if err != nil {
		return nil, err
	}
	if len(draft) == 0 {
		return nil, ErrDraftEmpty
	}

	records := make([]RecordInput, 0, len(draft))
	for _, e := range draft {
		if !e.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		records = append(records, RecordInput{StudentID: e.StudentID, Status: e.Status})
	}

	return &BulkPayload{CourseID: key.CourseID, Date: key.Date, Records: records}, nil
}

// Validate 校验已解码的批量请求（服务端入口使用）
func (p *BulkPayload) Validate() error {
	key, err := NewKey(p.CourseID, p.Date)
	if err != nil {
		return err
	}
	if len(p.Records) == 0 {
		return ErrDraftEmpty
	}
	for _, r := range p.Records {
		if r.StudentID == "" || !r.Status.Valid() {
			return ErrInvalidStatus
		}
	}
	p.CourseID, p.Date = key.CourseID, key.Date
	return nil
}

// Entries 把请求还原为草稿条目（仅 ID 与状态）
func (p *BulkPayload) Entries() []Entry {
	out := make([]Entry, 0, len(p.Records))
	for _, r := range p.Records {
		out = append(out, Entry{StudentID: r.StudentID, Status: r.Status})
	}
	return out
}

// RequireCourse 课程未确定时快速失败，避免带着空课程发请求
func RequireCourse(courseID string) error {
	if strings.TrimSpace(courseID) == "" {
		return ErrCourseRequired
	}
	return nil
}

// ValidateUploadTarget 导入前的目标校验；只做守卫，不解析表格内容
func ValidateUploadTarget(filename, courseID, date string) error {
	if err := RequireCourse(courseID); err != nil {
		return err
	}
	if _, err := ParseDate(date); err != nil {
		return err
	}
	if strings.TrimSpace(filename) == "" {
		return ErrFileRequired
	}
	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ErrFileType
	}
	return nil
}
