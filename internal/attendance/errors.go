package attendance

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation 本地输入校验失败的统一类别，errors.Is 可识别所有 *ValidationError
	ErrValidation = errors.New("参数校验失败")
	// ErrSubmission 外部存储拒绝写入
	ErrSubmission = errors.New("考勤提交失败")
	// ErrStaleResponse 已放弃的 (课程, 日期) 选择的迟到响应，调用方应静默丢弃
	ErrStaleResponse = errors.New("响应已过期")
	// ErrSubmissionInFlight 同一 (课程, 日期) 的上一次提交尚未完成
	ErrSubmissionInFlight = errors.New("上一次提交尚未完成，请稍候")
	// ErrNoDraft 尚未选择课程与日期
	ErrNoDraft = errors.New("尚未加载点名草稿")
)

// ValidationError 本地输入校验错误，不会发往网络
// 字段只读，包级哨兵值不可被调用方改写
type ValidationError struct {
	field   string
	message string
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{field: field, message: message}
}

// Field 出错的字段名（与请求参数一致）
func (e *ValidationError) Field() string { return e.field }

// Message 面向用户的错误描述
func (e *ValidationError) Message() string { return e.message }

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.field, e.message)
}

// Is 使 errors.Is(err, ErrValidation) 成立
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var (
	ErrCourseRequired = newValidationError("course_id", "课程未选定")
	ErrDateRequired   = newValidationError("date", "日期不能为空")
	ErrDateInvalid    = newValidationError("date", "日期格式无效")
	ErrDraftEmpty     = newValidationError("records", "点名名单为空")
	ErrInvalidStatus  = newValidationError("status", "考勤状态无效")
	ErrFileRequired   = newValidationError("file", "请上传文件")
	ErrFileType       = newValidationError("file", "仅支持 .xlsx 文件")
)

// SubmissionError 外部存储返回的错误，保留服务端消息；草稿不受影响，可重试
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrSubmission.Error()
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrSubmission) 成立
func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmission
}
