package attendance

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Session 一个交互会话独占的点名草稿
//
// 每次 Select 递增代号；读请求返回时若代号已变化则整体丢弃，
// 旧 (课程, 日期) 的编辑或迟到数据都不会混入新草稿。
// 同一时刻最多一个提交在途。
type Session struct {
	roster Roster
	store  Store
	cache  Invalidator
	logger *zap.Logger

	mu         sync.Mutex
	gen        uint64
	key        Key
	draft      *Draft
	submitting bool
}

// NewSession 创建会话；cache 可为 nil
func NewSession(roster Roster, store Store, cache Invalidator, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{roster: roster, store: store, cache: cache, logger: logger}
}

// Select 切换到 (课程, 日期) 并重建草稿
//
// 花名册与已存记录并发拉取。若期间又发生了新的 Select，
// 本次结果被丢弃并返回 ErrStaleResponse；拉取失败时会话回到未选择状态。
func (s *Session) Select(ctx context.Context, courseID, date string) (*Draft, error) {
	key, err := NewKey(courseID, date)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.key = key
	s.draft = nil
	s.mu.Unlock()

	var (
		roster   []Student
		existing []Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, err = s.roster.ListEnrolledStudents(gctx, key.CourseID)
		return err
	})
	g.Go(func() error {
		var err error
		existing, err = s.store.ListAttendance(gctx, key.CourseID, key.Date)
		return err
	})
	if err := g.Wait(); err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			return nil, ErrStaleResponse
		}
		// 加载失败的选择不保留，Import / Template 不会落到未加载的课程上
		s.key = Key{}
		return nil, err
	}

	draft := NewDraft(key, roster, existing)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.logger.Debug("丢弃过期的点名数据",
			zap.String("course_id", key.CourseID),
			zap.String("date", key.Date),
		)
		return nil, ErrStaleResponse
	}
	s.draft = draft
	return draft.clone(), nil
}

// Clear 放弃当前草稿；在途的读请求返回后会被丢弃
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.key = Key{}
	s.draft = nil
}

// Key 当前选择
func (s *Session) Key() Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Draft 当前草稿副本
func (s *Session) Draft() (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil, false
	}
	return s.draft.clone(), true
}

// SetStatus 修改单个学生状态
func (s *Session) SetStatus(studentID string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNoDraft
	}
	return s.draft.SetStatus(studentID, status)
}

// MarkAll 全部标记
func (s *Session) MarkAll(status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNoDraft
	}
	return s.draft.MarkAll(status)
}

// Submitting 是否有提交在途（界面据此禁用重复提交）
func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Submit 提交当前草稿
//
// 失败时草稿保持原样，可直接重试；成功后通知缓存失效。
func (s *Session) Submit(ctx context.Context) (*Ack, error) {
	s.mu.Lock()
	if s.draft == nil {
		s.mu.Unlock()
		return nil, ErrNoDraft
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	payload, err := s.draft.Payload()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.submitting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	ack, err := s.store.SubmitAttendance(ctx, payload)
	if err != nil {
		return nil, asSubmissionError(err)
	}

	s.invalidate(ctx, payload.CourseID, payload.Date)
	return ack, nil
}

// Import 以文件方式提交当前 (课程, 日期)
func (s *Session) Import(ctx context.Context, file Upload) (*Ack, error) {
	s.mu.Lock()
	key := s.key
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if err := ValidateUploadTarget(file.Filename, key.CourseID, key.Date); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if file.Body == nil {
		s.mu.Unlock()
		return nil, ErrFileRequired
	}
	s.submitting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	ack, err := s.store.ImportAttendanceFile(ctx, key.CourseID, key.Date, file)
	if err != nil {
		return nil, asSubmissionError(err)
	}

	s.invalidate(ctx, key.CourseID, key.Date)
	return ack, nil
}

// Template 下载当前课程的导入模板
func (s *Session) Template(ctx context.Context) ([]byte, string, error) {
	key := s.Key()
	if err := RequireCourse(key.CourseID); err != nil {
		return nil, "", err
	}
	return s.store.ExportTemplate(ctx, key.CourseID)
}

func (s *Session) invalidate(ctx context.Context, courseID, date string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAttendance(ctx, courseID, date); err != nil {
		// 写入已成功，失效失败只记录
		s.logger.Warn("考勤缓存失效失败",
			zap.String("course_id", courseID),
			zap.String("date", date),
			zap.Error(err),
		)
	}
}

func asSubmissionError(err error) error {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se
	}
	return &SubmissionError{Message: err.Error(), Err: err}
}
