package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"trackademy/backend/config"
	"trackademy/backend/internal/attendance"
	"trackademy/backend/internal/dto"
	"trackademy/backend/internal/model"
	"trackademy/backend/internal/repository"
	"trackademy/backend/pkg/redis"
)

// ── 考勤模块业务错误 ──

var (
	ErrStudentNotEnrolled   = errors.New("学生不在该课程名单中")
	ErrImportNoData         = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportBadHeader      = errors.New("Excel表头缺少必要列（学号/状态）")
	ErrImportTooManyRows    = errors.New("数据行数超过上限")
	ErrImportUnreadable     = errors.New("无法解析Excel文件")
	ErrTemplateGenerateFail = errors.New("生成 Excel 模板失败")
	ErrRosterEmpty          = errors.New("课程名单为空")
)

const templateSheet = "考勤"

// AttendanceService 考勤业务接口
//
// 设计说明：
//   - 写入只有批量 upsert 一种方式，(课程, 日期, 学生) 唯一，记录从不删除
//   - 同一 (课程, 日期) 的写入串行化：持锁期间的第二次提交直接返回 ErrSubmissionInFlight
//   - 列表读取走缓存，任何成功写入后按 (课程, 日期) 失效
type AttendanceService interface {
	// List 已存考勤记录（稀疏，只含已点过名的学生）
	List(ctx context.Context, caller Caller, courseID, date string) ([]attendance.Record, error)
	// Draft 服务端合并后的完整点名草稿
	Draft(ctx context.Context, caller Caller, courseID, date string) (*dto.DraftResponse, error)
	// Submit 批量保存
	Submit(ctx context.Context, caller Caller, payload *attendance.BulkPayload) (*attendance.Ack, error)
	// Import 从 xlsx 导入，逐行报告错误
	Import(ctx context.Context, caller Caller, courseID, date string, file attendance.Upload) (*dto.ImportAttendanceResponse, error)
	// ExportTemplate 生成带名单与状态下拉的 xlsx 模板
	ExportTemplate(ctx context.Context, caller Caller, courseID string) (*bytes.Buffer, string, error)
}

type attendanceService struct {
	cfg     *config.AttendanceConfig
	repo    *repository.Repository
	courses CourseService
	cache   AttendanceCache
	locker  Locker
	logger  *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例，cache 可为 nil
func NewAttendanceService(
	cfg *config.AttendanceConfig,
	repo *repository.Repository,
	courses CourseService,
	cache AttendanceCache,
	locker Locker,
	logger *zap.Logger,
) AttendanceService {
	return &attendanceService{
		cfg:     cfg,
		repo:    repo,
		courses: courses,
		cache:   cache,
		locker:  locker,
		logger:  logger,
	}
}

// ────────────────────── List ──────────────────────

func (s *attendanceService) List(ctx context.Context, caller Caller, courseID, date string) ([]attendance.Record, error) {
	key, err := attendance.NewKey(courseID, date)
	if err != nil {
		return nil, err
	}
	if _, err := s.courses.Authorize(ctx, caller, key.CourseID); err != nil {
		return nil, err
	}
	return s.loadRecords(ctx, key)
}

func (s *attendanceService) loadRecords(ctx context.Context, key attendance.Key) ([]attendance.Record, error) {
	if s.cache != nil {
		var cached []attendance.Record
		hit, err := s.cache.GetAttendance(ctx, key.CourseID, key.Date, &cached)
		if err != nil {
			s.logger.Warn("读取考勤缓存失败", zap.String("course_id", key.CourseID), zap.String("date", key.Date), zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	day, _ := attendance.ParseDate(key.Date)
	rows, err := s.repo.Attendance.ListByCourseAndDate(ctx, key.CourseID, day)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.String("course_id", key.CourseID), zap.String("date", key.Date), zap.Error(err))
		return nil, err
	}

	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, attendance.Record{
			CourseID:  r.CourseID,
			Date:      key.Date,
			StudentID: r.StudentID,
			Status:    attendance.Status(r.Status),
		})
	}

	if s.cache != nil {
		if err := s.cache.SetAttendance(ctx, key.CourseID, key.Date, records, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("写入考勤缓存失败", zap.String("course_id", key.CourseID), zap.Error(err))
		}
	}
	return records, nil
}

func (s *attendanceService) loadRoster(ctx context.Context, courseID string) ([]attendance.Student, error) {
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

// ────────────────────── Draft ──────────────────────

func (s *attendanceService) Draft(ctx context.Context, caller Caller, courseID, date string) (*dto.DraftResponse, error) {
	key, err := attendance.NewKey(courseID, date)
	if err != nil {
		return nil, err
	}
	if _, err := s.courses.Authorize(ctx, caller, key.CourseID); err != nil {
		return nil, err
	}

	var (
		roster   []attendance.Student
		existing []attendance.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, err = s.loadRoster(gctx, key.CourseID)
		return err
	})
	g.Go(func() error {
		var err error
		existing, err = s.loadRecords(gctx, key)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := attendance.NewDraft(key, roster, existing)
	return &dto.DraftResponse{
		CourseID: key.CourseID,
		Date:     key.Date,
		Entries:  d.Entries(),
		Counts:   d.Counts(),
	}, nil
}

// ────────────────────── Submit ──────────────────────

func (s *attendanceService) Submit(ctx context.Context, caller Caller, payload *attendance.BulkPayload) (*attendance.Ack, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.courses.Authorize(ctx, caller, payload.CourseID); err != nil {
		return nil, err
	}

	roster, err := s.loadRoster(ctx, payload.CourseID)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[string]bool, len(roster))
	for _, st := range roster {
		enrolled[st.ID] = true
	}

	// 同一学生出现多次时以最后一条为准
	latest := make(map[string]attendance.Status, len(payload.Records))
	order := make([]string, 0, len(payload.Records))
	for _, r := range payload.Records {
		if !enrolled[r.StudentID] {
			return nil, fmt.Errorf("%w: %s", ErrStudentNotEnrolled, r.StudentID)
		}
		if _, seen := latest[r.StudentID]; !seen {
			order = append(order, r.StudentID)
		}
		latest[r.StudentID] = r.Status
	}

	inputs := make([]attendance.RecordInput, 0, len(order))
	for _, id := range order {
		inputs = append(inputs, attendance.RecordInput{StudentID: id, Status: latest[id]})
	}

	key := attendance.Key{CourseID: payload.CourseID, Date: payload.Date}
	if err := s.write(ctx, caller, key, inputs); err != nil {
		return nil, err
	}

	return &attendance.Ack{
		CourseID: key.CourseID,
		Date:     key.Date,
		Saved:    len(inputs),
		Message:  fmt.Sprintf("已保存 %d 名学生的考勤", len(inputs)),
	}, nil
}

// write 持锁写入并失效缓存
func (s *attendanceService) write(ctx context.Context, caller Caller, key attendance.Key, inputs []attendance.RecordInput) error {
	release, err := s.locker.AcquireLock(ctx, key.CourseID+":"+key.Date, s.cfg.SubmitLockTTL)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			return attendance.ErrSubmissionInFlight
		}
		s.logger.Error("获取提交锁失败", zap.String("course_id", key.CourseID), zap.Error(err))
		return err
	}
	defer release()

	day, _ := attendance.ParseDate(key.Date)
	operator := caller.UserID
	records := make([]model.AttendanceRecord, 0, len(inputs))
	for _, in := range inputs {
		rec := model.AttendanceRecord{
			CourseID:  key.CourseID,
			Date:      day,
			StudentID: in.StudentID,
			Status:    string(in.Status),
		}
		if operator != "" {
			rec.CreatedBy = &operator
			rec.UpdatedBy = &operator
		}
		records = append(records, rec)
	}

	if err := s.repo.Attendance.BulkUpsert(ctx, records); err != nil {
		s.logger.Error("保存考勤失败",
			zap.String("course_id", key.CourseID), zap.String("date", key.Date), zap.Error(err))
		return err
	}

	s.logger.Info("考勤已保存",
		zap.String("course_id", key.CourseID),
		zap.String("date", key.Date),
		zap.Int("count", len(records)),
		zap.String("operator", operator),
	)

	if s.cache != nil {
		if err := s.cache.InvalidateAttendance(ctx, key.CourseID, key.Date); err != nil {
			s.logger.Warn("失效考勤缓存失败", zap.String("course_id", key.CourseID), zap.String("date", key.Date), zap.Error(err))
		}
	}
	return nil
}

// ────────────────────── Import ──────────────────────

// ImportAttendanceRow 解析后的导入行
type ImportAttendanceRow struct {
	Row              int
	EnrollmentNumber string
	Status           string
}

func (s *attendanceService) Import(ctx context.Context, caller Caller, courseID, date string, file attendance.Upload) (*dto.ImportAttendanceResponse, error) {
	if err := attendance.ValidateUploadTarget(file.Filename, courseID, date); err != nil {
		return nil, err
	}
	key, err := attendance.NewKey(courseID, date)
	if err != nil {
		return nil, err
	}
	if _, err := s.courses.Authorize(ctx, caller, key.CourseID); err != nil {
		return nil, err
	}

	rows, err := ParseAttendanceFile(file.Body, s.cfg.MaxImportRows)
	if err != nil {
		return nil, err
	}

	roster, err := s.loadRoster(ctx, key.CourseID)
	if err != nil {
		return nil, err
	}
	byEnrollment := make(map[string]string, len(roster))
	for _, st := range roster {
		byEnrollment[strings.ToUpper(st.EnrollmentNumber)] = st.ID
	}

	resp := &dto.ImportAttendanceResponse{CourseID: key.CourseID, Date: key.Date, Total: len(rows)}
	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportRowError{Row: row, Reason: reason})
	}

	// 第一阶段：逐行校验（不接触数据库写操作）
	seen := make(map[string]int, len(rows))
	var inputs []attendance.RecordInput
	for _, row := range rows {
		if row.EnrollmentNumber == "" || row.Status == "" {
			fail(row.Row, "必填字段为空")
			continue
		}
		studentID, ok := byEnrollment[strings.ToUpper(row.EnrollmentNumber)]
		if !ok {
			fail(row.Row, fmt.Sprintf("学号不在课程名单中: %s", row.EnrollmentNumber))
			continue
		}
		status, err := attendance.ParseStatus(row.Status)
		if err != nil {
			fail(row.Row, fmt.Sprintf("考勤状态无效: %s", row.Status))
			continue
		}
		if first, dup := seen[studentID]; dup {
			fail(row.Row, fmt.Sprintf("学号重复（首次出现在第 %d 行）: %s", first, row.EnrollmentNumber))
			continue
		}
		seen[studentID] = row.Row
		inputs = append(inputs, attendance.RecordInput{StudentID: studentID, Status: status})
	}

	// 第二阶段：有效行一次性写入
	if len(inputs) > 0 {
		if err := s.write(ctx, caller, key, inputs); err != nil {
			return nil, err
		}
		resp.Applied = len(inputs)
	}

	return resp, nil
}

// ParseAttendanceFile 解析导入的 xlsx，表头支持灵活列序
func ParseAttendanceFile(reader io.Reader, maxRows int) ([]ImportAttendanceRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["enrollment"] < 0 || colIndex["status"] < 0 {
		return nil, ErrImportBadHeader
	}

	var rows []ImportAttendanceRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportAttendanceRow{Row: i + 1}

		if idx := colIndex["enrollment"]; idx < len(row) {
			item.EnrollmentNumber = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["status"]; idx < len(row) {
			item.Status = strings.TrimSpace(row[idx])
		}

		// 跳过全空行
		if item.EnrollmentNumber == "" && item.Status == "" {
			continue
		}

		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if maxRows > 0 && len(rows) > maxRows {
		return nil, fmt.Errorf("%w: %d 行", ErrImportTooManyRows, maxRows)
	}

	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"enrollment": -1,
		"name":       -1,
		"status":     -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch lower {
		case "学号", "enrollment_number", "enrollment number", "enrollment no", "enrollment":
			idx["enrollment"] = i
		case "姓名", "name", "student name":
			idx["name"] = i
		case "状态", "status":
			idx["status"] = i
		}
	}
	return idx
}

// ────────────────────── ExportTemplate ──────────────────────

// ExportTemplate 输出格式：
//   - Sheet "考勤"：| 学号 | 姓名 | 状态 |，名单按学号升序，状态预填 PRESENT
//   - 状态列带下拉校验，取值 PRESENT / ABSENT / MEDICAL_LEAVE
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error
func (s *attendanceService) ExportTemplate(ctx context.Context, caller Caller, courseID string) (*bytes.Buffer, string, error) {
	if err := attendance.RequireCourse(courseID); err != nil {
		return nil, "", err
	}
	c, err := s.courses.Authorize(ctx, caller, strings.TrimSpace(courseID))
	if err != nil {
		return nil, "", err
	}

	roster, err := s.loadRoster(ctx, c.ID)
	if err != nil {
		return nil, "", err
	}
	if len(roster) == 0 {
		return nil, "", ErrRosterEmpty
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(templateSheet)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrTemplateGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(templateSheet, "A", "A", 18)
	f.SetColWidth(templateSheet, "B", "B", 28)
	f.SetColWidth(templateSheet, "C", "C", 18)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(templateSheet, "A1", "学号")
	f.SetCellValue(templateSheet, "B1", "姓名")
	f.SetCellValue(templateSheet, "C1", "状态")
	f.SetCellStyle(templateSheet, "A1", "C1", headerStyle)

	for i, st := range roster {
		row := i + 2
		f.SetCellValue(templateSheet, cell("A", row), st.EnrollmentNumber)
		f.SetCellValue(templateSheet, cell("B", row), st.FullName)
		f.SetCellValue(templateSheet, cell("C", row), string(attendance.DefaultStatus))
	}

	dv := excelize.NewDataValidation(true)
	dv.Sqref = fmt.Sprintf("C2:C%d", len(roster)+1)
	options := make([]string, 0, len(attendance.Statuses))
	for _, st := range attendance.Statuses {
		options = append(options, string(st))
	}
	if err := dv.SetDropList(options); err != nil {
		s.logger.Error("设置状态下拉失败", zap.Error(err))
		return nil, "", ErrTemplateGenerateFail
	}
	if err := f.AddDataValidation(templateSheet, dv); err != nil {
		s.logger.Error("添加数据校验失败", zap.Error(err))
		return nil, "", ErrTemplateGenerateFail
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrTemplateGenerateFail
	}

	return buf, templateFilename(c.Subject.Code, c.Division.Name, c.BatchName()), nil
}

// templateFilename 形如 attendance_CS301_A.xlsx / attendance_PH101L_A_B1.xlsx
func templateFilename(subjectCode, division, batch string) string {
	parts := []string{"attendance", subjectCode, division}
	if batch != "" {
		parts = append(parts, batch)
	}
	name := strings.Join(parts, "_")
	name = strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r == '\\' {
			return '-'
		}
		return r
	}, name)
	return name + ".xlsx"
}

// cell 拼接单元格坐标
func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
