package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"trackademy/backend/config"
	"trackademy/backend/internal/attendance"
	"trackademy/backend/internal/course"
	"trackademy/backend/pkg/jwt"
)

// ── 课程定位 ──

// target 课程可直接给 ID，也可给级联选择由本地 Resolver 解析
type target struct {
	courseID      string
	facultyUserID string
	sel           course.Selection
	date          string
}

func (t *target) bind(cmd *cobra.Command, withDate bool) {
	f := cmd.Flags()
	f.StringVar(&t.courseID, "course", "", "课程 ID（给出时忽略级联选择）")
	f.StringVar(&t.sel.SemesterID, "semester", "", "学期 ID")
	f.StringVar(&t.sel.DivisionID, "division", "", "班级 ID")
	f.StringVar(&t.sel.SubjectID, "subject", "", "科目 ID")
	f.StringVar(&t.sel.Batch, "batch", "", "批次（实验课）；理论课与实验批次同科目时填 THEORY")
	f.StringVar(&t.facultyUserID, "faculty-user", "", "教师用户 ID（管理员令牌必填）")
	if withDate {
		f.StringVar(&t.date, "date", "", "日期 2006-01-02（必填）")
		_ = cmd.MarkFlagRequired("date")
	}
}

// resolve 返回课程 ID；歧义时列出可选批次
func (a *app) resolve(ctx context.Context, t *target) (string, error) {
	if id := strings.TrimSpace(t.courseID); id != "" {
		return id, nil
	}
	r, err := a.resolver(ctx, t)
	if err != nil {
		return "", err
	}
	res := r.Resolution()
	switch res.State {
	case course.ResolutionResolved:
		return res.Course.ID, nil
	case course.ResolutionAmbiguous:
		if len(res.Batches) == 0 {
			return "", fmt.Errorf("%w（多位教师开设同一课程，请用 --faculty-user 指定教师）", course.ErrAmbiguous)
		}
		return "", fmt.Errorf("%w（可选批次: %s）", course.ErrAmbiguous, strings.Join(res.Batches, ", "))
	default:
		return "", fmt.Errorf("%w（当前状态: %s）", course.ErrUnresolved, res.State)
	}
}

// resolver 在单个教师的课程内解析；教师令牌下服务端忽略 faculty-user
func (a *app) resolver(ctx context.Context, t *target) (*course.Resolver, error) {
	courses, err := a.api.ListCourses(ctx, course.ListFilter{FacultyUserID: t.facultyUserID})
	if err != nil {
		return nil, fmt.Errorf("获取课程列表失败: %w", err)
	}
	r := course.NewResolver(course.NewIndex(courses))
	if err := r.Apply(t.sel); err != nil {
		return nil, err
	}
	return r, nil
}

func (a *app) session(ctx context.Context, t *target) (*attendance.Session, *attendance.Draft, error) {
	courseID, err := a.resolve(ctx, t)
	if err != nil {
		return nil, nil, err
	}
	s := attendance.NewSession(a.api, a.api, a.api, a.logger)
	draft, err := s.Select(ctx, courseID, t.date)
	if err != nil {
		return nil, nil, err
	}
	return s, draft, nil
}

// ── token ──

func newTokenCmd(a *app) *cobra.Command {
	var cfgPath, userID, role, facultyID string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "用服务端密钥签发访问令牌（仅限开发与运维）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if role != jwt.RoleFaculty && role != jwt.RoleAdmin {
				return fmt.Errorf("角色无效: %s", role)
			}
			tok, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(userID, role, facultyID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "服务端配置文件")
	cmd.Flags().StringVar(&userID, "user", "", "用户 ID（必填）")
	cmd.Flags().StringVar(&role, "role", jwt.RoleFaculty, "角色 faculty/admin")
	cmd.Flags().StringVar(&facultyID, "faculty", "", "教师 ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// ── filters ──

func newFiltersCmd(a *app) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "显示级联筛选的可选项与解析结果",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.resolver(cmd.Context(), &t)
			if err != nil {
				return err
			}
			printOptions(cmd.OutOrStdout(), r.Options())
			return nil
		},
	}
	t.bind(cmd, false)
	return cmd
}

func printOptions(out io.Writer, opts course.Options) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, s := range opts.Semesters {
		fmt.Fprintf(w, "学期\t%s\t第 %d 学期 (%s)\n", s.ID, s.SemesterNumber, s.SemesterType)
	}
	for _, d := range opts.Divisions {
		fmt.Fprintf(w, "班级\t%s\t%s\n", d.ID, d.Name)
	}
	for _, s := range opts.Subjects {
		fmt.Fprintf(w, "科目\t%s\t%s %s\n", s.ID, s.Code, s.Name)
	}
	for _, b := range opts.Batches {
		fmt.Fprintf(w, "批次\t%s\t\n", b)
	}
	w.Flush()

	res := opts.Resolution
	fmt.Fprintf(out, "解析结果: %s", res.State)
	if res.Course != nil {
		fmt.Fprintf(out, " → %s (%s %s %s)", res.Course.ID, res.Course.Subject.Code, res.Course.Division.Name, res.Course.BatchName())
	}
	fmt.Fprintln(out)
}

// ── draft ──

func newDraftCmd(a *app) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "显示 (课程, 日期) 的点名草稿",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, draft, err := a.session(cmd.Context(), &t)
			if err != nil {
				return err
			}
			printDraft(cmd.OutOrStdout(), draft)
			return nil
		},
	}
	t.bind(cmd, true)
	return cmd
}

func printDraft(out io.Writer, d *attendance.Draft) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "学号\t姓名\t状态")
	for _, e := range d.Entries() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.EnrollmentNumber, e.StudentName, e.Status)
	}
	w.Flush()

	counts := d.Counts()
	parts := make([]string, 0, len(attendance.Statuses))
	for _, s := range attendance.Statuses {
		parts = append(parts, fmt.Sprintf("%s=%d", s, counts[s]))
	}
	fmt.Fprintf(out, "共 %d 人：%s\n", d.Len(), strings.Join(parts, " "))
}

// ── mark ──

func newMarkCmd(a *app) *cobra.Command {
	var (
		t    target
		all  string
		sets []string
	)
	cmd := &cobra.Command{
		Use:   "mark",
		Short: "修改点名并提交",
		Example: "  trackademy mark --course <id> --date 2024-01-15 --all PRESENT --set 22CE002=ABSENT\n" +
			"  trackademy mark --semester <id> --division <id> --subject <id> --batch B1 --date 2024-01-15 --set 22CE007=M",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, draft, err := a.session(ctx, &t)
			if err != nil {
				return err
			}

			if all != "" {
				st, err := attendance.ParseStatus(all)
				if err != nil {
					return err
				}
				if err := s.MarkAll(st); err != nil {
					return err
				}
			}

			ids := studentIndex(draft)
			for _, kv := range sets {
				who, status, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("--set 格式应为 学号=状态: %s", kv)
				}
				st, err := attendance.ParseStatus(status)
				if err != nil {
					return fmt.Errorf("%s: %w", kv, err)
				}
				id, ok := ids[strings.ToUpper(strings.TrimSpace(who))]
				if !ok {
					return fmt.Errorf("学生不在名单中: %s", who)
				}
				if err := s.SetStatus(id, st); err != nil {
					return err
				}
			}

			ack, err := s.Submit(ctx)
			if err != nil {
				return err
			}
			if d, ok := s.Draft(); ok {
				printDraft(cmd.OutOrStdout(), d)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已保存 %d 条（%s %s）\n", ack.Saved, ack.CourseID, ack.Date)
			return nil
		},
	}
	t.bind(cmd, true)
	cmd.Flags().StringVar(&all, "all", "", "先将全部学生标记为该状态")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "学号或学生 ID=状态，可重复")
	return cmd
}

// studentIndex 学号（大写）与学生 ID 都可定位学生
func studentIndex(d *attendance.Draft) map[string]string {
	out := make(map[string]string, d.Len()*2)
	for _, e := range d.Entries() {
		out[strings.ToUpper(e.EnrollmentNumber)] = e.StudentID
		out[strings.ToUpper(e.StudentID)] = e.StudentID
	}
	return out
}

// ── template ──

func newTemplateCmd(a *app) *cobra.Command {
	var (
		t   target
		out string
	)
	cmd := &cobra.Command{
		Use:   "template",
		Short: "下载考勤导入模板",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			courseID, err := a.resolve(ctx, &t)
			if err != nil {
				return err
			}
			if err := attendance.RequireCourse(courseID); err != nil {
				return err
			}
			data, name, err := a.api.ExportTemplate(ctx, courseID)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = filepath.Base(name)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("写入模板失败: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "模板已保存到 %s\n", path)
			return nil
		},
	}
	t.bind(cmd, false)
	cmd.Flags().StringVarP(&out, "out", "o", "", "输出文件（默认使用服务端文件名）")
	return cmd
}

// ── import ──

func newImportCmd(a *app) *cobra.Command {
	var (
		t    target
		file string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "从 xlsx 导入考勤",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, _, err := a.session(ctx, &t)
			if err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("打开文件失败: %w", err)
			}
			defer f.Close()

			ack, err := s.Import(ctx, attendance.Upload{Filename: filepath.Base(file), Body: f})
			if err != nil {
				var se *attendance.SubmissionError
				if errors.As(err, &se) {
					return fmt.Errorf("导入被拒绝: %s", se.Error())
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ack.Message)
			return nil
		},
	}
	t.bind(cmd, true)
	cmd.Flags().StringVarP(&file, "file", "f", "", "xlsx 文件（必填）")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

