package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"trackademy/backend/internal/course"
	"trackademy/backend/internal/dto"
	"trackademy/backend/internal/model"
)

var (
	callerA     = Caller{UserID: facultyUserA, Role: "faculty"}
	callerB     = Caller{UserID: facultyUserB, Role: "faculty"}
	callerAdmin = Caller{UserID: "user-admin", Role: "admin"}
)

func setupTestCourseService() (CourseService, *mockCourseRepo) {
	repo, courses, _, _, _ := newTestRepo()
	return NewCourseService(repo, zap.NewNop()), courses
}

// ── List 测试 ──

func TestCourseService_List_FacultySeesOwnCourses(t *testing.T) {
	svc, _ := setupTestCourseService()

	// 教师传入他人的 faculty_user_id 也只会看到自己的课程
	list, err := svc.List(context.Background(), callerA, &dto.CourseListRequest{FacultyUserID: facultyUserB})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("期望 3 门课程，实际 %d", len(list))
	}
	for _, c := range list {
		if c.Faculty.ID != "fac-a" {
			t.Errorf("不应看到其他教师的课程: %s", c.ID)
		}
	}
}

func TestCourseService_List_AdminFilter(t *testing.T) {
	svc, _ := setupTestCourseService()

	all, err := svc.List(context.Background(), callerAdmin, &dto.CourseListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("管理员期望看到 4 门课程，实际 %d", len(all))
	}

	onlyB, _ := svc.List(context.Background(), callerAdmin, &dto.CourseListRequest{FacultyUserID: facultyUserB})
	if len(onlyB) != 1 || onlyB[0].ID != "c-os-b" {
		t.Errorf("按教师过滤结果不符: %+v", onlyB)
	}
}

func TestCourseService_ListCourses_SkipsCorruptRows(t *testing.T) {
	svc, courses := setupTestCourseService()
	courses.add(&model.Course{CourseID: "c-broken", LectureType: "PRACTICAL", Faculty: &model.Faculty{UserID: facultyUserA}})

	list, err := svc.ListCourses(context.Background(), course.ListFilter{FacultyUserID: facultyUserA})
	if err != nil {
		t.Fatalf("ListCourses 应成功: %v", err)
	}
	for _, c := range list {
		if c.ID == "c-broken" {
			t.Error("不完整的课程应被跳过")
		}
	}
}

func TestCourseService_ListCourses_RepoError(t *testing.T) {
	svc, courses := setupTestCourseService()
	courses.listErr = errors.New("db down")

	if _, err := svc.ListCourses(context.Background(), course.ListFilter{}); err == nil {
		t.Error("仓库错误应向上返回")
	}
}

// ── Filters 测试 ──

func TestCourseService_Filters_Cascade(t *testing.T) {
	svc, _ := setupTestCourseService()
	ctx := context.Background()

	opts, err := svc.Filters(ctx, callerA, "", course.Selection{})
	if err != nil {
		t.Fatalf("Filters 应成功: %v", err)
	}
	if len(opts.Semesters) != 1 || opts.Semesters[0].ID != "sem-3" {
		t.Errorf("教师 A 只应看到 SEM3: %+v", opts.Semesters)
	}
	if opts.Enablement.Division {
		t.Error("未选学期时班级不可选")
	}
	if opts.Resolution.State != course.ResolutionIncomplete {
		t.Errorf("期望 INCOMPLETE，实际 %s", opts.Resolution.State)
	}

	// 实验课两组同科目：未选批次时为歧义
	opts, _ = svc.Filters(ctx, callerA, "", course.Selection{SemesterID: "sem-3", DivisionID: "div-a", SubjectID: "sub-lab"})
	if opts.Resolution.State != course.ResolutionAmbiguous {
		t.Fatalf("期望 AMBIGUOUS，实际 %s", opts.Resolution.State)
	}
	if len(opts.Batches) != 2 || opts.Batches[0] != "B1" || opts.Batches[1] != "B2" {
		t.Errorf("批次选项不符: %v", opts.Batches)
	}

	opts, _ = svc.Filters(ctx, callerA, "", course.Selection{SemesterID: "sem-3", DivisionID: "div-a", SubjectID: "sub-lab", Batch: "B2"})
	if !opts.Resolution.Resolved() || opts.Resolution.Course.ID != "c-lab-b2" {
		t.Errorf("指定批次后应解析到 c-lab-b2: %+v", opts.Resolution)
	}
}

// addSharedTheory 教师 B 也在 sem-3/div-a 讲授 Data Structures
func addSharedTheory(courses *mockCourseRepo) {
	a, b := courses.courses["c-ds-a"], courses.courses["c-os-b"]
	courses.add(&model.Course{
		CourseID: "c-ds-b", FacultyID: b.FacultyID, SemesterID: a.SemesterID, DivisionID: a.DivisionID, SubjectID: a.SubjectID,
		LectureType: "THEORY",
		Faculty:     b.Faculty, Semester: a.Semester, Division: a.Division, Subject: a.Subject,
	})
}

func TestCourseService_Filters_AdminScopedToFaculty(t *testing.T) {
	svc, courses := setupTestCourseService()
	addSharedTheory(courses)
	ctx := context.Background()
	sel := course.Selection{SemesterID: "sem-3", DivisionID: "div-a", SubjectID: "sub-ds"}

	if _, err := svc.Filters(ctx, callerAdmin, "", sel); err != ErrFacultyRequired {
		t.Fatalf("期望 ErrFacultyRequired，实际: %v", err)
	}

	opts, err := svc.Filters(ctx, callerAdmin, facultyUserB, sel)
	if err != nil {
		t.Fatalf("Filters 应成功: %v", err)
	}
	if !opts.Resolution.Resolved() || opts.Resolution.Course.ID != "c-ds-b" {
		t.Errorf("指定教师 B 后应解析到 c-ds-b: %+v", opts.Resolution)
	}

	// 教师本人无需指定，传入他人 ID 也只在本人课程内解析
	opts, err = svc.Filters(ctx, callerA, facultyUserB, sel)
	if err != nil {
		t.Fatalf("Filters 应成功: %v", err)
	}
	if !opts.Resolution.Resolved() || opts.Resolution.Course.ID != "c-ds-a" {
		t.Errorf("教师 A 应解析到 c-ds-a: %+v", opts.Resolution)
	}
}

// ── Authorize / Roster 测试 ──

func TestCourseService_Authorize(t *testing.T) {
	svc, _ := setupTestCourseService()
	ctx := context.Background()

	if _, err := svc.Authorize(ctx, callerA, "c-ds-a"); err != nil {
		t.Errorf("本人课程应可访问: %v", err)
	}
	if _, err := svc.Authorize(ctx, callerB, "c-ds-a"); err != ErrCourseForbidden {
		t.Errorf("期望 ErrCourseForbidden，实际: %v", err)
	}
	if _, err := svc.Authorize(ctx, callerAdmin, "c-ds-a"); err != nil {
		t.Errorf("管理员应可访问任意课程: %v", err)
	}
	if _, err := svc.Authorize(ctx, callerAdmin, "missing"); err != ErrCourseNotFound {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestCourseService_Roster(t *testing.T) {
	svc, _ := setupTestCourseService()

	students, err := svc.Roster(context.Background(), callerA, "c-ds-a")
	if err != nil {
		t.Fatalf("Roster 应成功: %v", err)
	}
	if len(students) != 3 || students[0].EnrollmentNumber != "22CE001" {
		t.Errorf("名单不符: %+v", students)
	}

	if _, err := svc.Roster(context.Background(), callerB, "c-ds-a"); err != ErrCourseForbidden {
		t.Errorf("期望 ErrCourseForbidden，实际: %v", err)
	}
}
