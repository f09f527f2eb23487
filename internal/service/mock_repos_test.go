package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"trackademy/backend/internal/model"
	"trackademy/backend/internal/repository"
)

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	listErr error
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) add(c *model.Course) {
	m.courses[c.CourseID] = c
}

func (m *mockCourseRepo) List(_ context.Context, filter repository.CourseFilter) ([]model.Course, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.Course
	for _, c := range m.courses {
		if filter.FacultyUserID != "" && (c.Faculty == nil || c.Faculty.UserID != filter.FacultyUserID) {
			continue
		}
		if filter.SemesterID != "" && c.SemesterID != filter.SemesterID {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	students map[string][]model.Student
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{students: make(map[string][]model.Student)}
}

func (m *mockEnrollmentRepo) ListStudents(_ context.Context, courseID string) ([]model.Student, error) {
	return m.students[courseID], nil
}

// ── Mock AttendanceRepository ──

type attendanceKey struct {
	courseID  string
	date      string
	studentID string
}

type mockAttendanceRepo struct {
	mu        sync.Mutex
	records   map[attendanceKey]model.AttendanceRecord
	listCalls int
	upserts   int
	upsertErr error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[attendanceKey]model.AttendanceRecord)}
}

func (m *mockAttendanceRepo) ListByCourseAndDate(_ context.Context, courseID string, date time.Time) ([]model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	var result []model.AttendanceRecord
	for k, r := range m.records {
		if k.courseID == courseID && k.date == date.Format("2006-01-02") {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) BulkUpsert(_ context.Context, records []model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	for _, r := range records {
		m.records[attendanceKey{r.CourseID, r.Date.Format("2006-01-02"), r.StudentID}] = r
	}
	return nil
}

func (m *mockAttendanceRepo) status(courseID, date, studentID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[attendanceKey{courseID, date, studentID}].Status
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments []model.Assignment
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{}
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	if a.AssignmentID == "" {
		a.AssignmentID = "asg-" + a.Title
	}
	a.CreatedAt = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	m.assignments = append(m.assignments, *a)
	return nil
}

func (m *mockAssignmentRepo) ListByCourse(_ context.Context, courseID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.CourseID == courseID {
			result = append(result, a)
		}
	}
	return result, nil
}

// ── Mock 缓存 ──

type mockCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	invalidated []string
	failGet     bool
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) GetAttendance(_ context.Context, courseID, date string, dst interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return false, errors.New("cache unavailable")
	}
	raw, ok := m.data[courseID+":"+date]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *mockCache) SetAttendance(_ context.Context, courseID, date string, v interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[courseID+":"+date] = raw
	return nil
}

func (m *mockCache) InvalidateAttendance(_ context.Context, courseID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, courseID+":"+date)
	m.invalidated = append(m.invalidated, courseID+":"+date)
	return nil
}

// ── 测试数据 ──

const (
	facultyUserA = "user-fac-a"
	facultyUserB = "user-fac-b"
)

func strPtr(s string) *string { return &s }

// newTestRepo 构造包含以下数据的仓库：
//
//	c-ds-a   : 教师 A，SEM3 / A 班 / 数据结构（理论）
//	c-lab-b1 : 教师 A，SEM3 / A 班 / 物理实验 B1
//	c-lab-b2 : 教师 A，SEM3 / A 班 / 物理实验 B2
//	c-os-b   : 教师 B，SEM4 / B 班 / 操作系统（理论）
func newTestRepo() (*repository.Repository, *mockCourseRepo, *mockEnrollmentRepo, *mockAttendanceRepo, *mockAssignmentRepo) {
	facA := &model.Faculty{FacultyID: "fac-a", UserID: facultyUserA, FullName: "Dr. A"}
	facB := &model.Faculty{FacultyID: "fac-b", UserID: facultyUserB, FullName: "Dr. B"}
	sem3 := &model.Semester{SemesterID: "sem-3", SemesterNumber: 3, SemesterType: "ODD"}
	sem4 := &model.Semester{SemesterID: "sem-4", SemesterNumber: 4, SemesterType: "EVEN"}
	divA := &model.Division{DivisionID: "div-a", Name: "A"}
	divB := &model.Division{DivisionID: "div-b", Name: "B"}
	ds := &model.Subject{SubjectID: "sub-ds", Name: "Data Structures", Code: "CS301"}
	lab := &model.Subject{SubjectID: "sub-lab", Name: "Physics Lab", Code: "PH101L"}
	osys := &model.Subject{SubjectID: "sub-os", Name: "Operating Systems", Code: "CS401"}

	mk := func(id string, fac *model.Faculty, sem *model.Semester, div *model.Division, sub *model.Subject, lt string, batch *string) *model.Course {
		return &model.Course{
			CourseID: id, FacultyID: fac.FacultyID, SemesterID: sem.SemesterID, DivisionID: div.DivisionID, SubjectID: sub.SubjectID,
			LectureType: lt, Batch: batch,
			Faculty: fac, Semester: sem, Division: div, Subject: sub,
		}
	}

	courses := newMockCourseRepo()
	courses.add(mk("c-ds-a", facA, sem3, divA, ds, "THEORY", nil))
	courses.add(mk("c-lab-b1", facA, sem3, divA, lab, "PRACTICAL", strPtr("B1")))
	courses.add(mk("c-lab-b2", facA, sem3, divA, lab, "PRACTICAL", strPtr("B2")))
	courses.add(mk("c-os-b", facB, sem4, divB, osys, "THEORY", nil))

	enroll := newMockEnrollmentRepo()
	enroll.students["c-ds-a"] = []model.Student{
		{StudentID: "s-1", FullName: "Aarav", EnrollmentNumber: "22CE001"},
		{StudentID: "s-2", FullName: "Diya", EnrollmentNumber: "22CE002"},
		{StudentID: "s-3", FullName: "Kabir", EnrollmentNumber: "22CE003"},
	}
	enroll.students["c-lab-b1"] = []model.Student{
		{StudentID: "s-1", FullName: "Aarav", EnrollmentNumber: "22CE001"},
	}

	att := newMockAttendanceRepo()
	asg := newMockAssignmentRepo()

	repo := &repository.Repository{
		Course:     courses,
		Enrollment: enroll,
		Attendance: att,
		Assignment: asg,
	}
	return repo, courses, enroll, att, asg
}
