// Package course 课程级联筛选与解析：学期 → 班级 → 科目（→ 批次）
//
// 所有函数均为纯函数，只操作已经由 Directory 拉取到内存中的课程列表。
package course

import (
	"context"
	"errors"
)

// LectureType 授课类型
type LectureType string

const (
	LectureTheory    LectureType = "THEORY"
	LecturePractical LectureType = "PRACTICAL"
)

// Valid 是否为合法授课类型
func (t LectureType) Valid() bool {
	return t == LectureTheory || t == LecturePractical
}

// Semester 学期（semesterType: ODD | EVEN）
type Semester struct {
	ID             string `json:"id"`
	SemesterNumber int    `json:"semesterNumber"`
	SemesterType   string `json:"semesterType"`
}

// Division 班级
type Division struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Subject 科目
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Faculty 授课教师
type Faculty struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

// Course 一门开课：某科目面向某学期某班级，由一位教师讲授；实验课可按批次拆分
type Course struct {
	ID          string      `json:"id"`
	Subject     Subject     `json:"subject"`
	Faculty     Faculty     `json:"faculty"`
	Semester    Semester    `json:"semester"`
	Division    Division    `json:"division"`
	LectureType LectureType `json:"lectureType"`
	Batch       *string     `json:"batch"`
}

// TheoryBatch 批次选择中代表理论课（无批次）的取值
const TheoryBatch = string(LectureTheory)

var (
	ErrLectureTypeInvalid = errors.New("授课类型无效")
	ErrBatchRequired      = errors.New("实验课必须指定批次")
	ErrBatchForbidden     = errors.New("理论课不能指定批次")
	ErrBatchReserved      = errors.New("批次名 THEORY 为保留值")
)

// Validate 校验授课类型与批次的组合
func (c *Course) Validate() error {
	switch c.LectureType {
	case LecturePractical:
		if c.Batch == nil || *c.Batch == "" {
			return ErrBatchRequired
		}
		if *c.Batch == TheoryBatch {
			return ErrBatchReserved
		}
	case LectureTheory:
		if c.Batch != nil {
			return ErrBatchForbidden
		}
	default:
		return ErrLectureTypeInvalid
	}
	return nil
}

// BatchName 返回批次名，理论课为空串
func (c *Course) BatchName() string {
	if c.Batch == nil {
		return ""
	}
	return *c.Batch
}

// MatchesBatch 批次选择是否指向本课程；TheoryBatch 只匹配无批次的理论课
func (c *Course) MatchesBatch(batch string) bool {
	if batch == TheoryBatch {
		return c.Batch == nil
	}
	return c.BatchName() == batch
}

// ListFilter 课程列表查询条件
type ListFilter struct {
	FacultyUserID string
	SemesterID    string
}

// Directory 课程目录（外部协作方）
type Directory interface {
	ListCourses(ctx context.Context, filter ListFilter) ([]Course, error)
}
