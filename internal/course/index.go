package course

import "sort"

type divisionKey struct {
	semesterID string
	divisionID string
}

type subjectKey struct {
	semesterID string
	divisionID string
	subjectID  string
}

// Index 课程列表的筛选索引，每次拉取课程列表后构建一次
//
// 构建后各级选项查询均为 map 查找，不再扫描整个课程列表。
type Index struct {
	courses   []Course
	semesters map[string]Semester
	ordered   []Semester
	divisions map[string][]Division
	subjects  map[divisionKey][]Subject
	batches   map[subjectKey][]string
	matches   map[subjectKey][]int
}

// NewIndex 根据课程列表构建索引
func NewIndex(courses []Course) *Index {
	x := &Index{
		courses:   append([]Course(nil), courses...),
		semesters: make(map[string]Semester),
		divisions: make(map[string][]Division),
		subjects:  make(map[divisionKey][]Subject),
		batches:   make(map[subjectKey][]string),
		matches:   make(map[subjectKey][]int),
	}

	seenDiv := make(map[divisionKey]bool)
	seenSub := make(map[subjectKey]bool)
	seenBatch := make(map[subjectKey]map[string]bool)
	hasTheory := make(map[subjectKey]bool)

	for i, c := range x.courses {
		// 同一学期 ID 以首次出现的展示字段为准
		if _, ok := x.semesters[c.Semester.ID]; !ok {
			x.semesters[c.Semester.ID] = c.Semester
			x.ordered = append(x.ordered, c.Semester)
		}

		dk := divisionKey{c.Semester.ID, c.Division.ID}
		if !seenDiv[dk] {
			seenDiv[dk] = true
			x.divisions[c.Semester.ID] = append(x.divisions[c.Semester.ID], c.Division)
		}

		sk := subjectKey{c.Semester.ID, c.Division.ID, c.Subject.ID}
		if !seenSub[sk] {
			seenSub[sk] = true
			x.subjects[dk] = append(x.subjects[dk], c.Subject)
		}
		x.matches[sk] = append(x.matches[sk], i)

		if c.Batch == nil {
			hasTheory[sk] = true
		}
		if b := c.BatchName(); b != "" {
			if seenBatch[sk] == nil {
				seenBatch[sk] = make(map[string]bool)
			}
			if !seenBatch[sk][b] {
				seenBatch[sk][b] = true
				x.batches[sk] = append(x.batches[sk], b)
			}
		}
	}

	// 理论课与实验批次同科目时，理论课作为一个可选"批次"
	for sk := range hasTheory {
		if len(x.batches[sk]) > 0 {
			x.batches[sk] = append(x.batches[sk], TheoryBatch)
		}
	}

	sort.SliceStable(x.ordered, func(i, j int) bool {
		if x.ordered[i].SemesterNumber != x.ordered[j].SemesterNumber {
			return x.ordered[i].SemesterNumber < x.ordered[j].SemesterNumber
		}
		return x.ordered[i].ID < x.ordered[j].ID
	})
	for k, divs := range x.divisions {
		sortDivisions(divs)
		x.divisions[k] = divs
	}
	for k, subs := range x.subjects {
		sortSubjects(subs)
		x.subjects[k] = subs
	}
	for k, bs := range x.batches {
		sort.Strings(bs)
		x.batches[k] = bs
	}

	return x
}

// Courses 返回索引内的课程（原始顺序）
func (x *Index) Courses() []Course {
	return append([]Course(nil), x.courses...)
}

// Len 课程数
func (x *Index) Len() int { return len(x.courses) }

// Semesters 全部学期，按 semesterNumber 升序
func (x *Index) Semesters() []Semester {
	return append([]Semester(nil), x.ordered...)
}

// Semester 按 ID 查找学期
func (x *Index) Semester(id string) (Semester, bool) {
	s, ok := x.semesters[id]
	return s, ok
}

// Divisions 指定学期下的班级，按名称排序
func (x *Index) Divisions(semesterID string) []Division {
	return append([]Division(nil), x.divisions[semesterID]...)
}

// Subjects 指定学期、班级下的科目，按名称排序
func (x *Index) Subjects(semesterID, divisionID string) []Subject {
	return append([]Subject(nil), x.subjects[divisionKey{semesterID, divisionID}]...)
}

// Batches 指定学期、班级、科目下可选的批次；同时开有理论课时包含 TheoryBatch
func (x *Index) Batches(semesterID, divisionID, subjectID string) []string {
	return append([]string(nil), x.batches[subjectKey{semesterID, divisionID, subjectID}]...)
}

func (x *Index) candidates(semesterID, divisionID, subjectID string) []Course {
	idx := x.matches[subjectKey{semesterID, divisionID, subjectID}]
	out := make([]Course, 0, len(idx))
	for _, i := range idx {
		out = append(out, x.courses[i])
	}
	return out
}

// ── 无状态便捷函数 ──

// IndexBySemester 按学期 ID 建立映射，同一 ID 首次出现者为准
func IndexBySemester(courses []Course) map[string]Semester {
	out := make(map[string]Semester)
	for _, c := range courses {
		if _, ok := out[c.Semester.ID]; !ok {
			out[c.Semester.ID] = c.Semester
		}
	}
	return out
}

// DivisionsFor 学期下去重后的班级列表
func DivisionsFor(courses []Course, semesterID string) []Division {
	return NewIndex(courses).Divisions(semesterID)
}

// SubjectsFor 学期、班级下去重后的科目列表
func SubjectsFor(courses []Course, semesterID, divisionID string) []Subject {
	return NewIndex(courses).Subjects(semesterID, divisionID)
}

func sortDivisions(divs []Division) {
	sort.SliceStable(divs, func(i, j int) bool {
		if divs[i].Name != divs[j].Name {
			return divs[i].Name < divs[j].Name
		}
		return divs[i].ID < divs[j].ID
	})
}

func sortSubjects(subs []Subject) {
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].Name != subs[j].Name {
			return subs[i].Name < subs[j].Name
		}
		return subs[i].ID < subs[j].ID
	})
}
