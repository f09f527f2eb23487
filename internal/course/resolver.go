package course

import "errors"

// ErrLevelLocked 上级未选时不允许选择下级
var ErrLevelLocked = errors.New("请先选择上一级筛选条件")

// ResolutionState 解析结果状态
type ResolutionState string

const (
	// ResolutionIncomplete 学期/班级/科目尚未选全
	ResolutionIncomplete ResolutionState = "INCOMPLETE"
	// ResolutionUnmatched 选全但无匹配课程
	ResolutionUnmatched ResolutionState = "UNMATCHED"
	// ResolutionAmbiguous 匹配到多门课程，需要再选批次
	ResolutionAmbiguous ResolutionState = "AMBIGUOUS"
	ResolutionResolved  ResolutionState = "RESOLVED"
)

// Resolution 解析结果
type Resolution struct {
	State   ResolutionState `json:"state"`
	Course  *Course         `json:"course,omitempty"`
	Batches []string        `json:"batches,omitempty"` // AMBIGUOUS 时可供选择的批次
}

// Resolved 是否已唯一确定课程
func (r Resolution) Resolved() bool {
	return r.State == ResolutionResolved && r.Course != nil
}

// Resolve 按学期、班级、科目精确匹配课程
//
// 任一条件为空、无匹配或多于一门匹配时均返回 false，不会在多门课程中任取其一。
func Resolve(courses []Course, semesterID, divisionID, subjectID string) (Course, bool) {
	if semesterID == "" || divisionID == "" || subjectID == "" {
		return Course{}, false
	}
	var (
		found Course
		n     int
	)
	for _, c := range courses {
		if c.Semester.ID == semesterID && c.Division.ID == divisionID && c.Subject.ID == subjectID {
			found = c
			n++
			if n > 1 {
				return Course{}, false
			}
		}
	}
	return found, n == 1
}

// Resolve 解析选择，含批次消歧
func (x *Index) Resolve(sel Selection) Resolution {
	sel = sel.Normalize()
	if sel.Stage() != StageSubjectChosen {
		return Resolution{State: ResolutionIncomplete}
	}

	candidates := x.candidates(sel.SemesterID, sel.DivisionID, sel.SubjectID)
	if sel.Batch != "" {
		filtered := candidates[:0:0]
		for _, c := range candidates {
			if c.MatchesBatch(sel.Batch) {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	switch len(candidates) {
	case 0:
		return Resolution{State: ResolutionUnmatched}
	case 1:
		c := candidates[0]
		return Resolution{State: ResolutionResolved, Course: &c}
	default:
		return Resolution{
			State:   ResolutionAmbiguous,
			Batches: x.Batches(sel.SemesterID, sel.DivisionID, sel.SubjectID),
		}
	}
}

// Options 当前选择下各级可选项
type Options struct {
	Selection  Selection  `json:"selection"`
	Enablement Enablement `json:"enablement"`
	Semesters  []Semester `json:"semesters"`
	Divisions  []Division `json:"divisions"`
	Subjects   []Subject  `json:"subjects"`
	Batches    []string   `json:"batches"`
	Resolution Resolution `json:"resolution"`
}

// OptionsFor 计算选择对应的可选项与解析结果
func (x *Index) OptionsFor(sel Selection) Options {
	sel = sel.Normalize()
	en := sel.Enablement()
	opts := Options{
		Selection:  sel,
		Enablement: en,
		Semesters:  x.Semesters(),
		Divisions:  []Division{},
		Subjects:   []Subject{},
		Batches:    []string{},
	}
	if en.Division {
		opts.Divisions = x.Divisions(sel.SemesterID)
	}
	if en.Subject {
		opts.Subjects = x.Subjects(sel.SemesterID, sel.DivisionID)
	}
	if en.Batch {
		opts.Batches = x.Batches(sel.SemesterID, sel.DivisionID, sel.SubjectID)
	}
	opts.Resolution = x.Resolve(sel)
	return opts
}

// Resolver 单个使用方持有的级联筛选状态
type Resolver struct {
	index *Index
	sel   Selection
}

// NewResolver 基于索引创建 Resolver
func NewResolver(index *Index) *Resolver {
	return &Resolver{index: index}
}

// Reload 课程列表重新拉取后替换索引，保留仍然有效的选择
func (r *Resolver) Reload(index *Index) {
	r.index = index
	sel := Selection{}
	if _, ok := index.Semester(r.sel.SemesterID); ok {
		sel = sel.WithSemester(r.sel.SemesterID)
		if containsDivision(index.Divisions(sel.SemesterID), r.sel.DivisionID) {
			sel = sel.WithDivision(r.sel.DivisionID)
			if containsSubject(index.Subjects(sel.SemesterID, sel.DivisionID), r.sel.SubjectID) {
				sel = sel.WithSubject(r.sel.SubjectID).WithBatch(r.sel.Batch)
			}
		}
	}
	r.sel = sel
}

// Selection 当前选择
func (r *Resolver) Selection() Selection { return r.sel }

// Stage 当前阶段
func (r *Resolver) Stage() Stage { return r.sel.Stage() }

// SelectSemester 选择学期，清空下级
func (r *Resolver) SelectSemester(id string) {
	r.sel = r.sel.WithSemester(id)
}

// SelectDivision 选择班级，清空科目与批次
func (r *Resolver) SelectDivision(id string) error {
	if !r.sel.Enablement().Division {
		return ErrLevelLocked
	}
	r.sel = r.sel.WithDivision(id)
	return nil
}

// SelectSubject 选择科目，清空批次
func (r *Resolver) SelectSubject(id string) error {
	if !r.sel.Enablement().Subject {
		return ErrLevelLocked
	}
	r.sel = r.sel.WithSubject(id)
	return nil
}

// SelectBatch 选择批次
func (r *Resolver) SelectBatch(batch string) error {
	if !r.sel.Enablement().Batch {
		return ErrLevelLocked
	}
	r.sel = r.sel.WithBatch(batch)
	return nil
}

// Apply 依次应用一组选择（常用于从请求参数恢复状态）
func (r *Resolver) Apply(sel Selection) error {
	r.SelectSemester(sel.SemesterID)
	if sel.DivisionID == "" {
		return nil
	}
	if err := r.SelectDivision(sel.DivisionID); err != nil {
		return err
	}
	if sel.SubjectID == "" {
		return nil
	}
	if err := r.SelectSubject(sel.SubjectID); err != nil {
		return err
	}
	if sel.Batch == "" {
		return nil
	}
	return r.SelectBatch(sel.Batch)
}

// Options 当前可选项
func (r *Resolver) Options() Options {
	return r.index.OptionsFor(r.sel)
}

// Resolution 当前解析结果
func (r *Resolver) Resolution() Resolution {
	return r.index.Resolve(r.sel)
}

// Resolved 已唯一确定的课程
func (r *Resolver) Resolved() (Course, bool) {
	res := r.Resolution()
	if !res.Resolved() {
		return Course{}, false
	}
	return *res.Course, true
}

func containsDivision(divs []Division, id string) bool {
	for _, d := range divs {
		if d.ID == id {
			return true
		}
	}
	return false
}

func containsSubject(subs []Subject, id string) bool {
	for _, s := range subs {
		if s.ID == id {
			return true
		}
	}
	return false
}
