package course

// Stage 级联筛选所处阶段
type Stage int

const (
	StageUnset Stage = iota
	StageSemesterChosen
	StageDivisionChosen
	StageSubjectChosen
)

func (s Stage) String() string {
	switch s {
	case StageSemesterChosen:
		return "SEMESTER_CHOSEN"
	case StageDivisionChosen:
		return "DIVISION_CHOSEN"
	case StageSubjectChosen:
		return "SUBJECT_CHOSEN"
	default:
		return "UNSET"
	}
}

// Selection 级联筛选的当前取值，空串表示未选
//
// 上级取值变化时，所有下级取值一律清空。
type Selection struct {
	SemesterID string `json:"semesterId" form:"semester_id"`
	DivisionID string `json:"divisionId" form:"division_id"`
	SubjectID  string `json:"subjectId"  form:"subject_id"`
	Batch      string `json:"batch"      form:"batch"`
}

// Enablement 各级是否可选
type Enablement struct {
	Semester bool `json:"semester"`
	Division bool `json:"division"`
	Subject  bool `json:"subject"`
	Batch    bool `json:"batch"`
}

// WithSemester 选择学期；取值变化时清空班级、科目、批次
func (s Selection) WithSemester(id string) Selection {
	if id == s.SemesterID {
		return s
	}
	return Selection{SemesterID: id}
}

// WithDivision 选择班级；取值变化时清空科目、批次
func (s Selection) WithDivision(id string) Selection {
	if id == s.DivisionID {
		return s
	}
	return Selection{SemesterID: s.SemesterID, DivisionID: id}
}

// WithSubject 选择科目；取值变化时清空批次
func (s Selection) WithSubject(id string) Selection {
	if id == s.SubjectID {
		return s
	}
	return Selection{SemesterID: s.SemesterID, DivisionID: s.DivisionID, SubjectID: id}
}

// WithBatch 选择批次
func (s Selection) WithBatch(batch string) Selection {
	s.Batch = batch
	return s
}

// Stage 当前阶段；中间级缺失时以最高的连续已选级为准
func (s Selection) Stage() Stage {
	switch {
	case s.SemesterID == "":
		return StageUnset
	case s.DivisionID == "":
		return StageSemesterChosen
	case s.SubjectID == "":
		return StageDivisionChosen
	default:
		return StageSubjectChosen
	}
}

// Enablement 当前各级可选状态
func (s Selection) Enablement() Enablement {
	st := s.Stage()
	return Enablement{
		Semester: true,
		Division: st >= StageSemesterChosen,
		Subject:  st >= StageDivisionChosen,
		Batch:    st >= StageSubjectChosen,
	}
}

// Normalize 丢弃断档之后的下级取值（如未选学期却带了班级）
func (s Selection) Normalize() Selection {
	switch s.Stage() {
	case StageUnset:
		return Selection{}
	case StageSemesterChosen:
		return Selection{SemesterID: s.SemesterID}
	case StageDivisionChosen:
		return Selection{SemesterID: s.SemesterID, DivisionID: s.DivisionID}
	default:
		return s
	}
}
