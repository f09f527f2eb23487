package course

import "errors"

var (
	ErrUnresolved = errors.New("课程未确定：请选择学期、班级和科目")
	ErrAmbiguous  = errors.New("匹配到多门课程：请选择批次")
)

// Target 需要绑定到唯一课程的使用方（如新建作业、点名）
type Target interface {
	BindCourse(courseID string)
}

// Bind 解析选择并把课程 ID 写入 target
//
// 与点名共用 Index.Resolve，歧义与重置规则完全一致。
func Bind(index *Index, sel Selection, target Target) (Course, error) {
	res := index.Resolve(sel)
	switch res.State {
	case ResolutionResolved:
		target.BindCourse(res.Course.ID)
		return *res.Course, nil
	case ResolutionAmbiguous:
		return Course{}, ErrAmbiguous
	default:
		return Course{}, ErrUnresolved
	}
}
