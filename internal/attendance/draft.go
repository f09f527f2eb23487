package attendance

// Draft 单个 (课程, 日期) 的可编辑点名草稿
//
// 只能通过 SetStatus / MarkAll 修改状态；换课程或日期时必须重建而不是修补。
type Draft struct {
	key     Key
	entries []Entry
	pos     map[string]int
}

// NewDraft 基于花名册与已存记录构建草稿
func NewDraft(key Key, roster []Student, existing []Record) *Draft {
	return newDraftFromEntries(key, Reconcile(roster, existing))
}

func newDraftFromEntries(key Key, entries []Entry) *Draft {
	pos := make(map[string]int, len(entries))
	for i, e := range entries {
		pos[e.StudentID] = i
	}
	return &Draft{key: key, entries: entries, pos: pos}
}

// Key 草稿归属
func (d *Draft) Key() Key { return d.key }

// Len 条目数
func (d *Draft) Len() int { return len(d.entries) }

// Entries 条目副本
func (d *Draft) Entries() []Entry {
	return append([]Entry(nil), d.entries...)
}

// Entry 按学生查找条目
func (d *Draft) Entry(studentID string) (Entry, bool) {
	i, ok := d.pos[studentID]
	if !ok {
		return Entry{}, false
	}
	return d.entries[i], true
}

// SetStatus 修改单个学生的状态
//
// 状态非法返回 ErrInvalidStatus；学生不在草稿中时静默忽略。
func (d *Draft) SetStatus(studentID string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	i, ok := d.pos[studentID]
	if !ok {
		return nil
	}
	d.entries[i].Status = status
	return nil
}

// MarkAll 全部标记为同一状态
func (d *Draft) MarkAll(status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	for i := range d.entries {
		d.entries[i].Status = status
	}
	return nil
}

// Counts 各状态人数
func (d *Draft) Counts() map[Status]int {
	out := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		out[s] = 0
	}
	for _, e := range d.entries {
		out[e.Status]++
	}
	return out
}

// Payload 打包为批量提交请求
func (d *Draft) Payload() (*BulkPayload, error) {
	return BuildBulkPayload(d.key.CourseID, d.key.Date, d.entries)
}

func (d *Draft) clone() *Draft {
	return newDraftFromEntries(d.key, d.Entries())
}
