package attendance

// Entry 点名草稿条目
type Entry struct {
	StudentID        string `json:"studentId"`
	StudentName      string `json:"studentName"`
	EnrollmentNumber string `json:"enrollmentNumber"`
	Status           Status `json:"status"`
}

// Reconcile 合并花名册与已存记录，得到完整草稿
//
// 输出顺序与花名册一致；无记录的学生默认 PRESENT；
// 不在花名册中的记录（已退课等）直接忽略。
func Reconcile(roster []Student, existing []Record) []Entry {
	stored := make(map[string]Status, len(existing))
	for _, r := range existing {
		if r.Status.Valid() {
			stored[r.StudentID] = r.Status
		}
	}

	entries := make([]Entry, 0, len(roster))
	seen := make(map[string]bool, len(roster))
	for _, s := range roster {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true

		status, ok := stored[s.ID]
		if !ok {
			status = DefaultStatus
		}
		entries = append(entries, Entry{
			StudentID:        s.ID,
			StudentName:      s.FullName,
			EnrollmentNumber: s.EnrollmentNumber,
			Status:           status,
		})
	}
	return entries
}

// RecordsFromEntries 把草稿条目还原为记录（用于回显与对账）
func RecordsFromEntries(key Key, entries []Entry) []Record {
	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, Record{
			CourseID:  key.CourseID,
			Date:      key.Date,
			StudentID: e.StudentID,
			Status:    e.Status,
		})
	}
	return out
}
