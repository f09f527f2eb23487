package model

// Semester 学期表，对应 semesters（参考数据，由迁移写入）
type Semester struct {
	SemesterID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"semester_id"`
	SemesterNumber int    `gorm:"type:smallint;not null"                         json:"semester_number"`
	SemesterType   string `gorm:"type:varchar(10);not null"                      json:"semester_type"` // ODD | EVEN
	BaseModel
}

// TableName 指定表名
func (Semester) TableName() string { return "semesters" }
