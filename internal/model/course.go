package model

// Course 授课表，对应 courses
// 一门课程 = 科目 + 教师 + 学期 + 班级 + 授课类型（实验课另有分组）
type Course struct {
	CourseID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	SubjectID   string  `gorm:"type:uuid;not null"                             json:"subject_id"`
	FacultyID   string  `gorm:"type:uuid;not null"                             json:"faculty_id"`
	SemesterID  string  `gorm:"type:uuid;not null"                             json:"semester_id"`
	DivisionID  string  `gorm:"type:uuid;not null"                             json:"division_id"`
	LectureType string  `gorm:"type:varchar(20);not null"                      json:"lecture_type"` // THEORY | PRACTICAL
	Batch       *string `gorm:"type:varchar(20)"                               json:"batch,omitempty"`
	BaseModel

	// 关联
	Subject  *Subject  `gorm:"foreignKey:SubjectID;references:SubjectID"   json:"subject,omitempty"`
	Faculty  *Faculty  `gorm:"foreignKey:FacultyID;references:FacultyID"   json:"faculty,omitempty"`
	Semester *Semester `gorm:"foreignKey:SemesterID;references:SemesterID" json:"semester,omitempty"`
	Division *Division `gorm:"foreignKey:DivisionID;references:DivisionID" json:"division,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// Enrollment 选课关系，对应 course_students
type Enrollment struct {
	CourseID  string `gorm:"type:uuid;primaryKey" json:"course_id"`
	StudentID string `gorm:"type:uuid;primaryKey" json:"student_id"`
	BaseModel

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "course_students" }
