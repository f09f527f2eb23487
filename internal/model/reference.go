package model

// Division 班级表，对应 divisions
type Division struct {
	DivisionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"division_id"`
	Name       string `gorm:"type:varchar(50);not null"                      json:"name"`
	BaseModel
}

// TableName 指定表名
func (Division) TableName() string { return "divisions" }

// Subject 科目表，对应 subjects
type Subject struct {
	SubjectID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	Code      string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	BaseModel
}

// TableName 指定表名
func (Subject) TableName() string { return "subjects" }

// Faculty 教师表，对应 faculty
// UserID 为身份服务中的用户 ID，与 JWT 的 user_id 对应
type Faculty struct {
	FacultyID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"faculty_id"`
	UserID    string `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	FullName  string `gorm:"type:varchar(100);not null"                     json:"full_name"`
	BaseModel
}

// TableName 指定表名
func (Faculty) TableName() string { return "faculty" }

// Student 学生表，对应 students
type Student struct {
	StudentID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	FullName         string `gorm:"type:varchar(100);not null"                     json:"full_name"`
	EnrollmentNumber string `gorm:"type:varchar(30);not null;uniqueIndex"          json:"enrollment_number"`
	BaseModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
