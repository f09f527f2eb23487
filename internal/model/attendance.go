package model

import "time"

// AttendanceRecord 考勤记录表，对应 attendance_records
// (course_id, date, student_id) 唯一，只通过批量 upsert 写入
type AttendanceRecord struct {
	AttendanceID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"      json:"attendance_id"`
	CourseID     string    `gorm:"type:uuid;not null;uniqueIndex:uk_attendance_key"    json:"course_id"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex:uk_attendance_key"    json:"date"`
	StudentID    string    `gorm:"type:uuid;not null;uniqueIndex:uk_attendance_key"    json:"student_id"`
	Status       string    `gorm:"type:varchar(20);not null;default:'PRESENT'"         json:"status"` // PRESENT | ABSENT | MEDICAL_LEAVE
	BaseModel
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// Assignment 作业表，对应 assignments
type Assignment struct {
	AssignmentID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	CourseID     string     `gorm:"type:uuid;not null;index"                       json:"course_id"`
	Title        string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description  string     `gorm:"type:text"                                      json:"description,omitempty"`
	DueDate      *time.Time `gorm:"type:date"                                      json:"due_date,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }
