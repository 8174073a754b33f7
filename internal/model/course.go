package model

import "time"

// swagger:model Course
type Course struct {
	BaseModel
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	TeacherID   uint   `gorm:"index;not null" json:"teacherId"`
	Teacher     *User  `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Category    string `gorm:"size:100" json:"category"`
	Published   bool   `gorm:"default:false" json:"published"`
}

func (Course) TableName() string {
	return "courses"
}

// Enrollment 学生选课记录，(course_id, student_id) 唯一
type Enrollment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID  uint      `gorm:"uniqueIndex:idx_enrollment_course_student;not null" json:"courseId"`
	StudentID uint      `gorm:"uniqueIndex:idx_enrollment_course_student;not null" json:"studentId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID uint   `gorm:"index;not null" json:"courseId"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Content  string `gorm:"type:text" json:"content"`
	VideoURL string `gorm:"size:500" json:"videoUrl"`
	Order    int    `gorm:"default:0" json:"order"`
}

func (Lesson) TableName() string {
	return "lessons"
}
