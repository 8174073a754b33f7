package model

import "time"

// Progress 每个 (student_id, course_id) 仅一条
// swagger:model Progress
type Progress struct {
	ID               uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID        uint             `gorm:"uniqueIndex:idx_progress_student_course;not null" json:"studentId"`
	CourseID         uint             `gorm:"uniqueIndex:idx_progress_student_course;not null" json:"courseId"`
	CompletedLessons []ProgressLesson `gorm:"foreignKey:ProgressID" json:"-"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func (Progress) TableName() string {
	return "user_progress"
}

// LessonIDs 按完成顺序返回已完成课时
func (p *Progress) LessonIDs() []uint {
	ids := make([]uint, 0, len(p.CompletedLessons))
	for _, l := range p.CompletedLessons {
		ids = append(ids, l.LessonID)
	}
	return ids
}

// ProgressLesson 已完成课时集合，(progress_id, lesson_id) 唯一
type ProgressLesson struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProgressID  uint      `gorm:"uniqueIndex:idx_progress_lesson;not null" json:"progressId"`
	LessonID    uint      `gorm:"uniqueIndex:idx_progress_lesson;not null" json:"lessonId"`
	CompletedAt time.Time `json:"completedAt"`
}

func (ProgressLesson) TableName() string {
	return "progress_lessons"
}
