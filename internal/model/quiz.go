package model

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionMCQ         QuestionType = "mcq"
	QuestionTrueFalse   QuestionType = "true_false"
	QuestionShortAnswer QuestionType = "short_answer"
)

type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question 选项位置即答案下标
type Question struct {
	Text    string       `json:"text"`
	Type    QuestionType `json:"type,omitempty"`
	Options []Option     `json:"options"`
	// Penalty 答错扣分，为空时使用评分策略默认值
	Penalty *float64 `json:"penalty,omitempty"`
}

// Kind 未设置类型按单选题处理
func (q Question) Kind() QuestionType {
	if q.Type == "" {
		return QuestionMCQ
	}
	return q.Type
}

// Gradable 简答题无法自动判分
func (q Question) Gradable() bool {
	return q.Kind() != QuestionShortAnswer
}

// swagger:model Quiz
type Quiz struct {
	BaseModel
	Title     string                        `gorm:"size:200;not null" json:"title"`
	CourseID  uint                          `gorm:"index;not null" json:"courseId"`
	Course    *Course                       `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Questions datatypes.JSONSlice[Question] `json:"questions"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type AttemptAnswer struct {
	QuestionIndex     int  `json:"questionIndex"`
	ChosenOptionIndex *int `json:"chosenOptionIndex"`
}

// Attempt 一次提交的测验记录，只追加不修改
// swagger:model Attempt
type Attempt struct {
	ID          uint                               `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID      uint                               `gorm:"index;not null" json:"quizId"`
	StudentID   uint                               `gorm:"index;not null" json:"studentId"`
	Answers     datatypes.JSONSlice[AttemptAnswer] `json:"answers"`
	Score       int                                `gorm:"not null" json:"score"`
	Total       int                                `gorm:"not null" json:"total"`
	Percentage  int                                `gorm:"not null;default:0" json:"percentage"`
	Penalty     float64                            `gorm:"not null;default:0" json:"penalty"`
	Passed      bool                               `gorm:"default:false" json:"passed"`
	SubmittedAt time.Time                          `gorm:"index" json:"submittedAt"`
}

func (Attempt) TableName() string {
	return "attempts"
}
