package model

// swagger:model Thread
type Thread struct {
	BaseModel
	CourseID uint          `gorm:"index;not null" json:"courseId"`
	UserID   uint          `gorm:"index;not null" json:"userId"`
	User     *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title    string        `gorm:"size:200;not null" json:"title"`
	Body     string        `gorm:"type:text;not null" json:"body"`
	Replies  []ThreadReply `gorm:"foreignKey:ThreadID" json:"replies"`
}

func (Thread) TableName() string {
	return "threads"
}

type ThreadReply struct {
	BaseModel
	ThreadID uint   `gorm:"index;not null" json:"threadId"`
	UserID   uint   `gorm:"index;not null" json:"userId"`
	User     *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Body     string `gorm:"type:text;not null" json:"body"`
}

func (ThreadReply) TableName() string {
	return "thread_replies"
}
