package model

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case Student, Teacher, Admin:
		return true
	}
	return false
}

// swagger:model User
type User struct {
	BaseModel
	Name      string   `gorm:"size:100;not null" json:"name"`
	Email     string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string   `gorm:"size:100;not null" json:"-"`
	Role      UserRole `gorm:"size:20;default:'student'" json:"role"`
	Bio       string   `gorm:"type:text" json:"bio"`
	AvatarURL string   `gorm:"size:255" json:"avatarUrl"`
}

func (User) TableName() string {
	return "users"
}
