package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// User 用户档案，同时承载连续学习天数与积分历史
type User struct {
	BaseModel
	Name           string             `gorm:"size:100;not null" json:"name"`
	Username       string             `gorm:"size:100;index" json:"username"`
	Email          string             `gorm:"size:100;unique;not null" json:"email"`
	Password       string             `gorm:"size:100;not null" json:"-"`
	Role           UserRole           `gorm:"size:20;default:'student'" json:"role"`
	Gender         string             `gorm:"size:10" json:"gender,omitempty"`
	Birthplace     string             `gorm:"size:100" json:"birthplace,omitempty"`
	Birthdate      string             `gorm:"size:10" json:"birthdate,omitempty"`
	Location       string             `gorm:"size:100" json:"socializationLocation,omitempty"`
	PhoneNumber    string             `gorm:"size:30" json:"phoneNumber,omitempty"`
	DayStreak      int                `gorm:"not null;default:0" json:"dayStreak"`
	LastActiveDate *time.Time         `json:"lastActiveDate,omitempty"`
	LastLogin      *time.Time         `json:"lastLogin,omitempty"`
	PointsHistory  []PointsGainRecord `gorm:"foreignKey:UserID" json:"pointsHistory,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == Admin
}
