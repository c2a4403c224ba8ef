package model

import "time"

// MaxRecentModules 每个用户保留的最近访问模块数
const MaxRecentModules = 2

// ReadingState 用户最近访问的学习模块
type ReadingState struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_reading_user_module" json:"userId"`
	ModuleID       string    `gorm:"size:150;not null;uniqueIndex:idx_reading_user_module" json:"moduleId"`
	LastAccessedAt time.Time `gorm:"not null;index" json:"lastAccessedAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (ReadingState) TableName() string {
	return "reading_states"
}
