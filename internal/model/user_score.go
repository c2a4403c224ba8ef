package model

import (
	"math"
	"time"
)

// MaxTotalScore 累计积分上限
const MaxTotalScore = math.MaxInt32

// UserScore 每个用户一条，保存累计积分
type UserScore struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	Score     int       `gorm:"not null;default:0;index" json:"score"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (UserScore) TableName() string {
	return "user_scores"
}
