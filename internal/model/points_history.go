package model

import "time"

// PointsGainRecord 积分获取流水，只追加不修改
type PointsGainRecord struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID       uint      `gorm:"index;not null" json:"-"`
	Source       string    `gorm:"size:32;not null" json:"source"`
	SourceID     string    `gorm:"size:150;not null" json:"sourceId"`
	PointsGained int       `gorm:"not null" json:"pointsGained"`
	Difficulty   string    `gorm:"size:20" json:"difficulty,omitempty"`
	Timestamp    time.Time `gorm:"index;not null" json:"timestamp"`
}

func (PointsGainRecord) TableName() string {
	return "points_gain_records"
}
