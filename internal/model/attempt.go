package model

import "time"

// MaxSourceIDLength 与 attempt_records.source_id 列宽一致
const MaxSourceIDLength = 150

// AttemptLedger 每个用户一条，记录已发放过积分的来源
type AttemptLedger struct {
	UserID    uint            `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Attempts  []AttemptRecord `gorm:"foreignKey:UserID;references:UserID" json:"attempts,omitempty"`
}

func (AttemptLedger) TableName() string {
	return "attempt_ledgers"
}

// AttemptRecord 存在即表示 (user, source, sourceId) 已发放过积分
type AttemptRecord struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_attempt_user_key" json:"-"`
	AttemptKey  string    `gorm:"size:191;not null;uniqueIndex:idx_attempt_user_key" json:"key"`
	Source      string    `gorm:"size:32;not null" json:"source"`
	SourceID    string    `gorm:"size:150;not null" json:"sourceId"`
	CompletedAt time.Time `gorm:"not null" json:"completedAt"`
}

func (AttemptRecord) TableName() string {
	return "attempt_records"
}

// AttemptKey 拼接规则为 source + "_" + sourceId
func AttemptKey(source, sourceID string) string {
	return source + "_" + sourceID
}
