package model

// LevelThreshold 等级门槛配置，由管理员维护
type LevelThreshold struct {
	UUIDBase
	Level       int    `gorm:"not null;index" json:"level"`
	MinPoints   int    `gorm:"not null;default:0" json:"minPoints"`
	Title       string `gorm:"size:100;not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool   `gorm:"not null;index" json:"isActive"`
}

func (LevelThreshold) TableName() string {
	return "level_thresholds"
}

// LevelInfo 对外展示的等级摘要
type LevelInfo struct {
	Level     int    `json:"level"`
	Title     string `json:"title"`
	MinPoints int    `json:"minPoints"`
}

func (l LevelThreshold) Info() LevelInfo {
	return LevelInfo{Level: l.Level, Title: l.Title, MinPoints: l.MinPoints}
}

var DefaultLevels = []LevelThreshold{
	{Level: 1, MinPoints: 0, Title: "Beginner", Description: "Just getting started", IsActive: true},
	{Level: 2, MinPoints: 50, Title: "Student", Description: "Learning the basics", IsActive: true},
	{Level: 3, MinPoints: 150, Title: "Learner", Description: "Making good progress", IsActive: true},
	{Level: 4, MinPoints: 300, Title: "Scholar", Description: "Showing dedication", IsActive: true},
	{Level: 5, MinPoints: 500, Title: "Expert", Description: "Mastering the content", IsActive: true},
	{Level: 6, MinPoints: 750, Title: "Advanced", Description: "Exceptional learner", IsActive: true},
	{Level: 7, MinPoints: 1050, Title: "Master", Description: "Expert knowledge", IsActive: true},
	{Level: 8, MinPoints: 1400, Title: "Champion", Description: "Outstanding achievement", IsActive: true},
	{Level: 9, MinPoints: 1800, Title: "Legend", Description: "Legendary dedication", IsActive: true},
	{Level: 10, MinPoints: 2250, Title: "Grand Master", Description: "The pinnacle of learning", IsActive: true},
}

// BeginnerLevel 在没有任何启用的等级配置时使用
var BeginnerLevel = LevelInfo{Level: 1, Title: "Beginner", MinPoints: 0}
