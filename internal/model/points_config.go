package model

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

const (
	SourceSectionRead = "section_read"
	SourceModuleQuiz  = "module_quiz"
	SourceFinalQuiz   = "final_quiz"
)

const (
	DifficultyEasy         = "easy"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

func IsValidSource(source string) bool {
	switch source {
	case SourceSectionRead, SourceModuleQuiz, SourceFinalQuiz:
		return true
	}
	return false
}

// NormalizeDifficulty 统一为小写，空值按 intermediate 处理
func NormalizeDifficulty(difficulty string) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(difficulty))
	if d == "" {
		return DifficultyIntermediate, true
	}
	switch d {
	case DifficultyEasy, DifficultyIntermediate, DifficultyAdvanced:
		return d, true
	}
	return d, false
}

// DifficultyPoints 按难度区分的积分表
type DifficultyPoints struct {
	Easy         int `json:"easy"`
	Intermediate int `json:"intermediate"`
	Advanced     int `json:"advanced"`
}

func (p DifficultyPoints) For(difficulty string) (int, bool) {
	d, ok := NormalizeDifficulty(difficulty)
	if !ok {
		return 0, false
	}
	switch d {
	case DifficultyEasy:
		return p.Easy, true
	case DifficultyAdvanced:
		return p.Advanced, true
	default:
		return p.Intermediate, true
	}
}

func (p DifficultyPoints) HasNegative() bool {
	return p.Easy < 0 || p.Intermediate < 0 || p.Advanced < 0
}

// LegacyDifficultyPoints 旧版单值结构的展开规则：n, n+1, n+2
func LegacyDifficultyPoints(n int) DifficultyPoints {
	return DifficultyPoints{Easy: n, Intermediate: n + 1, Advanced: n + 2}
}

var errEmptyPointsTable = errors.New("points table is empty")

// DecodeDifficultyPoints 兼容旧版的单个数字格式，legacy 为 true 表示需要迁移
func DecodeDifficultyPoints(raw PointsTable) (points DifficultyPoints, legacy bool, err error) {
	if len(raw) == 0 || string(raw) == "null" {
		return points, false, errEmptyPointsTable
	}
	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return LegacyDifficultyPoints(int(math.Round(scalar))), true, nil
	}
	if err := json.Unmarshal(raw, &points); err != nil {
		return points, false, err
	}
	return points, false, nil
}

func EncodeDifficultyPoints(p DifficultyPoints) PointsTable {
	b, _ := json.Marshal(p)
	return PointsTable(b)
}

type StreakBonus struct {
	Enabled    bool    `json:"enabled"`
	StreakDays int     `json:"streakDays"`
	Multiplier float64 `json:"multiplier"`
}

// PointsConfig 积分奖励配置，多条记录时以最早创建的一条为准
type PointsConfig struct {
	UUIDBase
	SectionPoints     PointsTable `json:"sectionPoints"`
	QuizPoints        PointsTable `json:"quizPoints"`
	FinalQuizPoints   PointsTable `json:"finalQuizPoints"`
	StreakBonus       StreakBonus `gorm:"embedded;embeddedPrefix:streak_bonus_" json:"streakBonus"`
	FirstAttemptBonus float64     `gorm:"default:1" json:"firstAttemptBonus"`
}

func (PointsConfig) TableName() string {
	return "points_configs"
}

// PointsRates 解码后的积分表
type PointsRates struct {
	SectionPoints     DifficultyPoints `json:"sectionPoints"`
	QuizPoints        DifficultyPoints `json:"quizPoints"`
	FinalQuizPoints   DifficultyPoints `json:"finalQuizPoints"`
	StreakBonus       StreakBonus      `json:"streakBonus"`
	FirstAttemptBonus float64          `json:"firstAttemptBonus"`
}

func DefaultPointsRates() PointsRates {
	return PointsRates{
		SectionPoints:     DifficultyPoints{Easy: 2, Intermediate: 3, Advanced: 5},
		QuizPoints:        DifficultyPoints{Easy: 1, Intermediate: 2, Advanced: 4},
		FinalQuizPoints:   DifficultyPoints{Easy: 2, Intermediate: 3, Advanced: 5},
		StreakBonus:       StreakBonus{Enabled: false, StreakDays: 7, Multiplier: 1.5},
		FirstAttemptBonus: 1,
	}
}

// NewPointsConfig 由积分表构造一条待持久化的配置
func NewPointsConfig(r PointsRates) *PointsConfig {
	return &PointsConfig{
		SectionPoints:     EncodeDifficultyPoints(r.SectionPoints),
		QuizPoints:        EncodeDifficultyPoints(r.QuizPoints),
		FinalQuizPoints:   EncodeDifficultyPoints(r.FinalQuizPoints),
		StreakBonus:       r.StreakBonus,
		FirstAttemptBonus: r.FirstAttemptBonus,
	}
}

func (c *PointsConfig) Rates() (PointsRates, error) {
	var (
		r   PointsRates
		err error
	)
	if r.SectionPoints, _, err = DecodeDifficultyPoints(c.SectionPoints); err != nil {
		return r, err
	}
	if r.QuizPoints, _, err = DecodeDifficultyPoints(c.QuizPoints); err != nil {
		return r, err
	}
	if r.FinalQuizPoints, _, err = DecodeDifficultyPoints(c.FinalQuizPoints); err != nil {
		return r, err
	}
	r.StreakBonus = c.StreakBonus
	r.FirstAttemptBonus = c.FirstAttemptBonus
	if r.FirstAttemptBonus <= 0 {
		r.FirstAttemptBonus = 1
	}
	return r, nil
}

// RateFor 查表得到某来源、某难度的基础积分
func (r PointsRates) RateFor(source, difficulty string) (int, bool) {
	switch source {
	case SourceSectionRead:
		return r.SectionPoints.For(difficulty)
	case SourceModuleQuiz:
		return r.QuizPoints.For(difficulty)
	case SourceFinalQuiz:
		return r.FinalQuizPoints.For(difficulty)
	}
	return 0, false
}
