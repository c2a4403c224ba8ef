package service

import (
	"context"
	"errors"
	"strings"

	"learning_points_backend/internal/model"
	"learning_points_backend/internal/repository"
	"learning_points_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LevelConfigService struct {
	Repo *repository.LevelConfigRepository
}

func NewLevelConfigService(repo *repository.LevelConfigRepository) *LevelConfigService {
	return &LevelConfigService{Repo: repo}
}

// LevelRequest 创建时 level/minPoints/title 必填，更新时只修改非空字段
type LevelRequest struct {
	Level       *int    `json:"level"`
	MinPoints   *int    `json:"minPoints"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

type PointsConfigRequest struct {
	SectionPoints     *model.DifficultyPoints `json:"sectionPoints"`
	QuizPoints        *model.DifficultyPoints `json:"quizPoints"`
	FinalQuizPoints   *model.DifficultyPoints `json:"finalQuizPoints"`
	StreakBonus       *model.StreakBonus      `json:"streakBonus"`
	FirstAttemptBonus *float64                `json:"firstAttemptBonus"`
}

type InitResult struct {
	LevelsCreated       int  `json:"levelsCreated"`
	PointsConfigCreated bool `json:"pointsConfigCreated"`
	LegacyMigrated      int  `json:"legacyMigrated"`
}

func (s *LevelConfigService) GetActiveLevels(ctx context.Context) ([]model.LevelThreshold, error) {
	return s.Repo.ListLevels(ctx, false)
}

func (s *LevelConfigService) ListLevels(ctx context.Context, includeInactive bool) ([]model.LevelThreshold, error) {
	return s.Repo.ListLevels(ctx, includeInactive)
}

func (s *LevelConfigService) GetPointsConfig(ctx context.Context) (*model.PointsConfig, error) {
	cfg, err := s.Repo.FirstPointsConfig(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPointsConfigNotFound
	}
	return cfg, err
}

// EffectiveRates 配置缺失或无法解析时退回内置默认值
func (s *LevelConfigService) EffectiveRates(ctx context.Context) model.PointsRates {
	cfg, err := s.GetPointsConfig(ctx)
	if err != nil {
		logger.Log.Warn("points config unavailable, using default rates", zap.Error(err))
		return model.DefaultPointsRates()
	}
	rates, err := cfg.Rates()
	if err != nil {
		logger.Log.Warn("points config undecodable, using default rates",
			zap.String("configId", cfg.ID), zap.Error(err))
		return model.DefaultPointsRates()
	}
	return rates
}

func validateLevel(l *model.LevelThreshold) error {
	if l.Level < 1 {
		return validationError("level must be >= 1")
	}
	if l.MinPoints < 0 {
		return validationError("minPoints must be >= 0")
	}
	if strings.TrimSpace(l.Title) == "" {
		return validationError("title is required")
	}
	return nil
}

func (s *LevelConfigService) ensureLevelNumberFree(ctx context.Context, level int, excludeID string) error {
	taken, err := s.Repo.ActiveLevelNumberTaken(ctx, level, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return validationError("level %d already exists", level)
	}
	return nil
}

func (s *LevelConfigService) CreateLevel(ctx context.Context, req LevelRequest) (*model.LevelThreshold, error) {
	if req.Level == nil || req.MinPoints == nil || req.Title == nil {
		return nil, validationError("level, minPoints and title are required")
	}
	level := &model.LevelThreshold{
		Level:     *req.Level,
		MinPoints: *req.MinPoints,
		Title:     strings.TrimSpace(*req.Title),
		IsActive:  true,
	}
	if req.Description != nil {
		level.Description = *req.Description
	}
	if req.IsActive != nil {
		level.IsActive = *req.IsActive
	}
	if err := validateLevel(level); err != nil {
		return nil, err
	}
	if level.IsActive {
		if err := s.ensureLevelNumberFree(ctx, level.Level, ""); err != nil {
			return nil, err
		}
	}

	if err := s.Repo.CreateLevel(ctx, level); err != nil {
		return nil, err
	}
	logger.Log.Info("level threshold created",
		zap.String("id", level.ID), zap.Int("level", level.Level), zap.Int("minPoints", level.MinPoints))
	return level, nil
}

func (s *LevelConfigService) UpdateLevel(ctx context.Context, id string, req LevelRequest) (*model.LevelThreshold, error) {
	current, err := s.Repo.FindLevelByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLevelNotFound
	}
	if err != nil {
		return nil, err
	}

	merged := *current
	fields := map[string]interface{}{}
	if req.Level != nil {
		merged.Level = *req.Level
		fields["level"] = merged.Level
	}
	if req.MinPoints != nil {
		merged.MinPoints = *req.MinPoints
		fields["min_points"] = merged.MinPoints
	}
	if req.Title != nil {
		merged.Title = strings.TrimSpace(*req.Title)
		fields["title"] = merged.Title
	}
	if req.Description != nil {
		merged.Description = *req.Description
		fields["description"] = merged.Description
	}
	if req.IsActive != nil {
		merged.IsActive = *req.IsActive
		fields["is_active"] = merged.IsActive
	}
	if len(fields) == 0 {
		return current, nil
	}
	if err := validateLevel(&merged); err != nil {
		return nil, err
	}
	if merged.IsActive {
		if err := s.ensureLevelNumberFree(ctx, merged.Level, id); err != nil {
			return nil, err
		}
	}

	return s.Repo.UpdateLevelFields(ctx, id, fields)
}

func (s *LevelConfigService) DeleteLevel(ctx context.Context, id string) error {
	deleted, err := s.Repo.DeleteLevel(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrLevelNotFound
	}
	logger.Log.Info("level threshold deleted", zap.String("id", id))
	return nil
}

func validatePointsConfig(req PointsConfigRequest) error {
	tables := map[string]*model.DifficultyPoints{
		"sectionPoints":   req.SectionPoints,
		"quizPoints":      req.QuizPoints,
		"finalQuizPoints": req.FinalQuizPoints,
	}
	for name, t := range tables {
		if t != nil && t.HasNegative() {
			return validationError("%s values must be >= 0", name)
		}
	}
	// 关闭加成时天数与倍数可以缺省
	if b := req.StreakBonus; b != nil && b.Enabled {
		if b.StreakDays < 1 {
			return validationError("streakBonus.streakDays must be >= 1")
		}
		if b.Multiplier < 1 {
			return validationError("streakBonus.multiplier must be >= 1")
		}
	}
	if req.FirstAttemptBonus != nil && *req.FirstAttemptBonus < 1 {
		return validationError("firstAttemptBonus must be >= 1")
	}
	return nil
}

// UpdatePointsConfig id 为空时更新当前生效的那条配置
func (s *LevelConfigService) UpdatePointsConfig(ctx context.Context, id string, req PointsConfigRequest) (*model.PointsConfig, error) {
	if err := validatePointsConfig(req); err != nil {
		return nil, err
	}

	var (
		current *model.PointsConfig
		err     error
	)
	if id == "" {
		current, err = s.GetPointsConfig(ctx)
	} else {
		current, err = s.Repo.FindPointsConfigByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrPointsConfigNotFound
		}
	}
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.SectionPoints != nil {
		fields["section_points"] = model.EncodeDifficultyPoints(*req.SectionPoints)
	}
	if req.QuizPoints != nil {
		fields["quiz_points"] = model.EncodeDifficultyPoints(*req.QuizPoints)
	}
	if req.FinalQuizPoints != nil {
		fields["final_quiz_points"] = model.EncodeDifficultyPoints(*req.FinalQuizPoints)
	}
	if req.StreakBonus != nil {
		fields["streak_bonus_enabled"] = req.StreakBonus.Enabled
		fields["streak_bonus_streak_days"] = req.StreakBonus.StreakDays
		fields["streak_bonus_multiplier"] = req.StreakBonus.Multiplier
	}
	if req.FirstAttemptBonus != nil {
		fields["first_attempt_bonus"] = *req.FirstAttemptBonus
	}
	if len(fields) == 0 {
		return current, nil
	}

	updated, err := s.Repo.UpdatePointsConfigFields(ctx, current.ID, fields)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("points config updated", zap.String("id", updated.ID))
	return updated, nil
}

// InitializeDefaults 可重复调用：只在表为空时写入默认数据，否则执行旧格式迁移
func (s *LevelConfigService) InitializeDefaults(ctx context.Context) (*InitResult, error) {
	result := &InitResult{}

	count, err := s.Repo.CountLevels(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		levels := make([]model.LevelThreshold, len(model.DefaultLevels))
		copy(levels, model.DefaultLevels)
		if err := s.Repo.CreateLevels(ctx, levels); err != nil {
			return nil, err
		}
		result.LevelsCreated = len(levels)
	}

	configs, err := s.Repo.ListPointsConfigs(ctx)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		if err := s.Repo.CreatePointsConfig(ctx, model.NewPointsConfig(model.DefaultPointsRates())); err != nil {
			return nil, err
		}
		result.PointsConfigCreated = true
	} else {
		for i := range configs {
			migrated, err := s.migrateLegacyConfig(ctx, &configs[i])
			if err != nil {
				return nil, err
			}
			if migrated {
				result.LegacyMigrated++
			}
		}
	}

	logger.Log.Info("level defaults initialized",
		zap.Int("levelsCreated", result.LevelsCreated),
		zap.Bool("pointsConfigCreated", result.PointsConfigCreated),
		zap.Int("legacyMigrated", result.LegacyMigrated))
	return result, nil
}

// migrateLegacyConfig 把单个数字形式的积分表改写为三档难度结构
func (s *LevelConfigService) migrateLegacyConfig(ctx context.Context, cfg *model.PointsConfig) (bool, error) {
	columns := []struct {
		name string
		raw  model.PointsTable
	}{
		{"section_points", cfg.SectionPoints},
		{"quiz_points", cfg.QuizPoints},
		{"final_quiz_points", cfg.FinalQuizPoints},
	}

	fields := map[string]interface{}{}
	for _, col := range columns {
		points, legacy, err := model.DecodeDifficultyPoints(col.raw)
		if err != nil {
			logger.Log.Warn("skip undecodable points table",
				zap.String("configId", cfg.ID), zap.String("column", col.name), zap.Error(err))
			continue
		}
		if legacy {
			fields[col.name] = model.EncodeDifficultyPoints(points)
		}
	}
	if len(fields) == 0 {
		return false, nil
	}

	if _, err := s.Repo.UpdatePointsConfigFields(ctx, cfg.ID, fields); err != nil {
		return false, err
	}
	logger.Log.Info("legacy points config migrated", zap.String("configId", cfg.ID), zap.Int("columns", len(fields)))
	return true, nil
}
