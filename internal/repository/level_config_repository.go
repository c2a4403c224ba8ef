package repository

import (
	"context"
	"learning_points_backend/internal/model"

	"gorm.io/gorm"
)

type LevelConfigRepository struct {
	DB *gorm.DB
}

func NewLevelConfigRepository(db *gorm.DB) *LevelConfigRepository {
	return &LevelConfigRepository{DB: db}
}

func (r *LevelConfigRepository) ListLevels(ctx context.Context, includeInactive bool) ([]model.LevelThreshold, error) {
	var levels []model.LevelThreshold
	q := r.DB.WithContext(ctx).Model(&model.LevelThreshold{})
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("level ASC").Order("min_points ASC").Find(&levels).Error
	return levels, err
}

func (r *LevelConfigRepository) FindLevelByID(ctx context.Context, id string) (*model.LevelThreshold, error) {
	var level model.LevelThreshold
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&level).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *LevelConfigRepository) CountLevels(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.LevelThreshold{}).Count(&count).Error
	return count, err
}

// ActiveLevelNumberTaken 检查启用的等级中是否已有相同等级号，excludeID 用于更新时排除自身
func (r *LevelConfigRepository) ActiveLevelNumberTaken(ctx context.Context, level int, excludeID string) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&model.LevelThreshold{}).
		Where("level = ? AND is_active = ?", level, true)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *LevelConfigRepository) CreateLevel(ctx context.Context, level *model.LevelThreshold) error {
	return r.DB.WithContext(ctx).Create(level).Error
}

func (r *LevelConfigRepository) CreateLevels(ctx context.Context, levels []model.LevelThreshold) error {
	if len(levels) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&levels).Error
}

func (r *LevelConfigRepository) UpdateLevelFields(ctx context.Context, id string, fields map[string]interface{}) (*model.LevelThreshold, error) {
	if err := r.DB.WithContext(ctx).Model(&model.LevelThreshold{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.FindLevelByID(ctx, id)
}

// DeleteLevel 软删除
func (r *LevelConfigRepository) DeleteLevel(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.LevelThreshold{})
	return res.RowsAffected > 0, res.Error
}

// FirstPointsConfig 以最早创建的一条配置为准
func (r *LevelConfigRepository) FirstPointsConfig(ctx context.Context) (*model.PointsConfig, error) {
	var cfg model.PointsConfig
	err := r.DB.WithContext(ctx).Order("created_at ASC").Order("id ASC").First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *LevelConfigRepository) FindPointsConfigByID(ctx context.Context, id string) (*model.PointsConfig, error) {
	var cfg model.PointsConfig
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *LevelConfigRepository) ListPointsConfigs(ctx context.Context) ([]model.PointsConfig, error) {
	var configs []model.PointsConfig
	err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&configs).Error
	return configs, err
}

func (r *LevelConfigRepository) CreatePointsConfig(ctx context.Context, cfg *model.PointsConfig) error {
	return r.DB.WithContext(ctx).Create(cfg).Error
}

func (r *LevelConfigRepository) UpdatePointsConfigFields(ctx context.Context, id string, fields map[string]interface{}) (*model.PointsConfig, error) {
	if err := r.DB.WithContext(ctx).Model(&model.PointsConfig{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.FindPointsConfigByID(ctx, id)
}
