package repository

import (
	"context"
	"time"

	"learning_points_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReadingStateRepository struct {
	DB *gorm.DB
}

func NewReadingStateRepository(db *gorm.DB) *ReadingStateRepository {
	return &ReadingStateRepository{DB: db}
}

// TouchTx 记录一次模块访问，已存在时只刷新访问时间
func (r *ReadingStateRepository) TouchTx(ctx context.Context, tx *gorm.DB, userID uint, moduleID string, at time.Time) error {
	return conn(ctx, r.DB, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_accessed_at", "updated_at"}),
		}).
		Create(&model.ReadingState{
			UserID:         userID,
			ModuleID:       moduleID,
			LastAccessedAt: at,
		}).Error
}

// TrimTx 只保留最近访问的 keep 条，返回删除条数
func (r *ReadingStateRepository) TrimTx(ctx context.Context, tx *gorm.DB, userID uint, keep int) (int64, error) {
	db := conn(ctx, r.DB, tx)

	var ids []uint
	err := db.Model(&model.ReadingState{}).
		Where("user_id = ?", userID).
		Order("last_accessed_at DESC").Order("id DESC").
		Pluck("id", &ids).Error
	if err != nil || len(ids) <= keep {
		return 0, err
	}

	res := db.Where("id IN ?", ids[keep:]).Delete(&model.ReadingState{})
	return res.RowsAffected, res.Error
}

func (r *ReadingStateRepository) ListRecent(ctx context.Context, userID uint, limit int) ([]model.ReadingState, error) {
	var states []model.ReadingState
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_accessed_at DESC").Order("id DESC").
		Limit(limit).
		Find(&states).Error
	return states, err
}
