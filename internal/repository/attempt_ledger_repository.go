package repository

import (
	"context"
	"learning_points_backend/internal/model"
	"learning_points_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttemptLedgerRepository 首次作答判定：同一 (user, source, sourceId) 只发放一次积分
type AttemptLedgerRepository struct {
	DB *gorm.DB
}

func NewAttemptLedgerRepository(db *gorm.DB) *AttemptLedgerRepository {
	return &AttemptLedgerRepository{DB: db}
}

// ensureLedger 按需创建用户台账，created 表示本次新建
func (r *AttemptLedgerRepository) ensureLedger(ctx context.Context, tx *gorm.DB, userID uint) (created bool, err error) {
	res := conn(ctx, r.DB, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&model.AttemptLedger{UserID: userID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsFirstAttempt 只读判定，不会写入作答记录；读取失败时返回 false
func (r *AttemptLedgerRepository) IsFirstAttempt(ctx context.Context, userID uint, source, sourceID string) bool {
	created, err := r.ensureLedger(ctx, nil, userID)
	if err != nil {
		logger.Log.Error("attempt ledger unavailable",
			zap.Uint("userId", userID), zap.String("source", source), zap.String("sourceId", sourceID), zap.Error(err))
		return false
	}
	if created {
		return true
	}

	var count int64
	err = r.DB.WithContext(ctx).Model(&model.AttemptRecord{}).
		Where("user_id = ? AND attempt_key = ?", userID, model.AttemptKey(source, sourceID)).
		Count(&count).Error
	if err != nil {
		logger.Log.Error("attempt ledger lookup failed",
			zap.Uint("userId", userID), zap.String("source", source), zap.String("sourceId", sourceID), zap.Error(err))
		return false
	}
	return count == 0
}

// MarkAttempted 条件写入作答记录，inserted=false 表示该来源此前已发放
func (r *AttemptLedgerRepository) MarkAttempted(ctx context.Context, tx *gorm.DB, userID uint, source, sourceID string) (inserted bool, err error) {
	if _, err := r.ensureLedger(ctx, tx, userID); err != nil {
		return false, err
	}

	now := time.Now().UTC()
	record := &model.AttemptRecord{
		UserID:      userID,
		AttemptKey:  model.AttemptKey(source, sourceID),
		Source:      source,
		SourceID:    sourceID,
		CompletedAt: now,
	}
	res := conn(ctx, r.DB, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "attempt_key"}},
			DoNothing: true,
		}).
		Create(record)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	err = conn(ctx, r.DB, tx).Model(&model.AttemptLedger{}).
		Where("user_id = ?", userID).
		Update("updated_at", now).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *AttemptLedgerRepository) ListAttempts(ctx context.Context, userID uint) ([]model.AttemptRecord, error) {
	var records []model.AttemptRecord
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("completed_at DESC").Find(&records).Error
	return records, err
}
