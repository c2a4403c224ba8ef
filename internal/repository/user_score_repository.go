package repository

import (
	"context"
	"learning_points_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserScoreRepository struct {
	DB *gorm.DB
}

func NewUserScoreRepository(db *gorm.DB) *UserScoreRepository {
	return &UserScoreRepository{DB: db}
}

// EnsureTx 不存在则创建零分记录，已存在时不做任何修改
func (r *UserScoreRepository) EnsureTx(ctx context.Context, tx *gorm.DB, userID uint) error {
	return conn(ctx, r.DB, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&model.UserScore{UserID: userID, Score: 0}).Error
}

// GetOrCreate 读取用户积分，首次访问时创建零分记录
func (r *UserScoreRepository) GetOrCreate(ctx context.Context, userID uint) (*model.UserScore, error) {
	if err := r.EnsureTx(ctx, nil, userID); err != nil {
		return nil, err
	}
	return r.FindByUserIDTx(ctx, nil, userID)
}

func (r *UserScoreRepository) FindByUserIDTx(ctx context.Context, tx *gorm.DB, userID uint) (*model.UserScore, error) {
	var s model.UserScore
	if err := conn(ctx, r.DB, tx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// AddTx 原子累加，记录不存在时返回 gorm.ErrRecordNotFound
func (r *UserScoreRepository) AddTx(ctx context.Context, tx *gorm.DB, userID uint, delta int) (*model.UserScore, error) {
	res := conn(ctx, r.DB, tx).Model(&model.UserScore{}).
		Where("user_id = ?", userID).
		Update("score", gorm.Expr("score + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	// RowsAffected 为 0 时可能只是值未变化，由查询结果判断记录是否存在
	return r.FindByUserIDTx(ctx, tx, userID)
}

func (r *UserScoreRepository) Set(ctx context.Context, userID uint, score int) (*model.UserScore, error) {
	res := r.DB.WithContext(ctx).Model(&model.UserScore{}).
		Where("user_id = ?", userID).
		Update("score", score)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.FindByUserIDTx(ctx, nil, userID)
}

func (r *UserScoreRepository) Delete(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.UserScore{}).Error
}

func (r *UserScoreRepository) ResetAll(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&model.UserScore{}).
		Update("score", 0)
	return res.RowsAffected, res.Error
}

// rankOrder 排行榜排序：分数降序，同分按创建时间、用户ID升序
const rankOrder = "score DESC, created_at ASC, user_id ASC"

// ListTop limit<=0 时返回全部
func (r *UserScoreRepository) ListTop(ctx context.Context, limit int) ([]model.UserScore, error) {
	var scores []model.UserScore
	q := r.DB.WithContext(ctx).Order(rankOrder)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&scores).Error
	return scores, err
}

// Rank 返回 1 开始的名次，与 ListTop 的排序规则一致
func (r *UserScoreRepository) Rank(ctx context.Context, userID uint) (int, error) {
	s, err := r.FindByUserIDTx(ctx, nil, userID)
	if err != nil {
		return 0, err
	}

	var ahead int64
	err = r.DB.WithContext(ctx).Model(&model.UserScore{}).
		Where("score > ?", s.Score).
		Or("score = ? AND created_at < ?", s.Score, s.CreatedAt).
		Or("score = ? AND created_at = ? AND user_id < ?", s.Score, s.CreatedAt, s.UserID).
		Count(&ahead).Error
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}
