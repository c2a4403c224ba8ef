package service

import (
	"context"
	"errors"

	"learning_points_backend/internal/model"
	"learning_points_backend/internal/repository"
	"learning_points_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ScoreService struct {
	Repo *repository.UserScoreRepository
}

func NewScoreService(repo *repository.UserScoreRepository) *ScoreService {
	return &ScoreService{Repo: repo}
}

// GetScore 首次读取时创建零分记录
func (s *ScoreService) GetScore(ctx context.Context, userID uint) (int, error) {
	rec, err := s.Repo.GetOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	return rec.Score, nil
}

// AddScore 原子累加，记录不存在时返回 ErrScoreNotFound
func (s *ScoreService) AddScore(ctx context.Context, userID uint, delta int) (int, error) {
	if delta < 0 {
		return 0, validationError("delta must be >= 0")
	}
	var total int
	err := s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.Repo.FindByUserIDTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := checkHeadroom(rec.Score, delta); err != nil {
			return err
		}
		rec, err = s.Repo.AddTx(ctx, tx, userID, delta)
		if err != nil {
			return err
		}
		total = rec.Score
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrScoreNotFound
	}
	if err != nil {
		return 0, err
	}
	return total, nil
}

// checkHeadroom 累加后不能超过 MaxTotalScore
func checkHeadroom(current, delta int) error {
	if delta > model.MaxTotalScore || current > model.MaxTotalScore-delta {
		return validationError("score would exceed %d", model.MaxTotalScore)
	}
	return nil
}

// Increment 在事务内累加，返回累加前后的总分
func (s *ScoreService) Increment(ctx context.Context, tx *gorm.DB, userID uint, delta int) (previous, current int, err error) {
	if delta < 0 {
		return 0, 0, validationError("delta must be >= 0")
	}
	if err = s.Repo.EnsureTx(ctx, tx, userID); err != nil {
		return 0, 0, err
	}
	before, err := s.Repo.FindByUserIDTx(ctx, tx, userID)
	if err != nil {
		return 0, 0, err
	}
	if err := checkHeadroom(before.Score, delta); err != nil {
		return 0, 0, err
	}
	after, err := s.Repo.AddTx(ctx, tx, userID, delta)
	if err != nil {
		return 0, 0, err
	}
	if after.Score != before.Score+delta {
		logger.Log.Warn("concurrent score update detected",
			zap.Uint("userId", userID),
			zap.Int("previous", before.Score),
			zap.Int("delta", delta),
			zap.Int("current", after.Score))
	}
	return before.Score, after.Score, nil
}

// SetScore 管理员直接设置分数，不存在则创建
func (s *ScoreService) SetScore(ctx context.Context, userID uint, score int) (*model.UserScore, error) {
	if score < 0 || score > model.MaxTotalScore {
		return nil, validationError("score must be between 0 and %d", model.MaxTotalScore)
	}
	if err := s.Repo.EnsureTx(ctx, nil, userID); err != nil {
		return nil, err
	}
	return s.Repo.Set(ctx, userID, score)
}

func (s *ScoreService) DeleteScore(ctx context.Context, userID uint) error {
	if _, err := s.Repo.FindByUserIDTx(ctx, nil, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScoreNotFound
		}
		return err
	}
	return s.Repo.Delete(ctx, userID)
}

func (s *ScoreService) ListScores(ctx context.Context) ([]model.UserScore, error) {
	return s.Repo.ListTop(ctx, 0)
}

func (s *ScoreService) ResetAll(ctx context.Context) (int64, error) {
	n, err := s.Repo.ResetAll(ctx)
	if err != nil {
		return 0, err
	}
	logger.Log.Info("all scores reset", zap.Int64("rows", n))
	return n, nil
}
