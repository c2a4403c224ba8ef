package service

import (
	"context"
	"errors"

	"learning_points_backend/internal/repository"
	"learning_points_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const placeholderName = "No Username"

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID uint   `json:"userId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

type LeaderboardService struct {
	ScoreRepo    *repository.UserScoreRepository
	UserRepo     *repository.UserRepository
	DefaultLimit int
	MaxLimit     int
}

func NewLeaderboardService(scoreRepo *repository.UserScoreRepository, userRepo *repository.UserRepository, defaultLimit, maxLimit int) *LeaderboardService {
	return &LeaderboardService{
		ScoreRepo:    scoreRepo,
		UserRepo:     userRepo,
		DefaultLimit: defaultLimit,
		MaxLimit:     maxLimit,
	}
}

func (s *LeaderboardService) normalizeLimit(limit int) int {
	if limit <= 0 {
		limit = s.DefaultLimit
	}
	if limit <= 0 {
		limit = 10
	}
	if s.MaxLimit > 0 && limit > s.MaxLimit {
		limit = s.MaxLimit
	}
	return limit
}

// GetLeaderboard 用户名批量查询，查不到时用占位名
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	scores, err := s.ScoreRepo.ListTop(ctx, s.normalizeLimit(limit))
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(scores))
	for _, sc := range scores {
		ids = append(ids, sc.UserID)
	}
	names := make(map[uint]string, len(ids))
	users, err := s.UserRepo.FindByIDs(ctx, ids)
	if err != nil {
		logger.Log.Warn("leaderboard name lookup failed", zap.Error(err))
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}

	entries := make([]LeaderboardEntry, 0, len(scores))
	for i, sc := range scores {
		name := names[sc.UserID]
		if name == "" {
			name = placeholderName
		}
		entries = append(entries, LeaderboardEntry{
			Rank:   i + 1,
			UserID: sc.UserID,
			Name:   name,
			Score:  sc.Score,
		})
	}
	return entries, nil
}

// GetRank 从 1 开始，没有积分记录时返回 -1
func (s *LeaderboardService) GetRank(ctx context.Context, userID uint) (int, error) {
	rank, err := s.ScoreRepo.Rank(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return -1, nil
	}
	if err != nil {
		return 0, err
	}
	return rank, nil
}
