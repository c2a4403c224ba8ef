package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"learning_points_backend/internal/model"
	"learning_points_backend/internal/repository"
	"learning_points_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReadingStateService 记录用户最近访问的模块，用于"继续学习"入口
type ReadingStateService struct {
	DB       *gorm.DB
	Repo     *repository.ReadingStateRepository
	UserRepo *repository.UserRepository
	now      func() time.Time
}

func NewReadingStateService(db *gorm.DB, repo *repository.ReadingStateRepository, userRepo *repository.UserRepository) *ReadingStateService {
	return &ReadingStateService{
		DB:       db,
		Repo:     repo,
		UserRepo: userRepo,
		now:      time.Now,
	}
}

func (s *ReadingStateService) RecordModuleAccess(ctx context.Context, userID uint, moduleID string) error {
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		return validationError("moduleId is required")
	}
	if utf8.RuneCountInString(moduleID) > model.MaxSourceIDLength {
		return validationError("moduleId must be at most %d characters", model.MaxSourceIDLength)
	}

	now := s.now().UTC()
	var trimmed int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.UserRepo.FindByIDTx(ctx, tx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := s.Repo.TouchTx(ctx, tx, userID, moduleID, now); err != nil {
			return err
		}
		n, err := s.Repo.TrimTx(ctx, tx, userID, model.MaxRecentModules)
		trimmed = n
		return err
	})
	if err != nil {
		return err
	}

	logger.Log.Debug("module access recorded",
		zap.Uint("userId", userID),
		zap.String("moduleId", moduleID),
		zap.Int64("trimmed", trimmed))
	return nil
}

// GetLastAccessed 最近访问在前
func (s *ReadingStateService) GetLastAccessed(ctx context.Context, userID uint) ([]model.ReadingState, error) {
	return s.Repo.ListRecent(ctx, userID, model.MaxRecentModules)
}
