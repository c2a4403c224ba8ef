package service

import (
	"context"
	"errors"
	"time"

	"learning_points_backend/internal/repository"

	"gorm.io/gorm"
)

type StreakService struct {
	UserRepo *repository.UserRepository
	now      func() time.Time
}

func NewStreakService(userRepo *repository.UserRepository) *StreakService {
	return &StreakService{UserRepo: userRepo, now: time.Now}
}

func utcDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextStreak 按 UTC 日期计算新的连续天数，changed=false 表示同一天无需写入
func NextStreak(last *time.Time, current int, now time.Time) (streak int, changed bool) {
	if last == nil {
		return 1, true
	}
	days := int(utcDate(now).Sub(utcDate(*last)).Hours() / 24)
	switch days {
	case 0:
		return current, false
	case 1:
		return current + 1, true
	default:
		// 中断或日期在未来，都从 1 重新开始
		return 1, true
	}
}

func (s *StreakService) UpdateStreak(ctx context.Context, userID uint) (int, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	streak, changed := NextStreak(user.LastActiveDate, user.DayStreak, now)
	if !changed {
		return streak, nil
	}
	if err := s.UserRepo.UpdateStreak(ctx, userID, streak, now); err != nil {
		return 0, err
	}
	return streak, nil
}
