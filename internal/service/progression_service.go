package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"learning_points_backend/internal/model"
	"learning_points_backend/internal/repository"
	"learning_points_backend/pkg/logger"
	"learning_points_backend/pkg/monitoring"
	"learning_points_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// progressionHistoryLimit 个人进度接口返回的最近流水条数
	progressionHistoryLimit = 100
	// maxQuizQuestions 单次测验的题目数上限
	maxQuizQuestions = 1000
	// maxAwardPoints 单次发放的积分上限，含加成
	maxAwardPoints = 100000
)

// AwardRequest 测验类来源需要 MaxScore，CorrectAnswers 取值 [0, MaxScore]
type AwardRequest struct {
	UserID         uint
	Source         string
	SourceID       string
	Difficulty     string
	CorrectAnswers int
	MaxScore       int
}

type AwardResult struct {
	PointsGained   int              `json:"pointsGained"`
	TotalPoints    int              `json:"totalPoints"`
	LevelUp        bool             `json:"levelUp"`
	NewLevel       *model.LevelInfo `json:"newLevel,omitempty"`
	IsFirstAttempt bool             `json:"isFirstAttempt"`
	DayStreak      int              `json:"dayStreak"`
	Message        string           `json:"message"`
}

type UserProgression struct {
	Points             int                      `json:"points"`
	Level              int                      `json:"level"`
	LevelTitle         string                   `json:"levelTitle"`
	PointsForNextLevel int                      `json:"pointsForNextLevel"`
	NextLevelTitle     string                   `json:"nextLevelTitle,omitempty"`
	Rank               int                      `json:"rank"`
	DayStreak          int                      `json:"dayStreak"`
	PointsHistory      []model.PointsGainRecord `json:"pointsHistory"`
}

type AttemptStatus struct {
	Source         string `json:"source"`
	SourceID       string `json:"sourceId"`
	IsFirstAttempt bool   `json:"isFirstAttempt"`
}

// ProgressionOptions 进程级开关，可由配置热更新
type ProgressionOptions struct {
	ApplyStreakBonus bool
}

type ProgressionService struct {
	DB          *gorm.DB
	UserRepo    *repository.UserRepository
	LedgerRepo  *repository.AttemptLedgerRepository
	Scores      *ScoreService
	Levels      *LevelConfigService
	Streaks     *StreakService
	Leaderboard *LeaderboardService

	applyStreakBonus atomic.Bool
	now              func() time.Time
}

func NewProgressionService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	ledgerRepo *repository.AttemptLedgerRepository,
	scores *ScoreService,
	levels *LevelConfigService,
	streaks *StreakService,
	leaderboard *LeaderboardService,
	opts ProgressionOptions,
) *ProgressionService {
	s := &ProgressionService{
		DB:          db,
		UserRepo:    userRepo,
		LedgerRepo:  ledgerRepo,
		Scores:      scores,
		Levels:      levels,
		Streaks:     streaks,
		Leaderboard: leaderboard,
		now:         time.Now,
	}
	s.applyStreakBonus.Store(opts.ApplyStreakBonus)
	return s
}

func (s *ProgressionService) SetOptions(opts ProgressionOptions) {
	if s.applyStreakBonus.Swap(opts.ApplyStreakBonus) != opts.ApplyStreakBonus {
		logger.Log.Info("progression options reloaded", zap.Bool("applyStreakBonus", opts.ApplyStreakBonus))
	}
}

func validateAward(req AwardRequest) (string, error) {
	if req.UserID == 0 {
		return "", validationError("userId is required")
	}
	if !model.IsValidSource(req.Source) {
		return "", validationError("unknown source %q", req.Source)
	}
	if strings.TrimSpace(req.SourceID) == "" {
		return "", validationError("sourceId is required")
	}
	if utf8.RuneCountInString(req.SourceID) > model.MaxSourceIDLength {
		return "", validationError("sourceId must be at most %d characters", model.MaxSourceIDLength)
	}
	difficulty, ok := model.NormalizeDifficulty(req.Difficulty)
	if !ok {
		return "", validationError("unknown difficulty %q", req.Difficulty)
	}
	if req.CorrectAnswers < 0 {
		return "", validationError("correctAnswers must be >= 0")
	}
	if req.Source != model.SourceSectionRead {
		if req.MaxScore < 1 || req.MaxScore > maxQuizQuestions {
			return "", validationError("maxScore must be between 1 and %d", maxQuizQuestions)
		}
		if req.CorrectAnswers > req.MaxScore {
			return "", validationError("correctAnswers must not exceed maxScore")
		}
	}
	return difficulty, nil
}

// rawPoints 阅读按基础分发放，测验按答对题数乘以基础分
func rawPoints(source string, base, correctAnswers int) (int, error) {
	if base < 0 || base > maxAwardPoints {
		return 0, validationError("base points %d out of range", base)
	}
	if source == model.SourceSectionRead {
		return base, nil
	}
	if base > 0 && correctAnswers > maxAwardPoints/base {
		return 0, validationError("award exceeds %d points", maxAwardPoints)
	}
	return correctAnswers * base, nil
}

// applyBonuses 仅在配置与进程开关同时开启时生效
func (s *ProgressionService) applyBonuses(points int, rates model.PointsRates, user *model.User, now time.Time) (int, error) {
	if points == 0 || !rates.StreakBonus.Enabled || !s.applyStreakBonus.Load() {
		return points, nil
	}

	factor := rates.FirstAttemptBonus
	if factor < 1 {
		factor = 1
	}
	streak, _ := NextStreak(user.LastActiveDate, user.DayStreak, now)
	b := rates.StreakBonus
	if b.StreakDays > 0 && streak >= b.StreakDays && b.Multiplier > 1 {
		factor *= b.Multiplier
	}
	boosted := math.Round(float64(points) * factor)
	if boosted > maxAwardPoints {
		return 0, validationError("award exceeds %d points", maxAwardPoints)
	}
	return int(boosted), nil
}

func sourceLabel(source string) string {
	switch source {
	case model.SourceSectionRead:
		return "section"
	case model.SourceModuleQuiz:
		return "quiz"
	default:
		return "final quiz"
	}
}

// AwardPoints 首次作答发放积分，重复作答返回 pointsGained=0 而不是错误
func (s *ProgressionService) AwardPoints(ctx context.Context, req AwardRequest) (*AwardResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressionService.AwardPoints", trace.WithAttributes(
		attribute.Int64("user.id", int64(req.UserID)),
		attribute.String("award.source", req.Source),
		attribute.String("award.source_id", req.SourceID),
	))
	defer span.End()

	difficulty, err := validateAward(req)
	if err != nil {
		monitoring.AwardOutcomes.WithLabelValues(req.Source, monitoring.OutcomeRejected).Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	rates := s.Levels.EffectiveRates(ctx)
	base, _ := rates.RateFor(req.Source, difficulty)
	raw, err := rawPoints(req.Source, base, req.CorrectAnswers)
	if err != nil {
		monitoring.AwardOutcomes.WithLabelValues(req.Source, monitoring.OutcomeRejected).Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	now := s.now().UTC()

	var (
		granted         bool
		points          int
		previous, total int
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.UserRepo.FindByIDTx(ctx, tx, req.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		inserted, err := s.LedgerRepo.MarkAttempted(ctx, tx, req.UserID, req.Source, req.SourceID)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}
		granted = true

		points, err = s.applyBonuses(raw, rates, user, now)
		if err != nil {
			return err
		}
		previous, total, err = s.Scores.Increment(ctx, tx, req.UserID, points)
		if err != nil {
			return err
		}

		return s.UserRepo.AppendPointsHistory(ctx, tx, &model.PointsGainRecord{
			UserID:       req.UserID,
			Source:       req.Source,
			SourceID:     req.SourceID,
			PointsGained: points,
			Difficulty:   difficulty,
			Timestamp:    now,
		})
	})
	if err != nil {
		outcome := monitoring.OutcomeFailed
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrValidation) {
			outcome = monitoring.OutcomeRejected
		} else {
			logger.Log.Error("award points failed",
				zap.Uint("userId", req.UserID), zap.String("source", req.Source),
				zap.String("sourceId", req.SourceID), zap.Error(err))
		}
		monitoring.AwardOutcomes.WithLabelValues(req.Source, outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !granted {
		monitoring.AwardOutcomes.WithLabelValues(req.Source, monitoring.OutcomeAlreadyAttempted).Inc()
		span.SetAttributes(attribute.Bool("award.first_attempt", false))
		result := &AwardResult{
			IsFirstAttempt: false,
			Message:        fmt.Sprintf("Points already awarded for this %s", sourceLabel(req.Source)),
		}
		if score, err := s.Scores.GetScore(ctx, req.UserID); err == nil {
			result.TotalPoints = score
		}
		return result, nil
	}

	result := &AwardResult{
		PointsGained:   points,
		TotalPoints:    total,
		IsFirstAttempt: true,
		Message:        fmt.Sprintf("Earned %d points for this %s!", points, sourceLabel(req.Source)),
	}

	levels, err := s.Levels.GetActiveLevels(ctx)
	if err != nil {
		logger.Log.Warn("level lookup failed after award", zap.Uint("userId", req.UserID), zap.Error(err))
	}
	before := ResolveLevel(levels, previous)
	after := ResolveLevel(levels, total)
	if after.Level > before.Level {
		result.LevelUp = true
		result.NewLevel = &after
		monitoring.LevelUpsTotal.Inc()
	}

	// 积分已提交，连续天数更新失败只记录日志
	if streak, err := s.Streaks.UpdateStreak(ctx, req.UserID); err != nil {
		logger.Log.Warn("streak update failed", zap.Uint("userId", req.UserID), zap.Error(err))
	} else {
		result.DayStreak = streak
	}

	monitoring.AwardOutcomes.WithLabelValues(req.Source, monitoring.OutcomeGranted).Inc()
	monitoring.PointsAwardedTotal.WithLabelValues(req.Source).Add(float64(points))
	span.SetAttributes(
		attribute.Bool("award.first_attempt", true),
		attribute.Int("award.points", points),
		attribute.Bool("award.level_up", result.LevelUp),
	)
	logger.Log.Info("points awarded",
		zap.Uint("userId", req.UserID),
		zap.String("source", req.Source),
		zap.String("sourceId", req.SourceID),
		zap.Int("points", points),
		zap.Int("total", total),
		zap.Bool("levelUp", result.LevelUp))
	return result, nil
}

func (s *ProgressionService) AwardSectionPoints(ctx context.Context, userID uint, sectionID, difficulty string) (*AwardResult, error) {
	return s.AwardPoints(ctx, AwardRequest{
		UserID:     userID,
		Source:     model.SourceSectionRead,
		SourceID:   sectionID,
		Difficulty: difficulty,
	})
}

func (s *ProgressionService) AwardQuizPoints(ctx context.Context, userID uint, quizID, difficulty string, correctAnswers, maxScore int) (*AwardResult, error) {
	return s.AwardPoints(ctx, AwardRequest{
		UserID:         userID,
		Source:         model.SourceModuleQuiz,
		SourceID:       quizID,
		Difficulty:     difficulty,
		CorrectAnswers: correctAnswers,
		MaxScore:       maxScore,
	})
}

func (s *ProgressionService) AwardFinalQuizPoints(ctx context.Context, userID uint, finalQuizID, difficulty string, correctAnswers, maxScore int) (*AwardResult, error) {
	return s.AwardPoints(ctx, AwardRequest{
		UserID:         userID,
		Source:         model.SourceFinalQuiz,
		SourceID:       finalQuizID,
		Difficulty:     difficulty,
		CorrectAnswers: correctAnswers,
		MaxScore:       maxScore,
	})
}

func (s *ProgressionService) GetUserProgression(ctx context.Context, userID uint) (*UserProgression, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressionService.GetUserProgression",
		trace.WithAttributes(attribute.Int64("user.id", int64(userID))))
	defer span.End()

	user, err := s.UserRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	points, err := s.Scores.GetScore(ctx, userID)
	if err != nil {
		return nil, err
	}
	levels, err := s.Levels.GetActiveLevels(ctx)
	if err != nil {
		return nil, err
	}
	rank, err := s.Leaderboard.GetRank(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.UserRepo.GetPointsHistory(ctx, userID, progressionHistoryLimit)
	if err != nil {
		return nil, err
	}

	current := ResolveLevel(levels, points)
	p := &UserProgression{
		Points:             points,
		Level:              current.Level,
		LevelTitle:         current.Title,
		PointsForNextLevel: PointsForNextLevel(levels, points),
		Rank:               rank,
		DayStreak:          user.DayStreak,
		PointsHistory:      history,
	}
	if next, ok := NextLevel(levels, points); ok {
		p.NextLevelTitle = next.Title
	}
	return p, nil
}

// GetAttemptStatus 只读查询，不会标记作答
func (s *ProgressionService) GetAttemptStatus(ctx context.Context, userID uint, source, sourceID string) (*AttemptStatus, error) {
	if !model.IsValidSource(source) {
		return nil, validationError("unknown source %q", source)
	}
	if strings.TrimSpace(sourceID) == "" {
		return nil, validationError("sourceId is required")
	}
	return &AttemptStatus{
		Source:         source,
		SourceID:       sourceID,
		IsFirstAttempt: s.LedgerRepo.IsFirstAttempt(ctx, userID, source, sourceID),
	}, nil
}

func (s *ProgressionService) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	return s.Leaderboard.GetLeaderboard(ctx, limit)
}

// GetPointsHistory 按时间倒序分页返回积分流水，page 从 1 开始
func (s *ProgressionService) GetPointsHistory(ctx context.Context, userID uint, page, limit int) ([]model.PointsGainRecord, int64, error) {
	if page < 1 {
		return nil, 0, validationError("page must be >= 1")
	}
	if limit < 1 {
		return nil, 0, validationError("limit must be >= 1")
	}
	if _, err := s.UserRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrUserNotFound
		}
		return nil, 0, err
	}
	return s.UserRepo.PagePointsHistory(ctx, userID, (page-1)*limit, limit)
}
