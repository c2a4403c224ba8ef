package service

import (
	"testing"
	"time"

	"learning_points_backend/internal/repository"
	"learning_points_backend/internal/repository/testutil"

	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	users       *repository.UserRepository
	scores      *ScoreService
	levels      *LevelConfigService
	streaks     *StreakService
	board       *LeaderboardService
	progression *ProgressionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)

	userRepo := repository.NewUserRepository(db)
	scoreRepo := repository.NewUserScoreRepository(db)
	f := &fixture{
		db:      db,
		users:   userRepo,
		scores:  NewScoreService(scoreRepo),
		levels:  NewLevelConfigService(repository.NewLevelConfigRepository(db)),
		streaks: NewStreakService(userRepo),
		board:   NewLeaderboardService(scoreRepo, userRepo, 10, 100),
	}
	f.progression = NewProgressionService(db, userRepo, repository.NewAttemptLedgerRepository(db),
		f.scores, f.levels, f.streaks, f.board, ProgressionOptions{})
	return f
}

func (f *fixture) setClock(now time.Time) {
	clock := func() time.Time { return now }
	f.streaks.now = clock
	f.progression.now = clock
}

func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool { return &v }
func floatPtr(v float64) *float64 { return &v }
