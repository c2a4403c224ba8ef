package service

import (
	"testing"

	"learning_points_backend/internal/model"
)

func TestResolveLevel_DefaultThresholds(t *testing.T) {
	levels := model.DefaultLevels

	tests := []struct {
		points    int
		wantLevel int
		wantNext  int
	}{
		{0, 1, 50},
		{49, 1, 1},
		{149, 2, 1},
		{150, 3, 150},
		{2249, 9, 1},
		{2250, 10, 0},
		{99999, 10, 0},
	}
	for _, tt := range tests {
		got := ResolveLevel(levels, tt.points)
		if got.Level != tt.wantLevel {
			t.Errorf("ResolveLevel(%d) = %d, want %d", tt.points, got.Level, tt.wantLevel)
		}
		if n := PointsForNextLevel(levels, tt.points); n != tt.wantNext {
			t.Errorf("PointsForNextLevel(%d) = %d, want %d", tt.points, n, tt.wantNext)
		}
	}
}

func TestResolveLevel_EmptyConfiguration(t *testing.T) {
	got := ResolveLevel(nil, 500)
	if got != model.BeginnerLevel {
		t.Fatalf("got %+v, want %+v", got, model.BeginnerLevel)
	}
	if n := PointsForNextLevel(nil, 500); n != 0 {
		t.Fatalf("PointsForNextLevel = %d, want 0", n)
	}
}

func TestResolveLevel_IgnoresOrdering(t *testing.T) {
	// 等级号与门槛分数顺序不一致时，仍按门槛分数取最高
	levels := []model.LevelThreshold{
		{Level: 3, MinPoints: 100, Title: "C"},
		{Level: 1, MinPoints: 10, Title: "A"},
		{Level: 2, MinPoints: 200, Title: "B"},
	}

	if got := ResolveLevel(levels, 150); got.Title != "C" {
		t.Errorf("150 -> %q, want C", got.Title)
	}
	if got := ResolveLevel(levels, 5); got.Level != 1 {
		t.Errorf("below every threshold -> level %d, want lowest level 1", got.Level)
	}
	next, ok := NextLevel(levels, 150)
	if !ok || next.Title != "B" {
		t.Errorf("NextLevel(150) = %+v, %v", next, ok)
	}
}

func TestResolveLevel_TieOnMinPointsPrefersHigherLevel(t *testing.T) {
	levels := []model.LevelThreshold{
		{Level: 1, MinPoints: 0, Title: "A"},
		{Level: 2, MinPoints: 0, Title: "B"},
	}
	if got := ResolveLevel(levels, 0); got.Level != 2 {
		t.Fatalf("got level %d, want 2", got.Level)
	}
}
