package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"learning_points_backend/internal/model"
)

func TestScoreService_AddRequiresRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.scores.AddScore(ctx, 1, 5); !errors.Is(err, ErrScoreNotFound) {
		t.Fatalf("err = %v, want ErrScoreNotFound", err)
	}
	if _, err := f.scores.GetScore(ctx, 1); err != nil {
		t.Fatalf("GetScore: %v", err)
	}
	got, err := f.scores.AddScore(ctx, 1, 5)
	if err != nil || got != 5 {
		t.Fatalf("AddScore = %d, %v", got, err)
	}
	if _, err := f.scores.AddScore(ctx, 1, -1); !errors.Is(err, ErrValidation) {
		t.Errorf("negative delta err = %v", err)
	}
}

func TestScoreService_Increment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prev, cur, err := f.scores.Increment(ctx, nil, 2, 7)
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if prev != 0 || cur != 7 {
		t.Fatalf("Increment = (%d, %d), want (0, 7)", prev, cur)
	}
	prev, cur, err = f.scores.Increment(ctx, nil, 2, 3)
	if err != nil || prev != 7 || cur != 10 {
		t.Fatalf("Increment = (%d, %d, %v)", prev, cur, err)
	}
}

func TestScoreService_AdminOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.scores.SetScore(ctx, 3, 42)
	if err != nil || rec.Score != 42 {
		t.Fatalf("SetScore = %+v, %v", rec, err)
	}
	if _, err := f.scores.SetScore(ctx, 3, -1); !errors.Is(err, ErrValidation) {
		t.Errorf("negative score err = %v", err)
	}
	if _, err := f.scores.SetScore(ctx, 4, 8); err != nil {
		t.Fatalf("SetScore: %v", err)
	}

	n, err := f.scores.ResetAll(ctx)
	if err != nil || n != 2 {
		t.Fatalf("ResetAll = %d, %v", n, err)
	}
	list, _ := f.scores.ListScores(ctx)
	for _, s := range list {
		if s.Score != 0 {
			t.Errorf("user %d score = %d", s.UserID, s.Score)
		}
	}

	if err := f.scores.DeleteScore(ctx, 3); err != nil {
		t.Fatalf("DeleteScore: %v", err)
	}
	if err := f.scores.DeleteScore(ctx, 3); !errors.Is(err, ErrScoreNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestScoreService_RejectsOverflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.scores.SetScore(ctx, 5, model.MaxTotalScore-2); err != nil {
		t.Fatalf("SetScore: %v", err)
	}
	if _, err := f.scores.SetScore(ctx, 5, model.MaxTotalScore+1); !errors.Is(err, ErrValidation) {
		t.Errorf("SetScore above max err = %v", err)
	}

	if _, _, err := f.scores.Increment(ctx, nil, 5, 3); !errors.Is(err, ErrValidation) {
		t.Errorf("Increment past max err = %v", err)
	}
	if _, err := f.scores.AddScore(ctx, 5, math.MaxInt); !errors.Is(err, ErrValidation) {
		t.Errorf("AddScore MaxInt err = %v", err)
	}
	if _, _, err := f.scores.Increment(ctx, nil, 5, -1); !errors.Is(err, ErrValidation) {
		t.Errorf("negative Increment err = %v", err)
	}

	got, err := f.scores.AddScore(ctx, 5, 2)
	if err != nil || got != model.MaxTotalScore {
		t.Fatalf("AddScore to max = %d, %v", got, err)
	}
	if got, _ := f.scores.GetScore(ctx, 5); got != model.MaxTotalScore {
		t.Errorf("score = %d, want %d", got, model.MaxTotalScore)
	}
}
