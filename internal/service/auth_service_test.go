package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"learning_points_backend/internal/config"
	"learning_points_backend/internal/model"
	"learning_points_backend/internal/util"
)

func newAuthService(f *fixture) *AuthService {
	return NewAuthService(f.users, &config.Config{
		JWT: config.JWTConfig{Secret: "auth-service-test-secret-32-chars!!", ExpireTime: time.Hour},
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuthService(f)

	user, err := auth.Register(ctx, RegisterRequest{Email: "Tom@Example.com", Password: "old-secret"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := auth.ChangePassword(ctx, user.ID, "wrong-one", "new-secret-1"); !errors.Is(err, util.ErrWrongPassword) {
		t.Fatalf("wrong current err = %v", err)
	}
	if err := auth.ChangePassword(ctx, user.ID, "old-secret", "short"); !errors.Is(err, ErrValidation) {
		t.Fatalf("short password err = %v", err)
	}
	if err := auth.ChangePassword(ctx, 999, "old-secret", "new-secret-1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user err = %v", err)
	}
	if err := auth.ChangePassword(ctx, user.ID, "old-secret", "new-secret-1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, _, err := auth.Login(ctx, "tom@example.com", "old-secret"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("old password login err = %v", err)
	}
	token, _, err := auth.Login(ctx, "tom@example.com", "new-secret-1")
	if err != nil || token == "" {
		t.Fatalf("new password login: %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := newAuthService(f)

	user, err := auth.Register(ctx, RegisterRequest{Email: "uma@example.com", Password: "secret-123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Name != "uma" || user.Username != "uma" {
		t.Fatalf("defaults = %+v", user)
	}

	invalid := []ProfileRequest{
		{Name: strPtr("  ")},
		{Gender: strPtr("Other")},
		{Birthdate: strPtr("01/02/2000")},
	}
	for i, req := range invalid {
		if _, err := auth.UpdateProfile(ctx, user.ID, req); !errors.Is(err, ErrValidation) {
			t.Errorf("invalid %d: err = %v", i, err)
		}
	}

	updated, err := auth.UpdateProfile(ctx, user.ID, ProfileRequest{
		Name:                  strPtr("Uma Thurman"),
		Gender:                strPtr(model.GenderFemale),
		Birthdate:             strPtr("2000-02-01"),
		SocializationLocation: strPtr(" Jakarta "),
		PhoneNumber:           strPtr("0812"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Uma Thurman" || updated.Gender != model.GenderFemale ||
		updated.Birthdate != "2000-02-01" || updated.Location != "Jakarta" || updated.PhoneNumber != "0812" {
		t.Fatalf("updated = %+v", updated)
	}
	if updated.Username != "uma" || updated.Email != "uma@example.com" {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	if _, err := auth.UpdateProfile(ctx, 999, ProfileRequest{}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user err = %v", err)
	}
}
