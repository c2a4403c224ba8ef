package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"learning_points_backend/internal/config"
	"learning_points_backend/internal/model"
	"learning_points_backend/internal/repository"
	"learning_points_backend/internal/util"
	"learning_points_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, util.ErrMissingRegisterInfo
	}

	_, err := s.UserRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Username: req.Username,
		Email:    email,
		Password: string(hashedPassword),
		Role:     model.Student,
	}
	if user.Username == "" {
		user.Username = strings.Split(email, "@")[0]
	}
	if user.Name == "" {
		user.Name = user.Username
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Log.Info("user registered", zap.Uint("userId", user.ID))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	if err := s.UserRepo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		logger.Log.Warn("update last login failed", zap.Uint("userId", user.ID), zap.Error(err))
	}
	return token, user, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// minPasswordLength 修改密码时新密码的最小长度
const minPasswordLength = 8

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < minPasswordLength {
		return validationError("newPassword must be at least %d characters", minPasswordLength)
	}

	user, err := s.UserRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return util.ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := s.UserRepo.UpdateFields(ctx, userID, map[string]interface{}{"password": string(hashed)}); err != nil {
		return err
	}
	logger.Log.Info("password changed", zap.Uint("userId", userID))
	return nil
}

// ProfileRequest 为空的字段保持不变
type ProfileRequest struct {
	Name                  *string `json:"name"`
	Username              *string `json:"username"`
	Gender                *string `json:"gender"`
	Birthplace            *string `json:"birthplace"`
	Birthdate             *string `json:"birthdate"`
	SocializationLocation *string `json:"socializationLocation"`
	PhoneNumber           *string `json:"phoneNumber"`
}

func profileFields(req ProfileRequest) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("name must not be empty")
		}
		fields["name"] = name
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, validationError("username must not be empty")
		}
		fields["username"] = username
	}
	if req.Gender != nil {
		switch *req.Gender {
		case model.GenderMale, model.GenderFemale:
			fields["gender"] = *req.Gender
		default:
			return nil, validationError("gender must be %s or %s", model.GenderMale, model.GenderFemale)
		}
	}
	if req.Birthdate != nil {
		if _, err := time.Parse(util.DateFormat, *req.Birthdate); err != nil {
			return nil, validationError("birthdate must use format %s", util.DateFormat)
		}
		fields["birthdate"] = *req.Birthdate
	}
	if req.Birthplace != nil {
		fields["birthplace"] = strings.TrimSpace(*req.Birthplace)
	}
	if req.SocializationLocation != nil {
		fields["location"] = strings.TrimSpace(*req.SocializationLocation)
	}
	if req.PhoneNumber != nil {
		fields["phone_number"] = strings.TrimSpace(*req.PhoneNumber)
	}
	return fields, nil
}

// UpdateProfile 局部更新个人资料，邮箱、角色和密码不可在此修改
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, req ProfileRequest) (*model.User, error) {
	fields, err := profileFields(req)
	if err != nil {
		return nil, err
	}

	user, err := s.UserRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return user, nil
	}
	return s.UserRepo.UpdateFields(ctx, userID, fields)
}
