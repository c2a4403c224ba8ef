package repository

import (
	"context"
	"learning_points_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return r.FindByIDTx(ctx, nil, id)
}

func (r *UserRepository) FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.DB, tx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs 批量查询，不存在的ID直接忽略
func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Save(user).Error
}

// UpdateFields 局部更新，返回更新后的用户
func (r *UserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (*model.User, error) {
	res := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) UpdateStreak(ctx context.Context, id uint, streak int, lastActive time.Time) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"day_streak":       streak,
			"last_active_date": lastActive,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		_, err := r.FindByID(ctx, id)
		return err
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("last_login", at).Error
}

func (r *UserRepository) AppendPointsHistory(ctx context.Context, tx *gorm.DB, record *model.PointsGainRecord) error {
	return conn(ctx, r.DB, tx).Create(record).Error
}

// GetPointsHistory 按时间倒序返回积分流水，limit<=0 表示全部
func (r *UserRepository) GetPointsHistory(ctx context.Context, userID uint, limit int) ([]model.PointsGainRecord, error) {
	var records []model.PointsGainRecord
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&records).Error
	return records, err
}

// PagePointsHistory 分页查询积分流水，同时返回总条数
func (r *UserRepository) PagePointsHistory(ctx context.Context, userID uint, offset, limit int) ([]model.PointsGainRecord, int64, error) {
	var (
		records []model.PointsGainRecord
		total   int64
	)
	q := r.DB.WithContext(ctx).Model(&model.PointsGainRecord{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("timestamp DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&records).Error
	return records, total, err
}
