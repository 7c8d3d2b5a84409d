package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/model"
)

type BannedUserRepository interface {
	Create(ctx context.Context, b *model.BannedUser) error
	// GetByEmail returns (nil, nil) when the email is not banned.
	GetByEmail(ctx context.Context, email string) (*model.BannedUser, error)
	List(ctx context.Context, limit, offset int) ([]model.BannedUser, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type GormBannedUserRepository struct {
	db *gorm.DB
}

func NewGormBannedUserRepository(db *gorm.DB) *GormBannedUserRepository {
	return &GormBannedUserRepository{db: db}
}

func (r *GormBannedUserRepository) Create(ctx context.Context, b *model.BannedUser) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *GormBannedUserRepository) GetByEmail(ctx context.Context, email string) (*model.BannedUser, error) {
	var b model.BannedUser
	err := r.db.WithContext(ctx).Where("banned_email = ?", email).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBannedUserRepository) List(ctx context.Context, limit, offset int) ([]model.BannedUser, error) {
	var out []model.BannedUser
	q := r.db.WithContext(ctx).Order("banned_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormBannedUserRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Delete(&model.BannedUser{}, "banned_email = ?", email).Error
}
