package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/model"
)

type LikeRepository interface {
	Create(ctx context.Context, like *model.Like) error
	// GetByProfileAndEvent returns (nil, nil) when no like exists.
	GetByProfileAndEvent(ctx context.Context, profileID, eventID uuid.UUID) (*model.Like, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Like, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]model.Like, error)
	CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
	// CountReceivedByProfile counts likes across all events owned by the profile.
	CountReceivedByProfile(ctx context.Context, profileID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormLikeRepository struct {
	db *gorm.DB
}

func NewGormLikeRepository(db *gorm.DB) *GormLikeRepository {
	return &GormLikeRepository{db: db}
}

func (r *GormLikeRepository) Create(ctx context.Context, like *model.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *GormLikeRepository) GetByProfileAndEvent(ctx context.Context, profileID, eventID uuid.UUID) (*model.Like, error) {
	var l model.Like
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND event_id = ?", profileID, eventID).
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *GormLikeRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Like, error) {
	var likes []model.Like
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}

func (r *GormLikeRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]model.Like, error) {
	var likes []model.Like
	if err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}

func (r *GormLikeRepository) CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("event_id = ?", eventID).
		Count(&n).Error
	return n, err
}

func (r *GormLikeRepository) CountReceivedByProfile(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Joins("JOIN events ON events.id = likes.event_id").
		Where("events.profile_id = ?", profileID).
		Count(&n).Error
	return n, err
}

func (r *GormLikeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Like{}, "id = ?", id).Error
}
