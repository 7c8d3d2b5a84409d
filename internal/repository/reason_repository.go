package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/model"
)

type ReasonRepository interface {
	Create(ctx context.Context, reason *model.Reason) error
	GetByID(ctx context.Context, id int64) (*model.Reason, error)
	// GetByText returns (nil, nil) when no reason carries the text.
	GetByText(ctx context.Context, text string) (*model.Reason, error)
	List(ctx context.Context) ([]model.Reason, error)
	Delete(ctx context.Context, id int64) error
}

type GormReasonRepository struct {
	db *gorm.DB
}

func NewGormReasonRepository(db *gorm.DB) *GormReasonRepository {
	return &GormReasonRepository{db: db}
}

func (r *GormReasonRepository) Create(ctx context.Context, reason *model.Reason) error {
	return r.db.WithContext(ctx).Create(reason).Error
}

func (r *GormReasonRepository) GetByID(ctx context.Context, id int64) (*model.Reason, error) {
	var out model.Reason
	if err := r.db.WithContext(ctx).First(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *GormReasonRepository) GetByText(ctx context.Context, text string) (*model.Reason, error) {
	var out model.Reason
	err := r.db.WithContext(ctx).Where("reason = ?", text).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *GormReasonRepository) List(ctx context.Context) ([]model.Reason, error) {
	var out []model.Reason
	if err := r.db.WithContext(ctx).Order("reason ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormReasonRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Reason{}, "id = ?", id).Error
}
