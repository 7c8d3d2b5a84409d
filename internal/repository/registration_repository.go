package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/model"
)

type RegistrationRepository interface {
	Create(ctx context.Context, registration *model.Registration) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Registration, error)
	// GetByProfileAndEvent returns (nil, nil) when no registration exists.
	GetByProfileAndEvent(ctx context.Context, profileID, eventID uuid.UUID) (*model.Registration, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Registration, error)
	CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormRegistrationRepository struct {
	db *gorm.DB
}

func NewGormRegistrationRepository(db *gorm.DB) *GormRegistrationRepository {
	return &GormRegistrationRepository{db: db}
}

func (r *GormRegistrationRepository) Create(ctx context.Context, registration *model.Registration) error {
	return r.db.WithContext(ctx).Create(registration).Error
}

func (r *GormRegistrationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Registration, error) {
	var reg model.Registration
	if err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *GormRegistrationRepository) GetByProfileAndEvent(ctx context.Context, profileID, eventID uuid.UUID) (*model.Registration, error) {
	var reg model.Registration
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND event_id = ?", profileID, eventID).
		First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *GormRegistrationRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Registration, error) {
	var regs []model.Registration
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("registered_at ASC").
		Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *GormRegistrationRepository) CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Registration{}).
		Where("event_id = ?", eventID).
		Count(&n).Error
	return n, err
}

func (r *GormRegistrationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Registration{}).
		Where("id = ?", id).
		Update("payment_status", status).
		Error
}

func (r *GormRegistrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Registration{}, "id = ?", id).Error
}
