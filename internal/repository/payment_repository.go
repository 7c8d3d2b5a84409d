package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	// GetBySessionID returns (nil, nil) when no payment matches the session.
	GetBySessionID(ctx context.Context, sessionID string) (*model.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus, intentID string) error
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]model.Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *GormPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var p model.Payment
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Payment, error) {
	var p model.Payment
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus, intentID string) error {
	update := map[string]any{"status": status}
	if intentID != "" {
		update["payment_intent_id"] = intentID
	}
	return r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ?", id).
		Updates(update).
		Error
}

func (r *GormPaymentRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]model.Payment, error) {
	var payments []model.Payment
	q := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Payment{}, "id = ?", id).Error
}
