package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/model"
)

type SignaledUserRepository interface {
	Create(ctx context.Context, s *model.SignaledUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SignaledUser, error)
	ListByTarget(ctx context.Context, userID uuid.UUID) ([]model.SignaledUser, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]model.SignaledUser, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormSignaledUserRepository struct {
	db *gorm.DB
}

func NewGormSignaledUserRepository(db *gorm.DB) *GormSignaledUserRepository {
	return &GormSignaledUserRepository{db: db}
}

func (r *GormSignaledUserRepository) Create(ctx context.Context, s *model.SignaledUser) error {
	return r.db.WithContext(ctx).Omit("Reason").Create(s).Error
}

func (r *GormSignaledUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SignaledUser, error) {
	var s model.SignaledUser
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSignaledUserRepository) ListByTarget(ctx context.Context, userID uuid.UUID) ([]model.SignaledUser, error) {
	var out []model.SignaledUser
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormSignaledUserRepository) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]model.SignaledUser, error) {
	var out []model.SignaledUser
	if err := r.db.WithContext(ctx).Where("reporter_id = ?", reporterID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormSignaledUserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.SignaledUser{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

func (r *GormSignaledUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SignaledUser{}, "id = ?", id).Error
}

type SignaledCommentRepository interface {
	Create(ctx context.Context, s *model.SignaledComment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SignaledComment, error)
	ListByComment(ctx context.Context, commentID uuid.UUID) ([]model.SignaledComment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByComment(ctx context.Context, commentID uuid.UUID) error
}

type GormSignaledCommentRepository struct {
	db *gorm.DB
}

func NewGormSignaledCommentRepository(db *gorm.DB) *GormSignaledCommentRepository {
	return &GormSignaledCommentRepository{db: db}
}

func (r *GormSignaledCommentRepository) Create(ctx context.Context, s *model.SignaledComment) error {
	return r.db.WithContext(ctx).Omit("Reason").Create(s).Error
}

func (r *GormSignaledCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SignaledComment, error) {
	var s model.SignaledComment
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSignaledCommentRepository) ListByComment(ctx context.Context, commentID uuid.UUID) ([]model.SignaledComment, error) {
	var out []model.SignaledComment
	if err := r.db.WithContext(ctx).Where("comment_id = ?", commentID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormSignaledCommentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.SignaledComment{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

func (r *GormSignaledCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SignaledComment{}, "id = ?", id).Error
}

func (r *GormSignaledCommentRepository) DeleteByComment(ctx context.Context, commentID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SignaledComment{}, "comment_id = ?", commentID).Error
}

type SignaledEventRepository interface {
	Create(ctx context.Context, s *model.SignaledEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SignaledEvent, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.SignaledEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByEvent(ctx context.Context, eventID uuid.UUID) error
}

type GormSignaledEventRepository struct {
	db *gorm.DB
}

func NewGormSignaledEventRepository(db *gorm.DB) *GormSignaledEventRepository {
	return &GormSignaledEventRepository{db: db}
}

func (r *GormSignaledEventRepository) Create(ctx context.Context, s *model.SignaledEvent) error {
	return r.db.WithContext(ctx).Omit("Reason").Create(s).Error
}

func (r *GormSignaledEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SignaledEvent, error) {
	var s model.SignaledEvent
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSignaledEventRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.SignaledEvent, error) {
	var out []model.SignaledEvent
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormSignaledEventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.SignaledEvent{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

func (r *GormSignaledEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SignaledEvent{}, "id = ?", id).Error
}

func (r *GormSignaledEventRepository) DeleteByEvent(ctx context.Context, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.SignaledEvent{}, "event_id = ?", eventID).Error
}
