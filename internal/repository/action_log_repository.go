package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/model"
)

type ActionLogRepository interface {
	Create(ctx context.Context, log *model.ActionLog) error
	ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]model.ActionLog, error)
	List(ctx context.Context, limit, offset int) ([]model.ActionLog, error)
	// NullifyActor detaches log entries from a deleted user, keeping the trail.
	NullifyActor(ctx context.Context, actorID uuid.UUID) error
}

type GormActionLogRepository struct {
	db *gorm.DB
}

func NewGormActionLogRepository(db *gorm.DB) *GormActionLogRepository {
	return &GormActionLogRepository{db: db}
}

func (r *GormActionLogRepository) Create(ctx context.Context, log *model.ActionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *GormActionLogRepository) ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]model.ActionLog, error) {
	var out []model.ActionLog
	q := r.db.WithContext(ctx).Where("actor_id = ?", actorID).Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormActionLogRepository) List(ctx context.Context, limit, offset int) ([]model.ActionLog, error) {
	var out []model.ActionLog
	q := r.db.WithContext(ctx).Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormActionLogRepository) NullifyActor(ctx context.Context, actorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.ActionLog{}).
		Where("actor_id = ?", actorID).
		Update("actor_id", nil).
		Error
}
