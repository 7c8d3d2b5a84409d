package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/auth"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

type ReasonService struct {
	db    *gorm.DB
	store *repository.Store
	log   *zap.Logger
}

func NewReasonService(db *gorm.DB, log *zap.Logger) *ReasonService {
	return &ReasonService{db: db, store: repository.NewStore(db), log: log}
}

// Create adds a signalment reason. Reason text is unique.
func (s *ReasonService) Create(ctx context.Context, actor *auth.Actor, text string) (*model.Reason, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("admin only")
	}
	existing, err := s.store.Reasons.GetByText(ctx, text)
	if err != nil {
		return nil, apperr.Internal("load reason", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("reason already exists")
	}

	reason := &model.Reason{Text: text}
	if err := s.store.Reasons.Create(ctx, reason); err != nil {
		return nil, apperr.Internal("create reason", err)
	}
	return reason, nil
}

func (s *ReasonService) List(ctx context.Context) ([]model.Reason, error) {
	reasons, err := s.store.Reasons.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list reasons", err)
	}
	return reasons, nil
}

func (s *ReasonService) Delete(ctx context.Context, actor *auth.Actor, id int64) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("admin only")
	}
	if _, err := s.store.Reasons.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("reason not found")
		}
		return apperr.Internal("load reason", err)
	}
	if err := s.store.Reasons.Delete(ctx, id); err != nil {
		return apperr.Internal("delete reason", err)
	}
	return nil
}
