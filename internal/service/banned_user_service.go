package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/auth"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

type BannedUserService struct {
	db    *gorm.DB
	store *repository.Store
	log   *zap.Logger
}

func NewBannedUserService(db *gorm.DB, log *zap.Logger) *BannedUserService {
	return &BannedUserService{db: db, store: repository.NewStore(db), log: log}
}

// Ban puts the email on the banned list. Banning an already banned email is
// a no-op.
func (s *BannedUserService) Ban(ctx context.Context, actor *auth.Actor, email string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("admin only")
	}
	existing, err := s.store.BannedUsers.GetByEmail(ctx, email)
	if err != nil {
		return apperr.Internal("check banned list", err)
	}
	if existing != nil {
		return nil
	}

	banned := &model.BannedUser{
		BannedEmail:   email,
		BannedByEmail: actor.Email,
		BannedAt:      time.Now().UTC(),
	}
	if err := s.store.BannedUsers.Create(ctx, banned); err != nil {
		return apperr.Internal("ban email", err)
	}

	s.log.Warn("email banned",
		zap.String("email", email),
		zap.String("actor_id", actor.ID.String()),
	)
	if err := recordAction(ctx, s.store.ActionLogs, &actor.ID, model.LogLevelWarning, model.ActionUserBanned,
		"email banned", map[string]any{"email": email}); err != nil {
		s.log.Warn("action log write failed", zap.Error(err))
	}
	return nil
}

func (s *BannedUserService) Unban(ctx context.Context, actor *auth.Actor, email string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("admin only")
	}
	existing, err := s.store.BannedUsers.GetByEmail(ctx, email)
	if err != nil {
		return apperr.Internal("check banned list", err)
	}
	if existing == nil {
		return apperr.NotFound("email is not banned")
	}
	if err := s.store.BannedUsers.DeleteByEmail(ctx, email); err != nil {
		return apperr.Internal("unban email", err)
	}
	s.log.Info("email unbanned", zap.String("email", email))
	return nil
}

func (s *BannedUserService) List(ctx context.Context, actor *auth.Actor, limit, offset int) ([]model.BannedUser, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("admin only")
	}
	banned, err := s.store.BannedUsers.List(ctx, limit, offset)
	if err != nil {
		return nil, apperr.Internal("list banned emails", err)
	}
	return banned, nil
}

// IsBanned reports whether the email is on the banned list.
func (s *BannedUserService) IsBanned(ctx context.Context, email string) (bool, error) {
	existing, err := s.store.BannedUsers.GetByEmail(ctx, email)
	if err != nil {
		return false, apperr.Internal("check banned list", err)
	}
	return existing != nil, nil
}
