package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/auth"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

// SignalService files and updates signalments. Consuming them (dismiss/ban)
// belongs to ModerationService.
type SignalService struct {
	db    *gorm.DB
	store *repository.Store
	log   *zap.Logger
}

func NewSignalService(db *gorm.DB, log *zap.Logger) *SignalService {
	return &SignalService{db: db, store: repository.NewStore(db), log: log}
}

func (s *SignalService) resolveReason(ctx context.Context, reasonID int64) error {
	if _, err := s.store.Reasons.GetByID(ctx, reasonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("reason not found")
		}
		return apperr.Internal("load reason", err)
	}
	return nil
}

// SignalUser reports a user. Accounts holding a moderation role cannot be
// reported.
func (s *SignalService) SignalUser(ctx context.Context, reporter *auth.Actor, targetID uuid.UUID, reasonID int64) (*model.SignaledUser, error) {
	target, err := resolveUser(ctx, s.store, targetID)
	if err != nil {
		return nil, err
	}
	role, err := s.store.Roles.GetByID(ctx, target.RoleID)
	if err != nil {
		return nil, apperr.Internal("load role", err)
	}
	if model.IsAdminRole(role.Name) {
		return nil, apperr.Forbidden("administrators cannot be signaled")
	}
	if err := s.resolveReason(ctx, reasonID); err != nil {
		return nil, err
	}

	signal := &model.SignaledUser{
		UserID:     target.ID,
		ReporterID: reporter.ID,
		ReasonID:   reasonID,
		Status:     model.SignalStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.SignaledUsers.Create(ctx, signal); err != nil {
		return nil, apperr.Internal("create signalment", err)
	}
	s.log.Info("user signaled",
		zap.String("target_id", target.ID.String()),
		zap.String("reporter_id", reporter.ID.String()),
	)
	return signal, nil
}

func (s *SignalService) SignalComment(ctx context.Context, reporter *auth.Actor, commentID uuid.UUID, reasonID int64) (*model.SignaledComment, error) {
	comment, err := resolveComment(ctx, s.store, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.resolveReason(ctx, reasonID); err != nil {
		return nil, err
	}

	signal := &model.SignaledComment{
		CommentID:  comment.ID,
		ReporterID: reporter.ID,
		ReasonID:   reasonID,
		Status:     model.SignalStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.SignaledComments.Create(ctx, signal); err != nil {
		return nil, apperr.Internal("create signalment", err)
	}
	s.log.Info("comment signaled",
		zap.String("comment_id", comment.ID.String()),
		zap.String("reporter_id", reporter.ID.String()),
	)
	return signal, nil
}

func (s *SignalService) SignalEvent(ctx context.Context, reporter *auth.Actor, eventID uuid.UUID, reasonID int64) (*model.SignaledEvent, error) {
	event, err := resolveEvent(ctx, s.store, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.resolveReason(ctx, reasonID); err != nil {
		return nil, err
	}

	signal := &model.SignaledEvent{
		EventID:    event.ID,
		ReporterID: reporter.ID,
		ReasonID:   reasonID,
		Status:     model.SignalStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.SignaledEvents.Create(ctx, signal); err != nil {
		return nil, apperr.Internal("create signalment", err)
	}
	s.log.Info("event signaled",
		zap.String("event_id", event.ID.String()),
		zap.String("reporter_id", reporter.ID.String()),
	)
	return signal, nil
}

// UpdateUserSignalStatus sets an admin-chosen status string on a pending
// signalment.
func (s *SignalService) UpdateUserSignalStatus(ctx context.Context, actor *auth.Actor, signalID uuid.UUID, status string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("admin only")
	}
	if _, err := s.store.SignaledUsers.GetByID(ctx, signalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("signalment not found")
		}
		return apperr.Internal("load signalment", err)
	}
	if err := s.store.SignaledUsers.UpdateStatus(ctx, signalID, status); err != nil {
		return apperr.Internal("update signalment status", err)
	}
	return nil
}

func (s *SignalService) UpdateCommentSignalStatus(ctx context.Context, actor *auth.Actor, signalID uuid.UUID, status string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("admin only")
	}
	if _, err := s.store.SignaledComments.GetByID(ctx, signalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("signalment not found")
		}
		return apperr.Internal("load signalment", err)
	}
	if err := s.store.SignaledComments.UpdateStatus(ctx, signalID, status); err != nil {
		return apperr.Internal("update signalment status", err)
	}
	return nil
}

func (s *SignalService) UpdateEventSignalStatus(ctx context.Context, actor *auth.Actor, signalID uuid.UUID, status string) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("admin only")
	}
	if _, err := s.store.SignaledEvents.GetByID(ctx, signalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("signalment not found")
		}
		return apperr.Internal("load signalment", err)
	}
	if err := s.store.SignaledEvents.UpdateStatus(ctx, signalID, status); err != nil {
		return apperr.Internal("update signalment status", err)
	}
	return nil
}
