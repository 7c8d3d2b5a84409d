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

// ModerationService owns the delete/ban cascades. Every public entry point
// authorizes first and then runs the full cascade in one transaction, so a
// denied caller leaves no trace and a failed step rolls everything back.
type ModerationService struct {
	db    *gorm.DB
	store *repository.Store
	log   *zap.Logger
}

func NewModerationService(db *gorm.DB, log *zap.Logger) *ModerationService {
	return &ModerationService{db: db, store: repository.NewStore(db), log: log}
}

// ownsProfile reports whether the actor's profile is the given one.
func (s *ModerationService) ownsProfile(ctx context.Context, actor *auth.Actor, profileID uuid.UUID) (bool, error) {
	profile, err := s.store.Profiles.GetByUserID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperr.Internal("load actor profile", err)
	}
	return profile.ID == profileID, nil
}

func (s *ModerationService) authorizeOwnerOrAdmin(ctx context.Context, actor *auth.Actor, ownerProfileID uuid.UUID) error {
	if actor.IsAdmin() {
		return nil
	}
	owns, err := s.ownsProfile(ctx, actor, ownerProfileID)
	if err != nil {
		return err
	}
	if !owns {
		return apperr.Forbidden("not allowed")
	}
	return nil
}

// DeleteComment removes a comment, its signalments and its counter
// contribution.
func (s *ModerationService) DeleteComment(ctx context.Context, actor *auth.Actor, commentID uuid.UUID) error {
	comment, err := resolveComment(ctx, s.store, commentID)
	if err != nil {
		return err
	}
	if err := s.authorizeOwnerOrAdmin(ctx, actor, comment.ProfileID); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		if err := deleteCommentTx(ctx, st, comment); err != nil {
			return err
		}
		return recordAction(ctx, st.ActionLogs, &actor.ID, model.LogLevelInfo, model.ActionCommentDeleted,
			"comment deleted",
			map[string]any{"comment_id": comment.ID.String(), "event_id": comment.EventID.String()})
	})
	if err != nil {
		return err
	}

	s.log.Info("comment deleted",
		zap.String("comment_id", commentID.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}

// DeleteEvent removes an event and everything hanging off it.
func (s *ModerationService) DeleteEvent(ctx context.Context, actor *auth.Actor, eventID uuid.UUID) error {
	event, err := resolveEvent(ctx, s.store, eventID)
	if err != nil {
		return err
	}
	if err := s.authorizeOwnerOrAdmin(ctx, actor, event.ProfileID); err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		if err := deleteEventTx(ctx, st, event); err != nil {
			return err
		}
		return recordAction(ctx, st.ActionLogs, &actor.ID, model.LogLevelInfo, model.ActionEventDeleted,
			"event deleted",
			map[string]any{"event_id": event.ID.String(), "title": event.Title})
	})
	if err != nil {
		return err
	}

	s.log.Info("event deleted",
		zap.String("event_id", eventID.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}

// DeleteUser removes a user account with the full cascade: signalments
// by or about them, their events, their comments, their likes, and finally
// the account and its profile.
func (s *ModerationService) DeleteUser(ctx context.Context, actor *auth.Actor, userID uuid.UUID) error {
	user, err := resolveUser(ctx, s.store, userID)
	if err != nil {
		return err
	}
	if actor.ID != user.ID && !actor.IsAdmin() {
		return apperr.Forbidden("not allowed")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		if err := deleteUserTx(ctx, st, user); err != nil {
			return err
		}
		actorID := &actor.ID
		if actor.ID == user.ID {
			actorID = nil
		}
		return recordAction(ctx, st.ActionLogs, actorID, model.LogLevelInfo, model.ActionUserDeleted,
			"user deleted",
			map[string]any{"email": user.Email})
	})
	if err != nil {
		return err
	}

	s.log.Info("user deleted",
		zap.String("user_id", userID.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}

// DeleteSignaledComment consumes a comment signalment. With ban the reported
// comment is cascaded away too.
func (s *ModerationService) DeleteSignaledComment(ctx context.Context, actor *auth.Actor, signalID uuid.UUID, ban bool) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("admin only")
	}
	signal, err := s.store.SignaledComments.GetByID(ctx, signalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("signalment not found")
		}
		return apperr.Internal("load signalment", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		if err := st.SignaledComments.Delete(ctx, signal.ID); err != nil {
			return apperr.Internal("delete signalment", err)
		}
		if ban {
			comment, err := st.Comments.GetByID(ctx, signal.CommentID)
			if err == nil {
				if err := deleteCommentTx(ctx, st, comment); err != nil {
					return err
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Internal("load comment", err)
			}
		}
		return recordAction(ctx, st.ActionLogs, &actor.ID, signalLevel(ban), signalAction(ban),
			"comment signalment resolved",
			map[string]any{"signal_id": signal.ID.String(), "comment_id": signal.CommentID.String(), "ban": ban})
	})
	if err != nil {
		return err
	}

	s.logSignalOutcome(ban, "comment signalment resolved",
		zap.String("signal_id", signalID.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}

// DeleteSignaledEvent consumes an event signalment, cascading the event when
// banning.
func (s *ModerationService) DeleteSignaledEvent(ctx context.Context, actor *auth.Actor, signalID uuid.UUID, ban bool) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("admin only")
	}
	signal, err := s.store.SignaledEvents.GetByID(ctx, signalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("signalment not found")
		}
		return apperr.Internal("load signalment", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		if err := st.SignaledEvents.Delete(ctx, signal.ID); err != nil {
			return apperr.Internal("delete signalment", err)
		}
		if ban {
			event, err := st.Events.GetByID(ctx, signal.EventID)
			if err == nil {
				if err := deleteEventTx(ctx, st, event); err != nil {
					return err
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Internal("load event", err)
			}
		}
		return recordAction(ctx, st.ActionLogs, &actor.ID, signalLevel(ban), signalAction(ban),
			"event signalment resolved",
			map[string]any{"signal_id": signal.ID.String(), "event_id": signal.EventID.String(), "ban": ban})
	})
	if err != nil {
		return err
	}

	s.logSignalOutcome(ban, "event signalment resolved",
		zap.String("signal_id", signalID.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}

// DeleteSignaledUser consumes a user signalment. With ban the target's email
// goes on the banned list before the account cascade, so the ban survives
// the deletion.
func (s *ModerationService) DeleteSignaledUser(ctx context.Context, actor *auth.Actor, signalID uuid.UUID, ban bool) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("admin only")
	}
	signal, err := s.store.SignaledUsers.GetByID(ctx, signalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("signalment not found")
		}
		return apperr.Internal("load signalment", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		if err := st.SignaledUsers.Delete(ctx, signal.ID); err != nil {
			return apperr.Internal("delete signalment", err)
		}
		if ban {
			target, err := st.Users.GetByID(ctx, signal.UserID)
			if err == nil {
				existing, err := st.BannedUsers.GetByEmail(ctx, target.Email)
				if err != nil {
					return apperr.Internal("check banned list", err)
				}
				if existing == nil {
					banned := &model.BannedUser{
						BannedEmail:   target.Email,
						BannedByEmail: actor.Email,
						BannedAt:      time.Now().UTC(),
					}
					if err := st.BannedUsers.Create(ctx, banned); err != nil {
						return apperr.Internal("ban email", err)
					}
				}
				if err := recordAction(ctx, st.ActionLogs, &actor.ID, model.LogLevelWarning, model.ActionUserBanned,
					"user banned",
					map[string]any{"email": target.Email}); err != nil {
					return err
				}
				if err := deleteUserTx(ctx, st, target); err != nil {
					return err
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Internal("load user", err)
			}
		}
		return recordAction(ctx, st.ActionLogs, &actor.ID, signalLevel(ban), signalAction(ban),
			"user signalment resolved",
			map[string]any{"signal_id": signal.ID.String(), "user_id": signal.UserID.String(), "ban": ban})
	})
	if err != nil {
		return err
	}

	s.logSignalOutcome(ban, "user signalment resolved",
		zap.String("signal_id", signalID.String()),
		zap.String("actor_id", actor.ID.String()),
	)
	return nil
}

func (s *ModerationService) logSignalOutcome(ban bool, msg string, fields ...zap.Field) {
	if ban {
		s.log.Warn(msg, append(fields, zap.Bool("ban", true))...)
		return
	}
	s.log.Info(msg, append(fields, zap.Bool("ban", false))...)
}

func signalLevel(ban bool) model.LogLevel {
	if ban {
		return model.LogLevelWarning
	}
	return model.LogLevelInfo
}

func signalAction(ban bool) model.ActionType {
	if ban {
		return model.ActionSignalBanned
	}
	return model.ActionSignalDismissed
}

// deleteCommentTx removes one comment inside an open transaction. The event
// counter is only touched while the event still exists.
func deleteCommentTx(ctx context.Context, st *repository.Store, comment *model.Comment) error {
	if err := st.SignaledComments.DeleteByComment(ctx, comment.ID); err != nil {
		return apperr.Internal("delete comment signalments", err)
	}
	_, err := st.Events.GetByID(ctx, comment.EventID)
	switch {
	case err == nil:
		if err := st.Events.AddCommentCount(ctx, comment.EventID, -1); err != nil {
			return apperr.Internal("decrement comment count", err)
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Internal("load event", err)
	}
	if err := st.Comments.Delete(ctx, comment.ID); err != nil {
		return apperr.Internal("delete comment", err)
	}
	return nil
}

// deleteEventTx removes one event inside an open transaction: comments,
// likes, registrations, signalments, pictures, type links, the event row and
// its owned address, in that order.
func deleteEventTx(ctx context.Context, st *repository.Store, event *model.Event) error {
	comments, err := st.Comments.ListByEvent(ctx, event.ID)
	if err != nil {
		return apperr.Internal("list comments", err)
	}
	for i := range comments {
		if err := deleteCommentTx(ctx, st, &comments[i]); err != nil {
			return err
		}
	}

	likes, err := st.Likes.ListByEvent(ctx, event.ID)
	if err != nil {
		return apperr.Internal("list likes", err)
	}
	for i := range likes {
		if err := st.Profiles.AddLikeCount(ctx, event.ProfileID, -1); err != nil {
			return apperr.Internal("decrement profile likes", err)
		}
		if err := st.Likes.Delete(ctx, likes[i].ID); err != nil {
			return apperr.Internal("delete like", err)
		}
	}

	registrations, err := st.Registrations.ListByEvent(ctx, event.ID)
	if err != nil {
		return apperr.Internal("list registrations", err)
	}
	for i := range registrations {
		if err := st.Registrations.Delete(ctx, registrations[i].ID); err != nil {
			return apperr.Internal("delete registration", err)
		}
	}

	if err := st.SignaledEvents.DeleteByEvent(ctx, event.ID); err != nil {
		return apperr.Internal("delete event signalments", err)
	}
	if err := st.Events.DeletePictures(ctx, event.ID); err != nil {
		return apperr.Internal("delete event pictures", err)
	}
	if err := st.Events.ClearTypes(ctx, event); err != nil {
		return apperr.Internal("clear event types", err)
	}
	if err := st.Events.Delete(ctx, event.ID); err != nil {
		return apperr.Internal("delete event", err)
	}
	if err := st.Addresses.Delete(ctx, event.AddressID); err != nil {
		return apperr.Internal("delete event address", err)
	}
	return nil
}

// deleteUserTx removes one user inside an open transaction. Likes the user
// made on other owners' events are dropped without counter adjustment.
func deleteUserTx(ctx context.Context, st *repository.Store, user *model.User) error {
	profile, err := st.Profiles.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Internal("load profile", err)
	}

	about, err := st.SignaledUsers.ListByTarget(ctx, user.ID)
	if err != nil {
		return apperr.Internal("list signalments", err)
	}
	by, err := st.SignaledUsers.ListByReporter(ctx, user.ID)
	if err != nil {
		return apperr.Internal("list signalments", err)
	}
	seen := make(map[uuid.UUID]struct{}, len(about)+len(by))
	for _, signal := range append(about, by...) {
		if _, done := seen[signal.ID]; done {
			continue
		}
		seen[signal.ID] = struct{}{}
		if err := st.SignaledUsers.Delete(ctx, signal.ID); err != nil {
			return apperr.Internal("delete signalment", err)
		}
	}

	if profile != nil {
		events, err := st.Events.ListByProfile(ctx, profile.ID)
		if err != nil {
			return apperr.Internal("list events", err)
		}
		for i := range events {
			if err := deleteEventTx(ctx, st, &events[i]); err != nil {
				return err
			}
		}

		comments, err := st.Comments.ListByProfile(ctx, profile.ID)
		if err != nil {
			return apperr.Internal("list comments", err)
		}
		for i := range comments {
			if err := deleteCommentTx(ctx, st, &comments[i]); err != nil {
				return err
			}
		}

		likes, err := st.Likes.ListByProfile(ctx, profile.ID)
		if err != nil {
			return apperr.Internal("list likes", err)
		}
		for i := range likes {
			if err := st.Likes.Delete(ctx, likes[i].ID); err != nil {
				return apperr.Internal("delete like", err)
			}
		}
	}

	if err := st.ActionLogs.NullifyActor(ctx, user.ID); err != nil {
		return apperr.Internal("detach action logs", err)
	}
	if err := st.Users.Delete(ctx, user.ID); err != nil {
		return apperr.Internal("delete user", err)
	}
	if profile != nil {
		if err := st.Profiles.Delete(ctx, profile.ID); err != nil {
			return apperr.Internal("delete profile", err)
		}
	}
	return nil
}
