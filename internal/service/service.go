// Package service implements the business rules on top of the repositories.
// Services hold the gorm handle directly so multi-step operations can run
// inside a single transaction with a Store built over it.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

func resolveUser(ctx context.Context, store *repository.Store, id uuid.UUID) (*model.User, error) {
	user, err := store.Users.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	return user, nil
}

func resolveProfile(ctx context.Context, store *repository.Store, id uuid.UUID) (*model.Profile, error) {
	profile, err := store.Profiles.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("profile not found")
	}
	if err != nil {
		return nil, apperr.Internal("load profile", err)
	}
	return profile, nil
}

func resolveProfileByUser(ctx context.Context, store *repository.Store, userID uuid.UUID) (*model.Profile, error) {
	profile, err := store.Profiles.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("profile not found")
	}
	if err != nil {
		return nil, apperr.Internal("load profile", err)
	}
	return profile, nil
}

func resolveEvent(ctx context.Context, store *repository.Store, id uuid.UUID) (*model.Event, error) {
	event, err := store.Events.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("event not found")
	}
	if err != nil {
		return nil, apperr.Internal("load event", err)
	}
	return event, nil
}

func resolveComment(ctx context.Context, store *repository.Store, id uuid.UUID) (*model.Comment, error) {
	comment, err := store.Comments.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("comment not found")
	}
	if err != nil {
		return nil, apperr.Internal("load comment", err)
	}
	return comment, nil
}

// recordAction appends an audit-trail entry. Callers inside a transaction pass
// the transactional store so the entry commits with the operation.
func recordAction(ctx context.Context, logs repository.ActionLogRepository, actorID *uuid.UUID, level model.LogLevel, action model.ActionType, description string, details map[string]any) error {
	var raw datatypes.JSON
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshal action details: %w", err)
		}
		raw = datatypes.JSON(b)
	}
	return logs.Create(ctx, &model.ActionLog{
		ActorID:     actorID,
		LogType:     level,
		ActionType:  action,
		Description: description,
		Details:     raw,
		Date:        time.Now().UTC(),
	})
}
