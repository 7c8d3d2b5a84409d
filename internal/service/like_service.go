package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

type LikeService struct {
	db    *gorm.DB
	store *repository.Store
	log   *zap.Logger
}

func NewLikeService(db *gorm.DB, log *zap.Logger) *LikeService {
	return &LikeService{db: db, store: repository.NewStore(db), log: log}
}

// Like marks the event as liked by the user's profile. Liking an already
// liked event changes nothing.
func (s *LikeService) Like(ctx context.Context, userID, eventID uuid.UUID) error {
	profile, err := resolveProfileByUser(ctx, s.store, userID)
	if err != nil {
		return err
	}
	event, err := resolveEvent(ctx, s.store, eventID)
	if err != nil {
		return err
	}

	existing, err := s.store.Likes.GetByProfileAndEvent(ctx, profile.ID, event.ID)
	if err != nil {
		return apperr.Internal("load like", err)
	}
	if existing != nil {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		like := &model.Like{
			ProfileID: profile.ID,
			EventID:   event.ID,
			CreatedAt: time.Now().UTC(),
		}
		if err := st.Likes.Create(ctx, like); err != nil {
			return apperr.Internal("create like", err)
		}
		if err := st.Events.AddLikeCount(ctx, event.ID, 1); err != nil {
			return apperr.Internal("increment event likes", err)
		}
		if err := st.Profiles.AddLikeCount(ctx, event.ProfileID, 1); err != nil {
			return apperr.Internal("increment profile likes", err)
		}
		return nil
	})
}

// Unlike removes the like and rolls both counters back. The event owner's
// profile carries the received-like counter.
func (s *LikeService) Unlike(ctx context.Context, userID, eventID uuid.UUID) error {
	profile, err := resolveProfileByUser(ctx, s.store, userID)
	if err != nil {
		return err
	}
	event, err := resolveEvent(ctx, s.store, eventID)
	if err != nil {
		return err
	}

	existing, err := s.store.Likes.GetByProfileAndEvent(ctx, profile.ID, event.ID)
	if err != nil {
		return apperr.Internal("load like", err)
	}
	if existing == nil {
		return apperr.NotFound("like not found")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		if err := st.Likes.Delete(ctx, existing.ID); err != nil {
			return apperr.Internal("delete like", err)
		}
		if err := st.Events.AddLikeCount(ctx, event.ID, -1); err != nil {
			return apperr.Internal("decrement event likes", err)
		}
		if err := st.Profiles.AddLikeCount(ctx, event.ProfileID, -1); err != nil {
			return apperr.Internal("decrement profile likes", err)
		}
		return nil
	})
}

func (s *LikeService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Like, error) {
	if _, err := resolveEvent(ctx, s.store, eventID); err != nil {
		return nil, err
	}
	likes, err := s.store.Likes.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, apperr.Internal("list likes", err)
	}
	return likes, nil
}
