package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/repository"
)

// CounterService recomputes denormalized counters from live rows. The inline
// maintenance keeps them correct; this is the repair path for drift.
type CounterService struct {
	db    *gorm.DB
	store *repository.Store
	log   *zap.Logger
}

func NewCounterService(db *gorm.DB, log *zap.Logger) *CounterService {
	return &CounterService{db: db, store: repository.NewStore(db), log: log}
}

// ReconcileCounters rebuilds the event's nb_likes and nb_comments and the
// owner profile's received-like count from the live rows.
func (s *CounterService) ReconcileCounters(ctx context.Context, eventID uuid.UUID) error {
	event, err := resolveEvent(ctx, s.store, eventID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		likes, err := st.Likes.CountByEvent(ctx, event.ID)
		if err != nil {
			return apperr.Internal("count likes", err)
		}
		comments, err := st.Comments.CountByEvent(ctx, event.ID)
		if err != nil {
			return apperr.Internal("count comments", err)
		}
		if err := st.Events.SetCounts(ctx, event.ID, likes, comments); err != nil {
			return apperr.Internal("set event counters", err)
		}

		received, err := st.Likes.CountReceivedByProfile(ctx, event.ProfileID)
		if err != nil {
			return apperr.Internal("count received likes", err)
		}
		if err := st.Profiles.SetLikeCount(ctx, event.ProfileID, received); err != nil {
			return apperr.Internal("set profile like count", err)
		}

		s.log.Info("counters reconciled",
			zap.String("event_id", event.ID.String()),
			zap.Int64("nb_likes", likes),
			zap.Int64("nb_comments", comments),
		)
		return nil
	})
}
