package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/contentfilter"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

type CommentService struct {
	db     *gorm.DB
	store  *repository.Store
	filter *contentfilter.Filter
	log    *zap.Logger
}

func NewCommentService(db *gorm.DB, filter *contentfilter.Filter, log *zap.Logger) *CommentService {
	return &CommentService{db: db, store: repository.NewStore(db), filter: filter, log: log}
}

// Create posts a comment on the event. Content is screened before any write.
func (s *CommentService) Create(ctx context.Context, userID, eventID uuid.UUID, content string) (*model.Comment, error) {
	if !s.filter.IsClean(content) {
		return nil, apperr.ContentRejected("comment contains forbidden words")
	}
	profile, err := resolveProfileByUser(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}
	event, err := resolveEvent(ctx, s.store, eventID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		Content:   content,
		ProfileID: profile.ID,
		EventID:   event.ID,
		CreatedAt: time.Now().UTC(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		if err := st.Comments.Create(ctx, comment); err != nil {
			return apperr.Internal("create comment", err)
		}
		if err := st.Events.AddCommentCount(ctx, event.ID, 1); err != nil {
			return apperr.Internal("increment comment count", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	return resolveComment(ctx, s.store, id)
}

func (s *CommentService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Comment, error) {
	if _, err := resolveEvent(ctx, s.store, eventID); err != nil {
		return nil, err
	}
	comments, err := s.store.Comments.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, apperr.Internal("list comments", err)
	}
	return comments, nil
}
