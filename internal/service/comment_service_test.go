package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/contentfilter"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

func TestCreateComment(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewCommentService(db, contentfilter.New([]string{"slur"}), testLogger())
	store := repository.NewStore(db)

	_, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	author, _ := seedUser(t, db, "author@example.com", model.RoleUser)
	event := seedEvent(t, db, owner, 0, 5)

	comment, err := svc.Create(ctx, author.ID, event.ID, "great event")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if comment.ID == uuid.Nil {
		t.Fatalf("comment id not set")
	}

	refreshed, _ := store.Events.GetByID(ctx, event.ID)
	if refreshed.NbComments != 1 {
		t.Fatalf("expected 1 comment, got %d", refreshed.NbComments)
	}
}

func TestCreateCommentRejectsBannedWords(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewCommentService(db, contentfilter.New([]string{"slur"}), testLogger())
	store := repository.NewStore(db)

	_, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	author, _ := seedUser(t, db, "author@example.com", model.RoleUser)
	event := seedEvent(t, db, owner, 0, 5)

	_, err := svc.Create(ctx, author.ID, event.ID, "you <b>SLUR</b>")
	if apperr.KindOf(err) != apperr.KindContentRejected {
		t.Fatalf("expected content rejection, got %v", err)
	}

	comments, _ := store.Comments.ListByEvent(ctx, event.ID)
	if len(comments) != 0 {
		t.Fatalf("rejected comment was written")
	}
	refreshed, _ := store.Events.GetByID(ctx, event.ID)
	if refreshed.NbComments != 0 {
		t.Fatalf("counter touched by rejected comment: %d", refreshed.NbComments)
	}
}
