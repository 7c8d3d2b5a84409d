package service

import (
	"context"
	"testing"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

func TestLikeUnlikeCounters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewLikeService(db, testLogger())
	store := repository.NewStore(db)

	_, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	liker, _ := seedUser(t, db, "liker@example.com", model.RoleUser)
	event := seedEvent(t, db, owner, 0, 5)

	if err := svc.Like(ctx, liker.ID, event.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	// liking twice is a no-op
	if err := svc.Like(ctx, liker.ID, event.ID); err != nil {
		t.Fatalf("second like: %v", err)
	}

	refreshed, _ := store.Events.GetByID(ctx, event.ID)
	if refreshed.NbLikes != 1 {
		t.Fatalf("expected 1 event like, got %d", refreshed.NbLikes)
	}
	ownerRefreshed, _ := store.Profiles.GetByID(ctx, owner.ID)
	if ownerRefreshed.NbLike != 1 {
		t.Fatalf("expected 1 received like, got %d", ownerRefreshed.NbLike)
	}

	if err := svc.Unlike(ctx, liker.ID, event.ID); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	refreshed, _ = store.Events.GetByID(ctx, event.ID)
	if refreshed.NbLikes != 0 {
		t.Fatalf("event counter not rolled back: %d", refreshed.NbLikes)
	}
	ownerRefreshed, _ = store.Profiles.GetByID(ctx, owner.ID)
	if ownerRefreshed.NbLike != 0 {
		t.Fatalf("owner counter not rolled back: %d", ownerRefreshed.NbLike)
	}

	if err := svc.Unlike(ctx, liker.ID, event.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not-found on second unlike, got %v", err)
	}
}

func TestCounterNeverNegative(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := repository.NewStore(db)

	_, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	event := seedEvent(t, db, owner, 0, 5)

	if err := store.Events.AddLikeCount(ctx, event.ID, -5); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	refreshed, _ := store.Events.GetByID(ctx, event.ID)
	if refreshed.NbLikes != 0 {
		t.Fatalf("counter went negative: %d", refreshed.NbLikes)
	}

	if err := store.Profiles.AddLikeCount(ctx, owner.ID, -3); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	ownerRefreshed, _ := store.Profiles.GetByID(ctx, owner.ID)
	if ownerRefreshed.NbLike != 0 {
		t.Fatalf("profile counter went negative: %d", ownerRefreshed.NbLike)
	}
}
