package service

import (
	"context"
	"testing"

	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

func TestReconcileCounters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewCounterService(db, testLogger())
	store := repository.NewStore(db)

	_, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	_, liker := seedUser(t, db, "liker@example.com", model.RoleUser)
	_, commenter := seedUser(t, db, "commenter@example.com", model.RoleUser)
	event := seedEvent(t, db, owner, 0, 5)

	seedLike(t, db, liker, event)
	seedComment(t, db, commenter, event, "one")
	seedComment(t, db, commenter, event, "two")

	// force drift
	if err := store.Events.SetCounts(ctx, event.ID, 40, 40); err != nil {
		t.Fatalf("drift: %v", err)
	}
	if err := store.Profiles.SetLikeCount(ctx, owner.ID, 40); err != nil {
		t.Fatalf("drift: %v", err)
	}

	if err := svc.ReconcileCounters(ctx, event.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	refreshed, _ := store.Events.GetByID(ctx, event.ID)
	if refreshed.NbLikes != 1 || refreshed.NbComments != 2 {
		t.Fatalf("counters not rebuilt: likes=%d comments=%d", refreshed.NbLikes, refreshed.NbComments)
	}
	ownerRefreshed, _ := store.Profiles.GetByID(ctx, owner.ID)
	if ownerRefreshed.NbLike != 1 {
		t.Fatalf("profile counter not rebuilt: %d", ownerRefreshed.NbLike)
	}
}
