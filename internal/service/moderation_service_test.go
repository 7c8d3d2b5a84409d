package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

func seedComment(t *testing.T, db *gorm.DB, author *model.Profile, event *model.Event, content string) *model.Comment {
	t.Helper()
	ctx := context.Background()
	store := repository.NewStore(db)
	comment := &model.Comment{
		Content:   content,
		ProfileID: author.ID,
		EventID:   event.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Comments.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if err := store.Events.AddCommentCount(ctx, event.ID, 1); err != nil {
		t.Fatalf("bump comment count: %v", err)
	}
	return comment
}

func seedLike(t *testing.T, db *gorm.DB, liker *model.Profile, event *model.Event) *model.Like {
	t.Helper()
	ctx := context.Background()
	store := repository.NewStore(db)
	like := &model.Like{ProfileID: liker.ID, EventID: event.ID, CreatedAt: time.Now().UTC()}
	if err := store.Likes.Create(ctx, like); err != nil {
		t.Fatalf("create like: %v", err)
	}
	if err := store.Events.AddLikeCount(ctx, event.ID, 1); err != nil {
		t.Fatalf("bump event likes: %v", err)
	}
	if err := store.Profiles.AddLikeCount(ctx, event.ProfileID, 1); err != nil {
		t.Fatalf("bump profile likes: %v", err)
	}
	return like
}

func TestDeleteCommentCascade(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewModerationService(db, testLogger())
	store := repository.NewStore(db)

	_, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	author, authorProfile := seedUser(t, db, "author@example.com", model.RoleUser)
	reporter, _ := seedUser(t, db, "reporter@example.com", model.RoleUser)
	event := seedEvent(t, db, owner, 0, 5)
	comment := seedComment(t, db, authorProfile, event, "hello")
	reason := seedReason(t, db, "spam")

	signal := &model.SignaledComment{
		CommentID:  comment.ID,
		ReporterID: reporter.ID,
		ReasonID:   reason.ID,
		Status:     model.SignalStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.SignaledComments.Create(ctx, signal); err != nil {
		t.Fatalf("create signal: %v", err)
	}

	if err := svc.DeleteComment(ctx, actorFor(author, model.RoleUser), comment.ID); err != nil {
		t.Fatalf("delete comment: %v", err)
	}

	if _, err := store.Comments.GetByID(ctx, comment.ID); err == nil {
		t.Fatalf("comment survived deletion")
	}
	signals, err := store.SignaledComments.ListByComment(ctx, comment.ID)
	if err != nil {
		t.Fatalf("list signals: %v", err)
	}
	if len(signals) != 0 {
		t.Fatalf("signalments survived deletion")
	}
	refreshed, err := store.Events.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("load event: %v", err)
	}
	if refreshed.NbComments != 0 {
		t.Fatalf("comment counter not decremented: %d", refreshed.NbComments)
	}
}

func TestDeleteCommentForbiddenNoSideEffects(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewModerationService(db, testLogger())
	store := repository.NewStore(db)

	_, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	_, authorProfile := seedUser(t, db, "author@example.com", model.RoleUser)
	stranger, _ := seedUser(t, db, "stranger@example.com", model.RoleUser)
	event := seedEvent(t, db, owner, 0, 5)
	comment := seedComment(t, db, authorProfile, event, "hello")

	err := svc.DeleteComment(ctx, actorFor(stranger, model.RoleUser), comment.ID)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, err := store.Comments.GetByID(ctx, comment.ID); err != nil {
		t.Fatalf("comment touched by denied delete: %v", err)
	}
	refreshed, _ := store.Events.GetByID(ctx, event.ID)
	if refreshed.NbComments != 1 {
		t.Fatalf("counter touched by denied delete: %d", refreshed.NbComments)
	}
}

func TestDeleteEventCascade(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewModerationService(db, testLogger())
	store := repository.NewStore(db)

	ownerUser, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	_, commenter := seedUser(t, db, "commenter@example.com", model.RoleUser)
	_, liker := seedUser(t, db, "liker@example.com", model.RoleUser)
	event := seedEvent(t, db, owner, 0, 5)

	seedComment(t, db, commenter, event, "first")
	seedLike(t, db, liker, event)

	regSvc := NewRegistrationService(db, testLogger())
	if _, err := regSvc.Register(ctx, commenter.ID, event.ID); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.DeleteEvent(ctx, actorFor(ownerUser, model.RoleUser), event.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}

	if _, err := store.Events.GetByID(ctx, event.ID); err == nil {
		t.Fatalf("event survived deletion")
	}
	if _, err := store.Addresses.GetByID(ctx, event.AddressID); err == nil {
		t.Fatalf("owned address survived deletion")
	}
	comments, _ := store.Comments.ListByEvent(ctx, event.ID)
	if len(comments) != 0 {
		t.Fatalf("comments survived deletion")
	}
	likes, _ := store.Likes.ListByEvent(ctx, event.ID)
	if len(likes) != 0 {
		t.Fatalf("likes survived deletion")
	}
	count, _ := store.Registrations.CountByEvent(ctx, event.ID)
	if count != 0 {
		t.Fatalf("registrations survived deletion")
	}
	ownerRefreshed, _ := store.Profiles.GetByID(ctx, owner.ID)
	if ownerRefreshed.NbLike != 0 {
		t.Fatalf("owner like counter not rolled back: %d", ownerRefreshed.NbLike)
	}
}

func TestDeleteUserCascade(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewModerationService(db, testLogger())
	store := repository.NewStore(db)

	target, targetProfile := seedUser(t, db, "target@example.com", model.RoleUser)
	_, otherProfile := seedUser(t, db, "other@example.com", model.RoleUser)
	reporter, _ := seedUser(t, db, "reporter@example.com", model.RoleUser)
	admin, _ := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	reason := seedReason(t, db, "abuse")

	ownEvent := seedEvent(t, db, targetProfile, 0, 5)
	otherEvent := seedEvent(t, db, otherProfile, 0, 5)
	seedComment(t, db, targetProfile, otherEvent, "by target")
	seedLike(t, db, targetProfile, otherEvent)

	signal := &model.SignaledUser{
		UserID:     target.ID,
		ReporterID: reporter.ID,
		ReasonID:   reason.ID,
		Status:     model.SignalStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.SignaledUsers.Create(ctx, signal); err != nil {
		t.Fatalf("create signal: %v", err)
	}

	if err := svc.DeleteUser(ctx, actorFor(admin, model.RoleAdmin), target.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := store.Users.GetByID(ctx, target.ID); err == nil {
		t.Fatalf("user survived deletion")
	}
	if _, err := store.Profiles.GetByID(ctx, targetProfile.ID); err == nil {
		t.Fatalf("profile survived deletion")
	}
	if _, err := store.Events.GetByID(ctx, ownEvent.ID); err == nil {
		t.Fatalf("owned event survived deletion")
	}
	signals, _ := store.SignaledUsers.ListByTarget(ctx, target.ID)
	if len(signals) != 0 {
		t.Fatalf("signalments survived deletion")
	}
	comments, _ := store.Comments.ListByProfile(ctx, targetProfile.ID)
	if len(comments) != 0 {
		t.Fatalf("comments survived deletion")
	}
	likes, _ := store.Likes.ListByProfile(ctx, targetProfile.ID)
	if len(likes) != 0 {
		t.Fatalf("likes survived deletion")
	}

	// the other owner's event lost the comment from its counter
	refreshed, _ := store.Events.GetByID(ctx, otherEvent.ID)
	if refreshed.NbComments != 0 {
		t.Fatalf("comment counter not decremented on other event: %d", refreshed.NbComments)
	}

	// likes are dropped without touching the other owner's received count
	otherRefreshed, _ := store.Profiles.GetByID(ctx, otherProfile.ID)
	if otherRefreshed.NbLike != 1 {
		t.Fatalf("like counter unexpectedly adjusted: %d", otherRefreshed.NbLike)
	}
}

func TestDeleteUserForbidden(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewModerationService(db, testLogger())

	target, _ := seedUser(t, db, "target@example.com", model.RoleUser)
	stranger, _ := seedUser(t, db, "stranger@example.com", model.RoleUser)

	err := svc.DeleteUser(ctx, actorFor(stranger, model.RoleUser), target.ID)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := repository.NewStore(db).Users.GetByID(ctx, target.ID); err != nil {
		t.Fatalf("target touched by denied delete: %v", err)
	}
}

func TestDeleteSignaledUserBan(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewModerationService(db, testLogger())
	store := repository.NewStore(db)

	target, _ := seedUser(t, db, "target@example.com", model.RoleUser)
	reporter, _ := seedUser(t, db, "reporter@example.com", model.RoleUser)
	admin, _ := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	reason := seedReason(t, db, "abuse")

	signal := &model.SignaledUser{
		UserID:     target.ID,
		ReporterID: reporter.ID,
		ReasonID:   reason.ID,
		Status:     model.SignalStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.SignaledUsers.Create(ctx, signal); err != nil {
		t.Fatalf("create signal: %v", err)
	}

	if err := svc.DeleteSignaledUser(ctx, actorFor(admin, model.RoleAdmin), signal.ID, true); err != nil {
		t.Fatalf("ban: %v", err)
	}

	if _, err := store.Users.GetByID(ctx, target.ID); err == nil {
		t.Fatalf("banned user survived")
	}
	banned, err := store.BannedUsers.GetByEmail(ctx, "target@example.com")
	if err != nil {
		t.Fatalf("banned lookup: %v", err)
	}
	if banned == nil {
		t.Fatalf("email not on the banned list")
	}
	if banned.BannedByEmail != admin.Email {
		t.Fatalf("wrong banning admin: %q", banned.BannedByEmail)
	}
}

func TestDeleteSignaledUserBanAlreadyBanned(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewModerationService(db, testLogger())
	store := repository.NewStore(db)

	target, _ := seedUser(t, db, "target@example.com", model.RoleUser)
	reporter, _ := seedUser(t, db, "reporter@example.com", model.RoleUser)
	admin, _ := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	reason := seedReason(t, db, "abuse")

	// email already on the list from a direct ban
	prior := &model.BannedUser{
		BannedEmail:   target.Email,
		BannedByEmail: admin.Email,
		BannedAt:      time.Now().UTC(),
	}
	if err := store.BannedUsers.Create(ctx, prior); err != nil {
		t.Fatalf("pre-ban: %v", err)
	}

	signal := &model.SignaledUser{
		UserID:     target.ID,
		ReporterID: reporter.ID,
		ReasonID:   reason.ID,
		Status:     model.SignalStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.SignaledUsers.Create(ctx, signal); err != nil {
		t.Fatalf("create signal: %v", err)
	}

	if err := svc.DeleteSignaledUser(ctx, actorFor(admin, model.RoleAdmin), signal.ID, true); err != nil {
		t.Fatalf("ban with pre-banned email failed: %v", err)
	}

	if _, err := store.Users.GetByID(ctx, target.ID); err == nil {
		t.Fatalf("banned user survived")
	}
	if _, err := store.SignaledUsers.GetByID(ctx, signal.ID); err == nil {
		t.Fatalf("signalment survived")
	}
	banned, err := store.BannedUsers.GetByEmail(ctx, target.Email)
	if err != nil || banned == nil {
		t.Fatalf("banned lookup: %v", err)
	}
}

func TestDeleteSignaledCommentDismiss(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewModerationService(db, testLogger())
	store := repository.NewStore(db)

	_, owner := seedUser(t, db, "owner@example.com", model.RoleUser)
	_, authorProfile := seedUser(t, db, "author@example.com", model.RoleUser)
	reporter, _ := seedUser(t, db, "reporter@example.com", model.RoleUser)
	admin, _ := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	event := seedEvent(t, db, owner, 0, 5)
	comment := seedComment(t, db, authorProfile, event, "contested")
	reason := seedReason(t, db, "spam")

	signal := &model.SignaledComment{
		CommentID:  comment.ID,
		ReporterID: reporter.ID,
		ReasonID:   reason.ID,
		Status:     model.SignalStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.SignaledComments.Create(ctx, signal); err != nil {
		t.Fatalf("create signal: %v", err)
	}

	if err := svc.DeleteSignaledComment(ctx, actorFor(admin, model.RoleAdmin), signal.ID, false); err != nil {
		t.Fatalf("dismiss: %v", err)
	}

	// dismiss removes only the signalment
	if _, err := store.SignaledComments.GetByID(ctx, signal.ID); err == nil {
		t.Fatalf("signalment survived dismiss")
	}
	if _, err := store.Comments.GetByID(ctx, comment.ID); err != nil {
		t.Fatalf("dismiss deleted the comment: %v", err)
	}
}

func TestDeleteSignaledRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewModerationService(db, testLogger())

	user, _ := seedUser(t, db, "user@example.com", model.RoleUser)

	err := svc.DeleteSignaledUser(ctx, actorFor(user, model.RoleUser), user.ID, false)
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden for non-admin, got %v", err)
	}
}
