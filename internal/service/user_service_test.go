package service

import (
	"context"
	"testing"
	"time"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewUserService(db, testLogger())

	user, err := svc.Create(ctx, CreateUserInput{
		Email:     "new@example.com",
		Password:  "secret123",
		FirstName: "New",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.PasswordHash == "secret123" {
		t.Fatalf("password stored in clear")
	}

	profile, err := svc.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("profile missing: %v", err)
	}
	if profile.FirstName != "New" {
		t.Fatalf("profile not populated: %q", profile.FirstName)
	}

	authed, role, err := svc.Authenticate(ctx, "new@example.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID || role != model.RoleUser {
		t.Fatalf("wrong identity %s role %s", authed.ID, role)
	}

	if _, _, err := svc.Authenticate(ctx, "new@example.com", "wrong"); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden on bad password, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewUserService(db, testLogger())

	if _, err := svc.Create(ctx, CreateUserInput{Email: "dup@example.com", Password: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateUserInput{Email: "dup@example.com", Password: "y"}); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateUserBannedEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewUserService(db, testLogger())
	store := repository.NewStore(db)

	banned := &model.BannedUser{
		BannedEmail:   "banned@example.com",
		BannedByEmail: "admin@example.com",
		BannedAt:      time.Now().UTC(),
	}
	if err := store.BannedUsers.Create(ctx, banned); err != nil {
		t.Fatalf("ban: %v", err)
	}

	_, err := svc.Create(ctx, CreateUserInput{Email: "banned@example.com", Password: "x"})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden for banned email, got %v", err)
	}
}

func TestIsAdmin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewUserService(db, testLogger())

	admin, _ := seedUser(t, db, "admin@example.com", model.RoleAdmin)
	user, _ := seedUser(t, db, "user@example.com", model.RoleUser)

	if ok, err := svc.IsAdmin(ctx, admin.ID); err != nil || !ok {
		t.Fatalf("admin not recognized: %v %v", ok, err)
	}
	if ok, err := svc.IsAdmin(ctx, user.ID); err != nil || ok {
		t.Fatalf("user misclassified as admin: %v %v", ok, err)
	}
}
