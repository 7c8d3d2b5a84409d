package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rallyhq/rally-core/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	a := NewAuthenticator("test-secret", time.Hour)
	user := &model.User{ID: uuid.New(), Email: "user@example.com"}

	token, err := a.IssueToken(user, model.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	actor, err := a.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if actor.ID != user.ID || actor.Email != user.Email || actor.Role != model.RoleAdmin {
		t.Fatalf("claims lost: %+v", actor)
	}
	if !actor.IsAdmin() {
		t.Fatalf("admin role not recognized")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	a := NewAuthenticator("secret-a", time.Hour)
	b := NewAuthenticator("secret-b", time.Hour)
	user := &model.User{ID: uuid.New(), Email: "user@example.com"}

	token, err := a.IssueToken(user, model.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.ParseToken(token); err == nil {
		t.Fatalf("token accepted with wrong secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	a := NewAuthenticator("test-secret", -time.Minute)
	user := &model.User{ID: uuid.New(), Email: "user@example.com"}

	token, err := a.IssueToken(user, model.RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := a.ParseToken(token); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Fatalf("wrong password accepted")
	}
}
