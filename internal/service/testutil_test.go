package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rallyhq/rally-core/internal/auth"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// one connection keeps every session on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := repository.NewStore(db).Roles.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, roleName string) (*model.User, *model.Profile) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewStore(db)

	role, err := store.Roles.GetByName(ctx, roleName)
	if err != nil {
		t.Fatalf("load role %s: %v", roleName, err)
	}
	user := &model.User{
		Email:        email,
		PasswordHash: "irrelevant",
		RoleID:       role.ID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.Users.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := &model.Profile{
		UserID:    user.ID,
		FirstName: "Test",
		LastName:  "User",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := store.Profiles.Create(ctx, profile); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return user, profile
}

func seedEvent(t *testing.T, db *gorm.DB, owner *model.Profile, price float64, places int64) *model.Event {
	t.Helper()
	ctx := context.Background()
	store := repository.NewStore(db)

	address := &model.Address{City: "Paris", Country: "France"}
	if err := store.Addresses.Create(ctx, address); err != nil {
		t.Fatalf("create address: %v", err)
	}
	event := &model.Event{
		Title:          "Test Event",
		Description:    "about the test event",
		NbPlaces:       places,
		Price:          price,
		ProfileID:      owner.ID,
		Date:           time.Now().Add(48 * time.Hour),
		ClotureBillets: time.Now().Add(24 * time.Hour),
		AddressID:      address.ID,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if err := store.Events.Create(ctx, event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

func seedReason(t *testing.T, db *gorm.DB, text string) *model.Reason {
	t.Helper()
	reason := &model.Reason{Text: text}
	if err := repository.NewStore(db).Reasons.Create(context.Background(), reason); err != nil {
		t.Fatalf("create reason: %v", err)
	}
	return reason
}

func actorFor(user *model.User, roleName string) *auth.Actor {
	return &auth.Actor{ID: user.ID, Email: user.Email, Role: roleName}
}

func testLogger() *zap.Logger { return zap.NewNop() }
