package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/auth"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

type UserService struct {
	db    *gorm.DB
	store *repository.Store
	log   *zap.Logger
}

func NewUserService(db *gorm.DB, log *zap.Logger) *UserService {
	return &UserService{db: db, store: repository.NewStore(db), log: log}
}

type CreateUserInput struct {
	Email       string
	Password    string
	PhoneNumber string
	FirstName   string
	LastName    string
	IsPlanner   bool
}

// Create registers a new account with its profile in one transaction.
// Banned emails are rejected before anything is written.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	banned, err := s.store.BannedUsers.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperr.Internal("check banned list", err)
	}
	if banned != nil {
		return nil, apperr.Forbidden("this email is banned")
	}

	if _, err := s.store.Users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("load user", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	role, err := s.store.Roles.GetByName(ctx, model.RoleUser)
	if err != nil {
		return nil, apperr.Internal("load default role", err)
	}

	user := &model.User{
		Email:        in.Email,
		PasswordHash: hash,
		PhoneNumber:  in.PhoneNumber,
		IsPlanner:    in.IsPlanner,
		RoleID:       role.ID,
		CreatedAt:    time.Now().UTC(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		if err := st.Users.Create(ctx, user); err != nil {
			return apperr.Internal("create user", err)
		}
		profile := &model.Profile{
			UserID:    user.ID,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		if err := st.Profiles.Create(ctx, profile); err != nil {
			return apperr.Internal("create profile", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user created", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate checks credentials and returns the user with its role name.
// Wrong email and wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.store.Users.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperr.Forbidden("invalid credentials")
	}
	if err != nil {
		return nil, "", apperr.Internal("load user", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", apperr.Forbidden("invalid credentials")
	}
	role, err := s.store.Roles.GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, "", apperr.Internal("load role", err)
	}
	return user, role.Name, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return resolveUser(ctx, s.store, id)
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	return resolveProfileByUser(ctx, s.store, userID)
}

// IsAdmin reports whether the user's role grants moderation rights.
func (s *UserService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := resolveUser(ctx, s.store, userID)
	if err != nil {
		return false, err
	}
	role, err := s.store.Roles.GetByID(ctx, user.RoleID)
	if err != nil {
		return false, apperr.Internal("load role", err)
	}
	return model.IsAdminRole(role.Name), nil
}
