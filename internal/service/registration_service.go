package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

// keyedMutex serializes registration attempts per event so the capacity check
// and the insert cannot interleave between two registrants.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uuid.UUID]*lockEntry)}
}

func (k *keyedMutex) Lock(key uuid.UUID) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()
	entry.Lock()
}

func (k *keyedMutex) Unlock(key uuid.UUID) {
	k.mu.Lock()
	entry := k.locks[key]
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
	entry.Unlock()
}

type RegistrationService struct {
	db    *gorm.DB
	store *repository.Store
	log   *zap.Logger
	locks *keyedMutex
}

func NewRegistrationService(db *gorm.DB, log *zap.Logger) *RegistrationService {
	return &RegistrationService{
		db:    db,
		store: repository.NewStore(db),
		log:   log,
		locks: newKeyedMutex(),
	}
}

// Register signs the profile up for a free slot at the event. Calling it
// again for the same pair returns the existing registration unchanged.
func (s *RegistrationService) Register(ctx context.Context, profileID, eventID uuid.UUID) (*model.Registration, error) {
	profile, err := resolveProfile(ctx, s.store, profileID)
	if err != nil {
		return nil, err
	}
	event, err := resolveEvent(ctx, s.store, eventID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, profile, event, model.PaymentStatusFree, true)
}

// create runs the capacity check and the insert under the per-event lock.
// When returnExisting is false an existing registration is a conflict.
func (s *RegistrationService) create(ctx context.Context, profile *model.Profile, event *model.Event, status model.PaymentStatus, returnExisting bool) (*model.Registration, error) {
	s.locks.Lock(event.ID)
	defer s.locks.Unlock(event.ID)

	existing, err := s.store.Registrations.GetByProfileAndEvent(ctx, profile.ID, event.ID)
	if err != nil {
		return nil, apperr.Internal("load registration", err)
	}
	if existing != nil {
		if returnExisting {
			return existing, nil
		}
		return nil, apperr.Conflict("already registered for this event")
	}

	count, err := s.store.Registrations.CountByEvent(ctx, event.ID)
	if err != nil {
		return nil, apperr.Internal("count registrations", err)
	}
	if err := CheckRegistrationAllowed(event, count, time.Now()); err != nil {
		return nil, err
	}

	registration := &model.Registration{
		ProfileID:     profile.ID,
		EventID:       event.ID,
		RegisteredAt:  time.Now().UTC(),
		PaymentStatus: status,
	}
	if err := s.store.Registrations.Create(ctx, registration); err != nil {
		return nil, apperr.Internal("create registration", err)
	}

	s.log.Info("registration created",
		zap.String("registration_id", registration.ID.String()),
		zap.String("event_id", event.ID.String()),
		zap.String("profile_id", profile.ID.String()),
		zap.String("status", string(status)),
	)
	if err := recordAction(ctx, s.store.ActionLogs, &profile.UserID, model.LogLevelInfo, model.ActionEventRegistered,
		"registration created",
		map[string]any{"event_id": event.ID.String(), "registration_id": registration.ID.String()},
	); err != nil {
		s.log.Warn("action log write failed", zap.Error(err))
	}

	return registration, nil
}

// DeleteRegistration removes the registration for the (profile, event) pair.
// Both sides are resolved first so a stale id surfaces as not-found.
func (s *RegistrationService) DeleteRegistration(ctx context.Context, profileID, eventID uuid.UUID) error {
	if _, err := resolveProfile(ctx, s.store, profileID); err != nil {
		return err
	}
	if _, err := resolveEvent(ctx, s.store, eventID); err != nil {
		return err
	}
	registration, err := s.store.Registrations.GetByProfileAndEvent(ctx, profileID, eventID)
	if err != nil {
		return apperr.Internal("load registration", err)
	}
	if registration == nil {
		return apperr.NotFound("registration not found")
	}
	return s.deleteByID(ctx, registration.ID)
}

// DeleteRegistrationByID removes a registration by its own id. The owning
// profile and event are resolved first so a dangling reference surfaces as
// not-found.
func (s *RegistrationService) DeleteRegistrationByID(ctx context.Context, id uuid.UUID) error {
	registration, err := s.store.Registrations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("registration not found")
		}
		return apperr.Internal("load registration", err)
	}
	if _, err := resolveProfile(ctx, s.store, registration.ProfileID); err != nil {
		return err
	}
	if _, err := resolveEvent(ctx, s.store, registration.EventID); err != nil {
		return err
	}
	return s.deleteByID(ctx, registration.ID)
}

func (s *RegistrationService) deleteByID(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Registrations.Delete(ctx, id); err != nil {
		return apperr.Internal("delete registration", err)
	}
	s.log.Info("registration deleted", zap.String("registration_id", id.String()))
	return nil
}

func (s *RegistrationService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Registration, error) {
	if _, err := resolveEvent(ctx, s.store, eventID); err != nil {
		return nil, err
	}
	regs, err := s.store.Registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, apperr.Internal("list registrations", err)
	}
	return regs, nil
}
