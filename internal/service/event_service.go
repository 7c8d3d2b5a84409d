package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/auth"
	"github.com/rallyhq/rally-core/internal/contentfilter"
	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/repository"
)

type EventService struct {
	db     *gorm.DB
	store  *repository.Store
	filter *contentfilter.Filter
	log    *zap.Logger
}

func NewEventService(db *gorm.DB, filter *contentfilter.Filter, log *zap.Logger) *EventService {
	return &EventService{db: db, store: repository.NewStore(db), filter: filter, log: log}
}

type CreateEventInput struct {
	Title          string
	Description    string
	NbPlaces       int64
	Price          float64
	Date           time.Time
	ClotureBillets time.Time
	Address        model.Address
	TypeIDs        []int64
	Pictures       []string
}

type UpdateEventInput struct {
	Title          string
	Description    string
	NbPlaces       int64
	Price          float64
	Date           time.Time
	ClotureBillets time.Time
	TypeIDs        []int64
}

// Create publishes an event owned by the user's profile. Title and
// description are screened, counters start at zero, the address is owned
// and type tags must all exist.
func (s *EventService) Create(ctx context.Context, userID uuid.UUID, in CreateEventInput) (*model.Event, error) {
	if !s.filter.IsClean(in.Title) || !s.filter.IsClean(in.Description) {
		return nil, apperr.ContentRejected("event content contains forbidden words")
	}
	profile, err := resolveProfileByUser(ctx, s.store, userID)
	if err != nil {
		return nil, err
	}

	types, err := s.store.Types.GetByIDs(ctx, in.TypeIDs)
	if err != nil {
		return nil, apperr.Internal("load event types", err)
	}
	if len(types) != len(in.TypeIDs) {
		return nil, apperr.NotFound("unknown event type")
	}

	event := &model.Event{
		Title:          in.Title,
		Description:    in.Description,
		NbPlaces:       in.NbPlaces,
		Price:          in.Price,
		ProfileID:      profile.ID,
		Date:           in.Date,
		ClotureBillets: in.ClotureBillets,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		address := in.Address
		if err := st.Addresses.Create(ctx, &address); err != nil {
			return apperr.Internal("create address", err)
		}
		event.AddressID = address.ID
		if err := st.Events.Create(ctx, event); err != nil {
			return apperr.Internal("create event", err)
		}
		if len(types) > 0 {
			if err := st.Events.ReplaceTypes(ctx, event, types); err != nil {
				return apperr.Internal("set event types", err)
			}
		}
		if err := st.Events.AddPictures(ctx, event.ID, in.Pictures); err != nil {
			return apperr.Internal("add event pictures", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("event created",
		zap.String("event_id", event.ID.String()),
		zap.String("profile_id", profile.ID.String()),
	)
	return event, nil
}

// Update edits the event's core fields and replaces its type tags. Only the
// owner or an admin may edit.
func (s *EventService) Update(ctx context.Context, actor *auth.Actor, eventID uuid.UUID, in UpdateEventInput) (*model.Event, error) {
	if !s.filter.IsClean(in.Title) || !s.filter.IsClean(in.Description) {
		return nil, apperr.ContentRejected("event content contains forbidden words")
	}
	event, err := resolveEvent(ctx, s.store, eventID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		profile, err := resolveProfileByUser(ctx, s.store, actor.ID)
		if err != nil {
			return nil, err
		}
		if profile.ID != event.ProfileID {
			return nil, apperr.Forbidden("not allowed")
		}
	}

	types, err := s.store.Types.GetByIDs(ctx, in.TypeIDs)
	if err != nil {
		return nil, apperr.Internal("load event types", err)
	}
	if len(types) != len(in.TypeIDs) {
		return nil, apperr.NotFound("unknown event type")
	}

	event.Title = in.Title
	event.Description = in.Description
	event.NbPlaces = in.NbPlaces
	event.Price = in.Price
	event.Date = in.Date
	event.ClotureBillets = in.ClotureBillets

	err = s.db.Transaction(func(tx *gorm.DB) error {
		st := repository.NewStore(tx)
		if err := st.Events.Update(ctx, event); err != nil {
			return apperr.Internal("update event", err)
		}
		if err := st.Events.ReplaceTypes(ctx, event, types); err != nil {
			return apperr.Internal("set event types", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	return resolveEvent(ctx, s.store, id)
}

func (s *EventService) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]model.Event, error) {
	if _, err := resolveProfile(ctx, s.store, profileID); err != nil {
		return nil, err
	}
	events, err := s.store.Events.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, apperr.Internal("list events", err)
	}
	return events, nil
}

func (s *EventService) ListTypes(ctx context.Context) ([]model.Type, error) {
	types, err := s.store.Types.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list event types", err)
	}
	return types, nil
}
