package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/service"
)

type eventBody struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	NbPlaces       int64     `json:"nb_places"`
	Price          float64   `json:"price"`
	Date           time.Time `json:"date"`
	ClotureBillets time.Time `json:"cloture_billets"`
	Address        struct {
		Street  string `json:"street"`
		Number  string `json:"number"`
		City    string `json:"city"`
		Zipcode string `json:"zipcode"`
		Country string `json:"country"`
	} `json:"address"`
	TypeIDs  []int64  `json:"type_ids"`
	Pictures []string `json:"pictures"`
}

func eventIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

func (a *API) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventBody
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	actor := actorFrom(r.Context())
	event, err := a.events.Create(r.Context(), actor.ID, service.CreateEventInput{
		Title:          req.Title,
		Description:    req.Description,
		NbPlaces:       req.NbPlaces,
		Price:          req.Price,
		Date:           req.Date,
		ClotureBillets: req.ClotureBillets,
		Address: model.Address{
			Street:  req.Address.Street,
			Number:  req.Address.Number,
			City:    req.Address.City,
			Zipcode: req.Address.Zipcode,
			Country: req.Address.Country,
		},
		TypeIDs:  req.TypeIDs,
		Pictures: req.Pictures,
	})
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (a *API) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	event, err := a.events.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (a *API) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	var req eventBody
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	event, err := a.events.Update(r.Context(), actorFrom(r.Context()), id, service.UpdateEventInput{
		Title:          req.Title,
		Description:    req.Description,
		NbPlaces:       req.NbPlaces,
		Price:          req.Price,
		Date:           req.Date,
		ClotureBillets: req.ClotureBillets,
		TypeIDs:        req.TypeIDs,
	})
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (a *API) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	if err := a.moderation.DeleteEvent(r.Context(), actorFrom(r.Context()), id); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleReconcile(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	if !actor.IsAdmin() {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "admin only"})
		return
	}
	id, ok := eventIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	if err := a.counters.ReconcileCounters(r.Context(), id); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListProfileEvents(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid profile id"})
		return
	}
	events, err := a.events.ListByProfile(r.Context(), id)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (a *API) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := a.events.ListTypes(r.Context())
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (a *API) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &req); err != nil || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "content is required"})
		return
	}
	actor := actorFrom(r.Context())
	comment, err := a.comments.Create(r.Context(), actor.ID, id, req.Content)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (a *API) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	comments, err := a.comments.ListByEvent(r.Context(), id)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (a *API) handleGetComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid comment id"})
		return
	}
	comment, err := a.comments.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (a *API) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid comment id"})
		return
	}
	if err := a.moderation.DeleteComment(r.Context(), actorFrom(r.Context()), id); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListLikes(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	likes, err := a.likes.ListByEvent(r.Context(), id)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}

func (a *API) handleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	actor := actorFrom(r.Context())
	if err := a.likes.Like(r.Context(), actor.ID, id); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleUnlike(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	actor := actorFrom(r.Context())
	if err := a.likes.Unlike(r.Context(), actor.ID, id); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
