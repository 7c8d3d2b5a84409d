package httpapi

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rallyhq/rally-core/internal/gateway"
)

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	actor := actorFrom(r.Context())
	profile, err := a.users.GetProfile(r.Context(), actor.ID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	registration, err := a.registrations.Register(r.Context(), profile.ID, id)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, registration)
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	actor := actorFrom(r.Context())
	result, err := a.payments.InitiatePaidRegistration(r.Context(), id, actor.ID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"registration_id": result.Registration.ID.String(),
		"status":          result.Registration.PaymentStatus,
		"checkout_url":    result.CheckoutURL,
		"session_id":      result.SessionID,
	})
}

// handleListRegistrations exposes an event's attendee list to its organizer
// or an admin.
func (a *API) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	actor := actorFrom(r.Context())
	event, err := a.events.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	if !actor.IsAdmin() {
		profile, err := a.users.GetProfile(r.Context(), actor.ID)
		if err != nil {
			writeError(w, a.log, err)
			return
		}
		if profile.ID != event.ProfileID {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "organizer only"})
			return
		}
	}
	registrations, err := a.registrations.ListByEvent(r.Context(), id)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, registrations)
}

func (a *API) handleDeleteRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid event id"})
		return
	}
	actor := actorFrom(r.Context())
	profile, err := a.users.GetProfile(r.Context(), actor.ID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := a.registrations.DeleteRegistration(r.Context(), profile.ID, id); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteRegistrationByID is the admin surface for removing a single
// registration directly.
func (a *API) handleDeleteRegistrationByID(w http.ResponseWriter, r *http.Request) {
	if !actorFrom(r.Context()).IsAdmin() {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "admin only"})
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid registration id"})
		return
	}
	if err := a.registrations.DeleteRegistrationByID(r.Context(), id); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGatewayWebhook verifies the gateway signature and applies the event.
// The gateway retries on non-2xx, so only genuine processing failures 500.
func (a *API) handleGatewayWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "unreadable body"})
		return
	}
	event, err := gateway.ParseWebhook(payload, r.Header.Get("Stripe-Signature"), a.webhookSecret)
	if err != nil {
		a.log.Warn("webhook signature rejected")
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid signature"})
		return
	}
	if err := a.payments.HandleWebhook(r.Context(), event); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
