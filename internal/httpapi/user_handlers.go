package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rallyhq/rally-core/internal/model"
	"github.com/rallyhq/rally-core/internal/service"
)

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	IsPlanner bool   `json:"is_planner"`
}

func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		IsPlanner: user.IsPlanner,
	}
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		PhoneNumber string `json:"phone_number"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		IsPlanner   bool   `json:"is_planner"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "email and password are required"})
		return
	}

	user, err := a.users.Create(r.Context(), service.CreateUserInput{
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		IsPlanner:   req.IsPlanner,
	})
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}

	user, role, err := a.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	token, err := a.auth.IssueToken(user, role)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	user, err := a.users.GetByID(r.Context(), actor.ID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid user id"})
		return
	}
	if err := a.moderation.DeleteUser(r.Context(), actorFrom(r.Context()), id); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	link, err := a.payments.Onboard(r.Context(), actor.ID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"onboarding_url": link})
}

func (a *API) handleListPayments(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	payments, err := a.payments.ListByBuyer(r.Context(), actor.ID, 50, 0)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}
