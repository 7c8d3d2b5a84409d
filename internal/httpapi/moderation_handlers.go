package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type signalRequest struct {
	TargetID string `json:"target_id"`
	ReasonID int64  `json:"reason_id"`
}

func (a *API) handleSignalUser(w http.ResponseWriter, r *http.Request) {
	var req signalRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	target, err := uuid.Parse(req.TargetID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid target id"})
		return
	}
	signal, err := a.signals.SignalUser(r.Context(), actorFrom(r.Context()), target, req.ReasonID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, signal)
}

func (a *API) handleSignalComment(w http.ResponseWriter, r *http.Request) {
	var req signalRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	target, err := uuid.Parse(req.TargetID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid target id"})
		return
	}
	signal, err := a.signals.SignalComment(r.Context(), actorFrom(r.Context()), target, req.ReasonID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, signal)
}

func (a *API) handleSignalEvent(w http.ResponseWriter, r *http.Request) {
	var req signalRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body"})
		return
	}
	target, err := uuid.Parse(req.TargetID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid target id"})
		return
	}
	signal, err := a.signals.SignalEvent(r.Context(), actorFrom(r.Context()), target, req.ReasonID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, signal)
}

func signalIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

func banParam(r *http.Request) bool {
	return r.URL.Query().Get("ban") == "true"
}

type statusRequest struct {
	Status string `json:"status"`
}

func (a *API) handleUpdateUserSignal(w http.ResponseWriter, r *http.Request) {
	id, ok := signalIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid signal id"})
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "status is required"})
		return
	}
	if err := a.signals.UpdateUserSignalStatus(r.Context(), actorFrom(r.Context()), id, req.Status); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleUpdateCommentSignal(w http.ResponseWriter, r *http.Request) {
	id, ok := signalIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid signal id"})
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "status is required"})
		return
	}
	if err := a.signals.UpdateCommentSignalStatus(r.Context(), actorFrom(r.Context()), id, req.Status); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleUpdateEventSignal(w http.ResponseWriter, r *http.Request) {
	id, ok := signalIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid signal id"})
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "status is required"})
		return
	}
	if err := a.signals.UpdateEventSignalStatus(r.Context(), actorFrom(r.Context()), id, req.Status); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleResolveUserSignal(w http.ResponseWriter, r *http.Request) {
	id, ok := signalIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid signal id"})
		return
	}
	if err := a.moderation.DeleteSignaledUser(r.Context(), actorFrom(r.Context()), id, banParam(r)); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleResolveCommentSignal(w http.ResponseWriter, r *http.Request) {
	id, ok := signalIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid signal id"})
		return
	}
	if err := a.moderation.DeleteSignaledComment(r.Context(), actorFrom(r.Context()), id, banParam(r)); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleResolveEventSignal(w http.ResponseWriter, r *http.Request) {
	id, ok := signalIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid signal id"})
		return
	}
	if err := a.moderation.DeleteSignaledEvent(r.Context(), actorFrom(r.Context()), id, banParam(r)); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleBan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "email is required"})
		return
	}
	if err := a.banned.Ban(r.Context(), actorFrom(r.Context()), req.Email); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleUnban(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "email is required"})
		return
	}
	if err := a.banned.Unban(r.Context(), actorFrom(r.Context()), email); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleCheckBanned(w http.ResponseWriter, r *http.Request) {
	if !actorFrom(r.Context()).IsAdmin() {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "admin only"})
		return
	}
	email := chi.URLParam(r, "email")
	banned, err := a.banned.IsBanned(r.Context(), email)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"banned": banned})
}

func (a *API) handleListBanned(w http.ResponseWriter, r *http.Request) {
	banned, err := a.banned.List(r.Context(), actorFrom(r.Context()), 100, 0)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, banned)
}

func (a *API) handleCreateReason(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &req); err != nil || req.Reason == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "reason is required"})
		return
	}
	reason, err := a.reasons.Create(r.Context(), actorFrom(r.Context()), req.Reason)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, reason)
}

func (a *API) handleListReasons(w http.ResponseWriter, r *http.Request) {
	reasons, err := a.reasons.List(r.Context())
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, reasons)
}

func (a *API) handleDeleteReason(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid reason id"})
		return
	}
	if err := a.reasons.Delete(r.Context(), actorFrom(r.Context()), id); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
