package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/rallyhq/rally-core/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps the domain error taxonomy to HTTP statuses. Internal
// details never reach the client.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case apperr.KindForbidden:
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case apperr.KindConflict:
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case apperr.KindContentRejected:
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case apperr.KindGateway:
		log.Error("gateway failure", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "payment gateway unavailable"})
	default:
		log.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
