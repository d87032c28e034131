package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yusufkecer/body-measurements-backend/internal/domain"
	"github.com/yusufkecer/body-measurements-backend/internal/logger"
	"github.com/yusufkecer/body-measurements-backend/internal/middleware"
	"github.com/yusufkecer/body-measurements-backend/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service errors to responses. Unexpected errors are
// logged and hidden behind fallback.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, service.ErrNotFound.Error())
	case errors.Is(err, service.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, "not enough data to make predictions: add at least two measurements")
	default:
		logger.Error("%s %s [%s]: %s: %v", r.Method, r.URL.Path, middleware.RequestIDFromContext(r.Context()), fallback, err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

// session returns the authenticated caller, writing a 401 when the request
// did not pass through the auth middleware.
func session(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	s, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
	}
	return s, ok
}
