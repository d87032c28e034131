package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/yusufkecer/body-measurements-backend/internal/domain"
	"github.com/yusufkecer/body-measurements-backend/internal/service"
)

// replaceRequest accepts a row as returned by Get. The read-only fields are
// ignored apart from id, which must match the path.
type replaceRequest struct {
	domain.MeasurementInput
	ID        string          `json:"id"`
	UserID    json.RawMessage `json:"user_id"`
	CreatedAt json.RawMessage `json:"created_at"`
	UpdatedAt json.RawMessage `json:"updated_at"`
}

type MeasurementHandler struct {
	svc *service.MeasurementService
}

func NewMeasurementHandler(svc *service.MeasurementService) *MeasurementHandler {
	return &MeasurementHandler{svc: svc}
}

func (h *MeasurementHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	order := service.Order(strings.ToLower(r.URL.Query().Get("order")))
	switch order {
	case "":
		order = service.Ascending
	case service.Ascending, service.Descending:
	default:
		writeError(w, http.StatusBadRequest, "order must be asc or desc")
		return
	}

	measurements, err := h.svc.List(r.Context(), sess, order)
	if err != nil {
		writeServiceError(w, r, err, "failed to list measurements")
		return
	}
	if measurements == nil {
		measurements = []domain.Measurement{}
	}

	writeJSON(w, http.StatusOK, measurements)
}

func (h *MeasurementHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	m, err := h.svc.Get(r.Context(), sess, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err, "failed to get measurement")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *MeasurementHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	var in domain.MeasurementInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.svc.Create(r.Context(), sess, in)
	if err != nil {
		writeServiceError(w, r, err, "failed to create measurement")
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

func (h *MeasurementHandler) Replace(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]
	var req replaceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID != "" && req.ID != id {
		writeError(w, http.StatusBadRequest, "id does not match the path")
		return
	}

	m, err := h.svc.Replace(r.Context(), sess, id, req.MeasurementInput)
	if err != nil {
		writeServiceError(w, r, err, "failed to update measurement")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (h *MeasurementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), sess, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err, "failed to delete measurement")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MeasurementHandler) Changes(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.Changes(r.Context(), sess)
	if err != nil {
		writeServiceError(w, r, err, "failed to summarize measurements")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Forecast projects every metric forward. Query parameters: weeks (integer),
// until (YYYY-MM-DD, wins over weeks) and target_weight (kg).
func (h *MeasurementHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var req service.ForecastRequest

	if v := q.Get("weeks"); v != "" {
		weeks, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "weeks must be an integer")
			return
		}
		req.Weeks = &weeks
	}
	if v := q.Get("until"); v != "" {
		until, err := domain.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "until must be formatted as "+domain.DateLayout)
			return
		}
		req.Until = &until
	}
	if v := q.Get("target_weight"); v != "" {
		target, err := strconv.ParseFloat(v, 64)
		if err != nil || !(target > 0) || math.IsInf(target, 0) {
			writeError(w, http.StatusBadRequest, "target_weight must be a positive number")
			return
		}
		req.TargetWeight = &target
	}

	forecast, err := h.svc.Forecast(r.Context(), sess, req)
	if err != nil {
		writeServiceError(w, r, err, "failed to build forecast")
		return
	}

	writeJSON(w, http.StatusOK, forecast)
}
