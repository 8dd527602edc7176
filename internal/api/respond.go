package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/affiliates"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/clients"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/consultations"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/events"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/ledger"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/plans"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/staff"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			h.log.Warn("response encode failed", "err", err)
		}
	}
}

// Failure kinds are result values, not exceptions: each sentinel maps to a
// stable machine-readable code the UI branches on.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, clients.ErrNotFound),
		errors.Is(err, plans.ErrNotFound),
		errors.Is(err, staff.ErrNotFound),
		errors.Is(err, consultations.ErrNotFound),
		errors.Is(err, events.ErrNotFound),
		errors.Is(err, affiliates.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ledger.ErrInsufficientTickets):
		return http.StatusConflict, "insufficient_tickets"
	case errors.Is(err, events.ErrAtCapacity):
		return http.StatusConflict, "at_capacity"
	case errors.Is(err, events.ErrDuplicateApplication):
		return http.StatusConflict, "duplicate_application"
	case errors.Is(err, plans.ErrPlanInUse):
		return http.StatusConflict, "plan_in_use"
	case errors.Is(err, clients.ErrInUse):
		return http.StatusConflict, "client_in_use"
	case errors.Is(err, consultations.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, affiliates.ErrAlreadyApproved):
		return http.StatusConflict, "already_approved"
	case errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusBadRequest, "bad_request"
	}
	return http.StatusInternalServerError, "internal"
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "err", err)
	}
	var body errorBody
	body.Error.Code = code
	body.Error.Message = err.Error()
	h.writeJSON(w, status, body)
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	var body errorBody
	body.Error.Code = "bad_request"
	body.Error.Message = msg
	h.writeJSON(w, http.StatusBadRequest, body)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// actor identifies who performed a mutating request for the audit trail.
// Authentication itself lives in front of this service; the gateway passes
// the resolved identity through these headers.
func actor(r *http.Request) (int64, string) {
	id := parseID(r.Header.Get("X-Actor-Id"))
	name := r.Header.Get("X-Actor-Name")
	if name == "" {
		name = "system"
	}
	return id, name
}
