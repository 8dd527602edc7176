package api

import (
	"fmt"
	"net/http"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/consultations"
)

func (h *Handler) createConsultation(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ClientID int64  `json:"clientId"`
		Subject  string `json:"subject"`
		Priority string `json:"priority"`
		Category string `json:"category"`
	}
	if err := decode(r, &in); err != nil || in.ClientID == 0 || in.Subject == "" {
		h.badRequest(w, "clientId and subject are required")
		return
	}
	t, err := h.consults.Create(r.Context(), in.ClientID, in.Subject, in.Priority, in.Category)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) listConsultations(w http.ResponseWriter, r *http.Request) {
	clientID := parseID(r.URL.Query().Get("clientId"))
	out, err := h.consults.List(r.Context(), clientID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getConsultation(w http.ResponseWriter, r *http.Request) {
	t, err := h.consults.Get(r.Context(), urlID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

func (h *Handler) transitionConsultation(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status consultations.Status `json:"status"`
	}
	if err := decode(r, &in); err != nil || in.Status == "" {
		h.badRequest(w, "status is required")
		return
	}
	actorID, actorName := actor(r)
	if err := h.consults.Transition(r.Context(), urlID(r), in.Status, actorID, actorName); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) assignConsultation(w http.ResponseWriter, r *http.Request) {
	var in struct {
		StaffID int64 `json:"staffId"`
	}
	if err := decode(r, &in); err != nil || in.StaffID == 0 {
		h.badRequest(w, "staffId is required")
		return
	}
	id := urlID(r)
	if err := h.consults.Assign(r.Context(), id, in.StaffID); err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionConsultAssign,
		fmt.Sprintf("Consultation #%d assigned to staff #%d", id, in.StaffID), nil)
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) listParticipants(w http.ResponseWriter, r *http.Request) {
	out, err := h.consults.Participants(r.Context(), urlID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) inviteParticipant(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ParticipantID int64 `json:"participantId"`
	}
	if err := decode(r, &in); err != nil || in.ParticipantID == 0 {
		h.badRequest(w, "participantId is required")
		return
	}
	if err := h.consults.Invite(r.Context(), urlID(r), in.ParticipantID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
