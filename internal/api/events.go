package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/events"
)

type eventInput struct {
	Kind     events.Kind `json:"kind"`
	Title    string      `json:"title"`
	Location string      `json:"location"`
	Capacity int         `json:"capacity"`
	HeldAt   time.Time   `json:"heldAt"`
}

func (h *Handler) listKind(kind events.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.events.List(r.Context(), kind)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, out)
	}
}

func (h *Handler) getKind(kind events.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := h.events.Get(r.Context(), kind, urlID(r))
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, ev)
	}
}

func (h *Handler) applyKind(kind events.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			ClientID int64  `json:"clientId"`
			UserID   int64  `json:"userId"`
			UserName string `json:"userName"`
		}
		if err := decode(r, &in); err != nil || in.UserID == 0 {
			h.badRequest(w, "userId is required")
			return
		}
		if err := h.events.Apply(r.Context(), kind, urlID(r), in.ClientID, in.UserID, in.UserName); err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
	}
}

func (h *Handler) listApplicationsKind(kind events.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.events.Applications(r.Context(), kind, urlID(r))
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, out)
	}
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var in eventInput
	if err := decode(r, &in); err != nil || in.Title == "" || in.Capacity <= 0 {
		h.badRequest(w, "title and a positive capacity are required")
		return
	}
	if in.Kind == "" {
		in.Kind = events.KindEvent
	}
	id, err := h.events.Create(r.Context(), in.Kind, in.Title, in.Location, in.Capacity, in.HeldAt)
	if err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionEventCreate,
		fmt.Sprintf("%s «%s» created", in.Kind, in.Title), nil)
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	var in eventInput
	if err := decode(r, &in); err != nil || in.Title == "" || in.Capacity <= 0 {
		h.badRequest(w, "title and a positive capacity are required")
		return
	}
	id := urlID(r)
	if err := h.events.Update(r.Context(), id, in.Title, in.Location, in.Capacity, in.HeldAt); err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionEventUpdate,
		fmt.Sprintf("Event #%d updated", id), nil)
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id := urlID(r)
	if err := h.events.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionEventDelete,
		fmt.Sprintf("Event #%d deleted", id), nil)
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
