package api

import (
	"fmt"
	"net/http"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/staff"
)

func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request) {
	out, err := h.staff.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getStaff(w http.ResponseWriter, r *http.Request) {
	m, err := h.staff.Get(r.Context(), urlID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

func (h *Handler) createStaff(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name  string     `json:"name"`
		Email string     `json:"email"`
		Role  staff.Role `json:"role"`
	}
	if err := decode(r, &in); err != nil || in.Name == "" || !in.Role.Valid() {
		h.badRequest(w, "name and a valid role are required")
		return
	}
	id, err := h.staff.Create(r.Context(), in.Name, in.Email, in.Role)
	if err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionStaffCreate,
		fmt.Sprintf("Staff «%s» created (%s)", in.Name, in.Role), nil)
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) approveStaff(w http.ResponseWriter, r *http.Request) {
	m, err := h.staff.Approve(r.Context(), urlID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionStaffApprove,
		fmt.Sprintf("Staff «%s» approved (%s)", m.Name, m.Role), nil)
	h.writeJSON(w, http.StatusOK, m)
}

func (h *Handler) deleteStaff(w http.ResponseWriter, r *http.Request) {
	id := urlID(r)
	if err := h.staff.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionStaffDelete,
		fmt.Sprintf("Staff #%d deleted", id), nil)
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
