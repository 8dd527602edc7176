package api

import (
	"fmt"
	"net/http"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/permissions"
)

type clientInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	PlanID int64  `json:"planId"`
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	out, err := h.clients.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.clients.Get(r.Context(), urlID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var in clientInput
	if err := decode(r, &in); err != nil || in.Name == "" || in.PlanID == 0 {
		h.badRequest(w, "name and planId are required")
		return
	}
	// resolve the plan first so an unknown planId reports the plan as
	// missing, not the client
	if _, err := h.plans.Get(r.Context(), in.PlanID); err != nil {
		h.writeError(w, err)
		return
	}
	c, err := h.clients.Create(r.Context(), in.Name, in.Email, in.PlanID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionClientCreate,
		fmt.Sprintf("Client «%s» registered on plan %d", c.Name, c.PlanID), &c.ID)
	h.writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	var in clientInput
	if err := decode(r, &in); err != nil || in.Name == "" {
		h.badRequest(w, "name is required")
		return
	}
	id := urlID(r)
	if err := h.clients.Update(r.Context(), id, in.Name, in.Email); err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionClientUpdate,
		fmt.Sprintf("Client #%d updated", id), &id)
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	id := urlID(r)
	if err := h.clients.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionClientDelete,
		fmt.Sprintf("Client #%d deleted", id), &id)
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// clientCapabilities tells the portal frontend which screens the client's
// plan unlocks.
func (h *Handler) clientCapabilities(w http.ResponseWriter, r *http.Request) {
	c, err := h.clients.Get(r.Context(), urlID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	plan, err := h.plans.Get(r.Context(), c.PlanID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	caps := map[string]bool{}
	for _, perm := range []string{
		permissions.ClientPermBilling,
		permissions.ClientPermMaterials,
		permissions.ClientPermSeminars,
		permissions.ClientPermConsultations,
	} {
		caps[perm] = permissions.HasClientPermission(plan, perm)
	}
	h.writeJSON(w, http.StatusOK, caps)
}

// changeClientPlan switches immediately; there is no pending-change state.
func (h *Handler) changeClientPlan(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PlanID int64 `json:"planId"`
	}
	if err := decode(r, &in); err != nil || in.PlanID == 0 {
		h.badRequest(w, "planId is required")
		return
	}
	id := urlID(r)
	if _, err := h.plans.Get(r.Context(), in.PlanID); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.clients.ChangePlan(r.Context(), id, in.PlanID); err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionClientPlanChange,
		fmt.Sprintf("Client #%d moved to plan %d", id, in.PlanID), &id)
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
