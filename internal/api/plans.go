package api

import (
	"fmt"
	"net/http"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/plans"
)

type planInput struct {
	Name           string   `json:"name"`
	MonthlyFee     float64  `json:"monthlyFee"`
	InitialTickets int      `json:"initialTickets"`
	MonthlyTickets int      `json:"monthlyTickets"`
	Permissions    []string `json:"permissions"`
}

func (in planInput) valid() bool {
	return in.Name != "" && in.InitialTickets >= 0 && in.MonthlyTickets >= 0
}

func (h *Handler) listPlans(w http.ResponseWriter, r *http.Request) {
	out, err := h.plans.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getPlan(w http.ResponseWriter, r *http.Request) {
	p, err := h.plans.Get(r.Context(), urlID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) createPlan(w http.ResponseWriter, r *http.Request) {
	var in planInput
	if err := decode(r, &in); err != nil || !in.valid() {
		h.badRequest(w, "invalid plan")
		return
	}
	id, err := h.plans.Create(r.Context(), plans.Plan{
		Name: in.Name, MonthlyFee: in.MonthlyFee,
		InitialTickets: in.InitialTickets, MonthlyTickets: in.MonthlyTickets,
		Permissions: in.Permissions,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionPlanCreate,
		fmt.Sprintf("Plan «%s» created", in.Name), nil)
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// updatePlan edits in place. Ticket-count changes rewrite passbook history
// on the next reconstruction; the UI warns about this, the API does not.
func (h *Handler) updatePlan(w http.ResponseWriter, r *http.Request) {
	var in planInput
	if err := decode(r, &in); err != nil || !in.valid() {
		h.badRequest(w, "invalid plan")
		return
	}
	id := urlID(r)
	err := h.plans.Update(r.Context(), plans.Plan{
		ID: id, Name: in.Name, MonthlyFee: in.MonthlyFee,
		InitialTickets: in.InitialTickets, MonthlyTickets: in.MonthlyTickets,
		Permissions: in.Permissions,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionPlanUpdate,
		fmt.Sprintf("Plan #%d updated", id), nil)
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) deletePlan(w http.ResponseWriter, r *http.Request) {
	id := urlID(r)
	if err := h.plans.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionPlanDelete,
		fmt.Sprintf("Plan #%d deleted", id), nil)
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
