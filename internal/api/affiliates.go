package api

import (
	"fmt"
	"net/http"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
)

func (h *Handler) listAffiliates(w http.ResponseWriter, r *http.Request) {
	out, err := h.affiliates.ListAffiliates(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createReferral(w http.ResponseWriter, r *http.Request) {
	var in struct {
		AffiliateID int64 `json:"affiliateId"`
		ClientID    int64 `json:"clientId"`
	}
	if err := decode(r, &in); err != nil || in.AffiliateID == 0 || in.ClientID == 0 {
		h.badRequest(w, "affiliateId and clientId are required")
		return
	}
	id, err := h.affiliates.CreateReferral(r.Context(), in.AffiliateID, in.ClientID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) approveReferral(w http.ResponseWriter, r *http.Request) {
	id := urlID(r)
	payout, err := h.affiliates.Approve(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	actorID, actorName := actor(r)
	h.recorder.Record(r.Context(), actorID, actorName, audit.ActionReferralApprove,
		fmt.Sprintf("Referral #%d approved, payout %.2f", id, payout.Amount), nil)
	h.writeJSON(w, http.StatusOK, payout)
}

func (h *Handler) listPayouts(w http.ResponseWriter, r *http.Request) {
	affiliateID := parseID(r.URL.Query().Get("affiliateId"))
	out, err := h.affiliates.ListPayouts(r.Context(), affiliateID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}
