package api

import (
	"errors"
	"net/http"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/ledger"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/report"
)

type debitInput struct {
	Type        ledger.ConsumptionType `json:"type"`
	Description string                 `json:"description"`
	RelatedID   *int64                 `json:"relatedId"`
	Amount      *int                   `json:"amount"`
}

func (h *Handler) debitTickets(w http.ResponseWriter, r *http.Request) {
	var in debitInput
	if err := decode(r, &in); err != nil {
		h.badRequest(w, "invalid body")
		return
	}
	// an omitted amount defaults to one ticket; an explicit zero or
	// negative is rejected downstream
	amount := 1
	if in.Amount != nil {
		amount = *in.Amount
	}
	if !in.Type.Valid() {
		h.badRequest(w, "unknown consumption type")
		return
	}

	err := h.ledger.Debit(r.Context(), urlID(r), in.Type, in.Description, in.RelatedID, amount)
	if err != nil {
		// insufficient balance is an expected outcome, not a transport error
		if errors.Is(err, ledger.ErrInsufficientTickets) {
			h.writeJSON(w, http.StatusOK, map[string]any{"success": false, "reason": "insufficient_tickets"})
			return
		}
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) passbook(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.Passbook(r.Context(), urlID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		data, err := report.Passbook(entries)
		if err != nil {
			h.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="passbook.xlsx"`)
		_, _ = w.Write(data)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}
