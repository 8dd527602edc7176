package api

import (
	"net/http"
	"time"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/report"
)

func (h *Handler) searchAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := audit.Filter{
		Query:  q.Get("q"),
		Action: q.Get("action"),
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.badRequest(w, "from must be RFC3339")
			return
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.badRequest(w, "to must be RFC3339")
			return
		}
		f.To = t
	}

	entries, err := h.audit.Search(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if q.Get("format") == "xlsx" {
		data, err := report.AuditLog(entries)
		if err != nil {
			h.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="audit-logs.xlsx"`)
		_, _ = w.Write(data)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}
