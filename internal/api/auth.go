package api

import (
	"net/http"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/permissions"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/staff"
)

// requirePerm gates a route on the acting staff member's role. The gateway
// in front of this service resolves the session and forwards the role in
// X-Actor-Role; a missing or unknown role fails closed.
func (h *Handler) requirePerm(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := staff.Role(r.Header.Get("X-Actor-Role"))
			if !permissions.HasPermission(role, perm) {
				var body errorBody
				body.Error.Code = "forbidden"
				body.Error.Message = "missing permission: " + perm
				h.writeJSON(w, http.StatusForbidden, body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
