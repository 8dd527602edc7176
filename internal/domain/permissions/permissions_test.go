package permissions

import (
	"testing"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/plans"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/staff"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role staff.Role
		perm string
		want bool
	}{
		{staff.RoleAdmin, PermManagePlans, true},
		{staff.RoleAdmin, PermViewAuditLogs, true},
		{staff.RoleManager, PermManageClients, true},
		{staff.RoleManager, PermManagePlans, false},
		{staff.RoleManager, PermViewAuditLogs, false},
		{staff.RoleLawyer, PermHandleTickets, true},
		{staff.RoleLawyer, PermManageStaff, false},
		{staff.RoleSupport, PermApproveReferral, false},
		{staff.Role("intruder"), PermHandleTickets, false},
	}
	for _, tt := range tests {
		if got := HasPermission(tt.role, tt.perm); got != tt.want {
			t.Errorf("HasPermission(%s, %s) = %v, want %v", tt.role, tt.perm, got, tt.want)
		}
	}
}

func TestHasClientPermission(t *testing.T) {
	premium := &plans.Plan{Permissions: []string{ClientPermConsultations, ClientPermSeminars, ClientPermBilling}}
	light := &plans.Plan{Permissions: []string{ClientPermConsultations}}

	if !HasClientPermission(premium, ClientPermBilling) {
		t.Error("premium plan should see billing")
	}
	if HasClientPermission(light, ClientPermBilling) {
		t.Error("light plan should not see billing")
	}
	if HasClientPermission(light, "unknown") {
		t.Error("unknown capability should be denied")
	}
	if HasClientPermission(nil, ClientPermBilling) {
		t.Error("nil plan should be denied")
	}
}
