// Package permissions is the authorization gate: static role→permission
// sets for staff and per-plan capability sets for client portals. Both are
// plain membership checks; the sets are small enough that nothing smarter
// is warranted.
package permissions

import (
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/plans"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/staff"
)

// Staff permissions.
const (
	PermManageClients   = "manage_clients"
	PermManagePlans     = "manage_plans"
	PermManageStaff     = "manage_staff"
	PermManageEvents    = "manage_events"
	PermViewAuditLogs   = "view_audit_logs"
	PermHandleTickets   = "handle_tickets"
	PermApproveReferral = "approve_referrals"
)

// Client-plan capabilities.
const (
	ClientPermBilling       = "billing"
	ClientPermMaterials     = "materials"
	ClientPermSeminars      = "seminars"
	ClientPermConsultations = "consultations"
)

var rolePermissions = map[staff.Role]map[string]bool{
	staff.RoleAdmin: {
		PermManageClients: true, PermManagePlans: true, PermManageStaff: true,
		PermManageEvents: true, PermViewAuditLogs: true, PermHandleTickets: true,
		PermApproveReferral: true,
	},
	staff.RoleManager: {
		PermManageClients: true, PermManageEvents: true,
		PermHandleTickets: true, PermApproveReferral: true,
	},
	staff.RoleLawyer:     {PermHandleTickets: true},
	staff.RoleAccountant: {PermHandleTickets: true},
	staff.RoleSupport:    {PermHandleTickets: true},
}

func HasPermission(role staff.Role, perm string) bool {
	return rolePermissions[role][perm]
}

func HasClientPermission(plan *plans.Plan, perm string) bool {
	if plan == nil {
		return false
	}
	return plan.HasPermission(perm)
}
