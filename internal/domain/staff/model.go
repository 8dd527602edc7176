package staff

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleLawyer     Role = "lawyer"
	RoleAccountant Role = "accountant"
	RoleSupport    Role = "support"
)

// IsBillable reports whether inviting this role into a consultation
// thread consumes a ticket. Only the specialist roles bill.
func (r Role) IsBillable() bool {
	return r == RoleLawyer || r == RoleAccountant
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleLawyer, RoleAccountant, RoleSupport:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

type Member struct {
	ID        int64
	Name      string
	Email     string
	Role      Role
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}
