package plans

import "time"

type Plan struct {
	ID             int64
	Name           string
	MonthlyFee     float64
	InitialTickets int
	MonthlyTickets int
	Permissions    []string // client-portal capabilities, see permissions package
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p *Plan) HasPermission(perm string) bool {
	for _, v := range p.Permissions {
		if v == perm {
			return true
		}
	}
	return false
}
