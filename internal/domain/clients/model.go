package clients

import "time"

// Client is a contracted company. RemainingTickets is the live balance
// debited by the ledger; GrantedThrough is the last "YYYY-MM" month whose
// plan grant has been folded into the balance (advanced lazily on access).
type Client struct {
	ID               int64
	Name             string
	Email            string
	PlanID           int64
	RemainingTickets int
	RegistrationDate time.Time
	GrantedThrough   string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
