package consultations

import (
	"errors"
	"time"
)

type Status string

const (
	StatusReceived   Status = "received"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var ErrInvalidTransition = errors.New("consultations: invalid status transition")

// CanTransition enforces the one-directional lifecycle
// received → in_progress → completed. No reopening.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusReceived:
		return to == StatusInProgress
	case StatusInProgress:
		return to == StatusCompleted
	}
	return false
}

// Ticket is one consultation thread. Creating it costs one ticket.
type Ticket struct {
	ID             int64
	ClientID       int64
	Subject        string
	Priority       string
	Category       string
	Status         Status
	AssigneeID     *int64
	ExpirationDate time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Participant struct {
	ID        int64
	TicketID  int64
	StaffID   int64
	Billable  bool
	CreatedAt time.Time
}
