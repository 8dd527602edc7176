package ledger

import "time"

// ConsumptionType tags what a debit paid for.
type ConsumptionType string

const (
	TypeNewConsultation          ConsumptionType = "new_consultation"
	TypeSpecialistInvite         ConsumptionType = "specialist_invite"
	TypeOnlineEventParticipation ConsumptionType = "online_event_participation"
)

func (t ConsumptionType) Valid() bool {
	switch t {
	case TypeNewConsultation, TypeSpecialistInvite, TypeOnlineEventParticipation:
		return true
	}
	return false
}

// Entry is one immutable debit row. Written only by the atomic debit,
// never updated or deleted.
type Entry struct {
	ID          int64
	ClientID    int64
	Date        time.Time
	Type        ConsumptionType
	Description string
	TicketCost  int
	RelatedID   *int64
}

// PassbookEntry is one reconstructed passbook row: a grant (positive
// delta) or a debit (negative delta) with the balance after it.
type PassbookEntry struct {
	Date           time.Time
	Description    string
	Delta          int
	RunningBalance int
}
