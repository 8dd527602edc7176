package audit

import "time"

// Entry is one immutable row of the compliance trail. Entries are only
// ever appended, never updated or deleted.
type Entry struct {
	ID        int64
	Timestamp time.Time
	ActorID   int64
	ActorName string
	Action    string
	Details   string
	ClientID  *int64
}

// Action tags. Free-text details carry the specifics.
const (
	ActionTicketDebit      = "ticket.debit"
	ActionClientCreate     = "client.create"
	ActionClientUpdate     = "client.update"
	ActionClientDelete     = "client.delete"
	ActionClientPlanChange = "client.plan_change"
	ActionPlanCreate       = "plan.create"
	ActionPlanUpdate       = "plan.update"
	ActionPlanDelete       = "plan.delete"
	ActionStaffCreate      = "staff.create"
	ActionStaffApprove     = "staff.approve"
	ActionStaffDelete      = "staff.delete"
	ActionConsultCreate    = "consultation.create"
	ActionConsultStatus    = "consultation.status"
	ActionConsultAssign    = "consultation.assign"
	ActionConsultInvite    = "consultation.invite"
	ActionEventCreate      = "event.create"
	ActionEventUpdate      = "event.update"
	ActionEventDelete      = "event.delete"
	ActionEventApply       = "event.apply"
	ActionReferralApprove  = "referral.approve"
)

// Filter narrows audit queries; zero values mean "any".
type Filter struct {
	Query  string
	Action string
	From   time.Time
	To     time.Time
}
