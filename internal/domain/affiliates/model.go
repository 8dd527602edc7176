package affiliates

import "time"

type Affiliate struct {
	ID             int64
	Name           string
	Email          string
	CommissionRate float64 // fraction of the referred plan's monthly fee
	CreatedAt      time.Time
}

type ReferralStatus string

const (
	ReferralPending  ReferralStatus = "pending"
	ReferralApproved ReferralStatus = "approved"
)

// Referral links an affiliate to a client they brought in. Approval pays
// out once.
type Referral struct {
	ID          int64
	AffiliateID int64
	ClientID    int64
	Status      ReferralStatus
	CreatedAt   time.Time
}

type Payout struct {
	ID          int64
	AffiliateID int64
	ReferralID  int64
	Amount      float64
	CreatedAt   time.Time
}
