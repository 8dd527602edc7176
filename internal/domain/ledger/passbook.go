package ledger

import (
	"sort"
	"time"
)

const (
	descInitialGrant = "Initial plan grant"
	descMonthlyGrant = "Monthly plan grant"
)

func firstOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
}

// BuildPassbook replays plan grants and debits for one client and returns
// the passbook most-recent-first. The running balance is computed over the
// ascending chronological order; grants sort before debits on equal dates
// so a same-day top-up is reflected before it is spent.
//
// Grants use the plan values passed in, i.e. the plan as it is now: a plan
// edit rewrites every historical grant row on the next reconstruction.
func BuildPassbook(registration time.Time, initialTickets, monthlyTickets int, entries []Entry, now time.Time) []PassbookEntry {
	out := make([]PassbookEntry, 0, len(entries)+8)

	out = append(out, PassbookEntry{
		Date:        registration,
		Description: descInitialGrant,
		Delta:       initialTickets,
	})
	for d := firstOfNextMonth(registration); !d.After(now); d = d.AddDate(0, 1, 0) {
		out = append(out, PassbookEntry{
			Date:        d,
			Description: descMonthlyGrant,
			Delta:       monthlyTickets,
		})
	}
	for _, e := range entries {
		out = append(out, PassbookEntry{
			Date:        e.Date,
			Description: e.Description,
			Delta:       -e.TicketCost,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Delta > 0 && out[j].Delta <= 0
	})

	balance := 0
	for i := range out {
		balance += out[i].Delta
		out[i].RunningBalance = balance
	}

	// display order: most recent first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// MonthsToGrant returns the "YYYY-MM" months after grantedThrough up to and
// including the month of now, i.e. the monthly grants not yet folded into
// the live balance.
func MonthsToGrant(grantedThrough string, now time.Time) []string {
	last, err := time.ParseInLocation("2006-01", grantedThrough, now.Location())
	if err != nil {
		return nil
	}
	cur := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var out []string
	for d := last.AddDate(0, 1, 0); !d.After(cur); d = d.AddDate(0, 1, 0) {
		out = append(out, d.Format("2006-01"))
	}
	return out
}
