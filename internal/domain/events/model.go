package events

import (
	"strings"
	"time"
)

type Kind string

const (
	KindSeminar Kind = "seminar"
	KindEvent   Kind = "event"
)

// Event covers both seminars and one-off events; the two differ only in
// which listing they appear under.
type Event struct {
	ID        int64
	Kind      Kind
	Title     string
	Location  string
	Capacity  int
	HeldAt    time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Online reports whether participation is billable. The portal's seed data
// uses the Japanese marker; the English spelling is accepted too.
func (e *Event) Online() bool {
	return e.Location == "オンライン" || strings.EqualFold(e.Location, "online")
}

type Application struct {
	ID        int64
	EventID   int64
	UserID    int64
	ClientID  int64
	UserName  string
	CreatedAt time.Time
}
