package audit

import (
	"context"
	"log/slog"
)

// Sink is where entries land; *Repo in production, a slice in tests.
type Sink interface {
	Append(ctx context.Context, e Entry) error
}

// Recorder is the single funnel every mutating operation reports through.
// Recording is best-effort: a failed append must never roll back or block
// the mutation it describes, so errors go to the log and nowhere else.
type Recorder struct {
	sink Sink
	log  *slog.Logger
}

func NewRecorder(sink Sink, log *slog.Logger) *Recorder {
	return &Recorder{sink: sink, log: log}
}

func (r *Recorder) Record(ctx context.Context, actorID int64, actorName, action, details string, clientID *int64) {
	if r == nil {
		return
	}
	e := Entry{ActorID: actorID, ActorName: actorName, Action: action, Details: details, ClientID: clientID}
	if err := r.sink.Append(ctx, e); err != nil {
		r.log.Warn("audit append failed", "action", action, "err", err)
	}
}
