package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type captureSink struct {
	entries []Entry
	err     error
}

func (s *captureSink) Append(_ context.Context, e Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRecordAppends(t *testing.T) {
	sink := &captureSink{}
	r := NewRecorder(sink, discard())

	clientID := int64(7)
	r.Record(context.Background(), 1, "admin", ActionTicketDebit, "one ticket gone", &clientID)

	if len(sink.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(sink.entries))
	}
	e := sink.entries[0]
	if e.Action != ActionTicketDebit || e.ActorName != "admin" || e.ClientID == nil || *e.ClientID != 7 {
		t.Errorf("entry = %+v", e)
	}
}

func TestRecordSwallowsSinkFailure(t *testing.T) {
	sink := &captureSink{err: errors.New("disk on fire")}
	r := NewRecorder(sink, discard())

	// must not panic or surface the failure; the mutation already happened
	r.Record(context.Background(), 1, "admin", ActionClientUpdate, "edit", nil)

	if len(sink.entries) != 0 {
		t.Errorf("entries = %d, want 0", len(sink.entries))
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.Record(context.Background(), 1, "admin", ActionClientUpdate, "edit", nil)
}
