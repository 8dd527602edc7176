package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/ledger"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/infra/metrics"
)

type Store interface {
	Get(ctx context.Context, kind Kind, id int64) (*Event, error)
	List(ctx context.Context, kind Kind) ([]Event, error)
	Create(ctx context.Context, kind Kind, title, location string, capacity int, heldAt time.Time) (int64, error)
	Update(ctx context.Context, id int64, title, location string, capacity int, heldAt time.Time) error
	Delete(ctx context.Context, id int64) error
	Register(ctx context.Context, eventID, clientID, userID int64, userName string, debit bool) (int, error)
	Applications(ctx context.Context, kind Kind, eventID int64) ([]Application, error)
}

type Notifier interface {
	BalanceExhausted(clientName string)
}

type Service struct {
	store    Store
	ledger   *ledger.Service
	recorder *audit.Recorder
	notifier Notifier
	log      *slog.Logger
}

func NewService(store Store, led *ledger.Service, recorder *audit.Recorder, notifier Notifier, log *slog.Logger) *Service {
	return &Service{store: store, ledger: led, recorder: recorder, notifier: notifier, log: log}
}

// Apply registers a user for a seminar or event. Preconditions run in
// order: the entity must exist, have a free seat, and not already hold an
// application from this user. Online events additionally cost one ticket;
// the debit and the seat commit atomically.
func (s *Service) Apply(ctx context.Context, kind Kind, eventID, clientID, userID int64, userName string) error {
	ev, err := s.store.Get(ctx, kind, eventID)
	if err != nil {
		metrics.EventApplications.WithLabelValues("not_found").Inc()
		return err
	}

	debit := ev.Online()
	var clientName string
	if debit {
		c, err := s.ledger.SyncGrants(ctx, clientID)
		if err != nil {
			return err
		}
		clientName = c.Name
	}

	remaining, err := s.store.Register(ctx, eventID, clientID, userID, userName, debit)
	if err != nil {
		switch {
		case errors.Is(err, ErrAtCapacity):
			metrics.EventApplications.WithLabelValues("at_capacity").Inc()
		case errors.Is(err, ErrDuplicateApplication):
			metrics.EventApplications.WithLabelValues("duplicate").Inc()
		case errors.Is(err, ledger.ErrInsufficientTickets):
			metrics.EventApplications.WithLabelValues("insufficient_tickets").Inc()
			metrics.TicketDebits.WithLabelValues(string(ledger.TypeOnlineEventParticipation), "insufficient").Inc()
		}
		return err
	}
	metrics.EventApplications.WithLabelValues("ok").Inc()
	if debit {
		metrics.TicketDebits.WithLabelValues(string(ledger.TypeOnlineEventParticipation), "ok").Inc()
		s.recorder.Record(ctx, clientID, clientName, audit.ActionTicketDebit,
			fmt.Sprintf("%s: Online participation: %s (-1, remaining %d)", ledger.TypeOnlineEventParticipation, ev.Title, remaining), &clientID)
		if remaining == 0 && s.notifier != nil {
			s.notifier.BalanceExhausted(clientName)
		}
	}

	s.recorder.Record(ctx, userID, userName, audit.ActionEventApply,
		fmt.Sprintf("%s #%d: %s applied (online=%v)", kind, eventID, userName, debit), &clientID)
	return nil
}

func (s *Service) Get(ctx context.Context, kind Kind, id int64) (*Event, error) {
	return s.store.Get(ctx, kind, id)
}

func (s *Service) List(ctx context.Context, kind Kind) ([]Event, error) {
	return s.store.List(ctx, kind)
}

func (s *Service) Applications(ctx context.Context, kind Kind, eventID int64) ([]Application, error) {
	return s.store.Applications(ctx, kind, eventID)
}

func (s *Service) Create(ctx context.Context, kind Kind, title, location string, capacity int, heldAt time.Time) (int64, error) {
	return s.store.Create(ctx, kind, title, location, capacity, heldAt)
}

func (s *Service) Update(ctx context.Context, id int64, title, location string, capacity int, heldAt time.Time) error {
	return s.store.Update(ctx, id, title, location, capacity, heldAt)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
