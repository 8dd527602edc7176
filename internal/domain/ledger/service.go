package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/clients"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/plans"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/infra/metrics"
)

var ErrInvalidAmount = errors.New("ledger: amount must be a positive integer")

// Store is the persistence surface the engine works against. *Repo is the
// production implementation; tests use an in-memory fake.
type Store interface {
	Client(ctx context.Context, id int64) (*clients.Client, error)
	Plan(ctx context.Context, id int64) (*plans.Plan, error)
	Debit(ctx context.Context, clientID int64, amount int, typ ConsumptionType, description string, relatedID *int64) (int, error)
	Entries(ctx context.Context, clientID int64) ([]Entry, error)
	ApplyGrant(ctx context.Context, clientID int64, oldThrough, newThrough string, delta int) (bool, error)
}

type Notifier interface {
	BalanceExhausted(clientName string)
}

type Service struct {
	store    Store
	recorder *audit.Recorder
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewService(store Store, recorder *audit.Recorder, notifier Notifier, log *slog.Logger) *Service {
	return &Service{store: store, recorder: recorder, notifier: notifier, log: log, now: time.Now}
}

// Debit removes amount tickets from the client's balance and writes the
// consumption log row, atomically. ErrInsufficientTickets means nothing was
// mutated and the caller must not proceed with the dependent action.
func (s *Service) Debit(ctx context.Context, clientID int64, typ ConsumptionType, description string, relatedID *int64, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !typ.Valid() {
		return fmt.Errorf("ledger: unknown consumption type %q", typ)
	}

	c, err := s.SyncGrants(ctx, clientID)
	if err != nil {
		return err
	}

	remaining, err := s.store.Debit(ctx, clientID, amount, typ, description, relatedID)
	if err != nil {
		if errors.Is(err, ErrInsufficientTickets) {
			metrics.TicketDebits.WithLabelValues(string(typ), "insufficient").Inc()
		} else {
			metrics.TicketDebits.WithLabelValues(string(typ), "error").Inc()
		}
		return err
	}
	metrics.TicketDebits.WithLabelValues(string(typ), "ok").Inc()

	// audit after the balance is released, fire-and-forget
	s.recorder.Record(ctx, c.ID, c.Name, audit.ActionTicketDebit,
		fmt.Sprintf("%s: %s (-%d, remaining %d)", typ, description, amount, remaining), &c.ID)

	if remaining == 0 && s.notifier != nil {
		s.notifier.BalanceExhausted(c.Name)
	}
	return nil
}

// Passbook reconstructs the grant/debit history with running balances,
// most recent first. Pending monthly grants are folded into the live
// balance first so the final running balance matches it.
func (s *Service) Passbook(ctx context.Context, clientID int64) ([]PassbookEntry, error) {
	c, err := s.SyncGrants(ctx, clientID)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Plan(ctx, c.PlanID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.Entries(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return BuildPassbook(c.RegistrationDate, p.InitialTickets, p.MonthlyTickets, entries, s.now()), nil
}

// SyncGrants applies any monthly grants that have come due since the
// client's balance was last touched, then returns the fresh record. Grants
// use the plan's current monthly_tickets value.
func (s *Service) SyncGrants(ctx context.Context, clientID int64) (*clients.Client, error) {
	c, err := s.store.Client(ctx, clientID)
	if err != nil {
		return nil, err
	}
	months := MonthsToGrant(c.GrantedThrough, s.now())
	if len(months) == 0 {
		return c, nil
	}
	p, err := s.store.Plan(ctx, c.PlanID)
	if err != nil {
		return nil, err
	}

	delta := len(months) * p.MonthlyTickets
	newThrough := months[len(months)-1]
	ok, err := s.store.ApplyGrant(ctx, clientID, c.GrantedThrough, newThrough, delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost the race: another request granted first
		return s.store.Client(ctx, clientID)
	}
	s.log.Debug("monthly grants applied", "client", clientID, "months", len(months), "delta", delta)

	c.RemainingTickets += delta
	c.GrantedThrough = newThrough
	return c, nil
}
