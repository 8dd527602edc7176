package consultations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/ledger"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/staff"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/infra/metrics"
)

// New threads stay open for 90 days, matching the retention the portal
// promises clients.
const ticketLifetime = 90 * 24 * time.Hour

// Store implementations return the post-debit balance from the mutating
// calls so the service can react to an emptied account.
type Store interface {
	CreateWithDebit(ctx context.Context, clientID int64, subject, priority, category string, expires time.Time) (*Ticket, int, error)
	Get(ctx context.Context, id int64) (*Ticket, error)
	List(ctx context.Context, clientID int64) ([]Ticket, error)
	SetStatus(ctx context.Context, id int64, from, to Status) error
	SetAssignee(ctx context.Context, id, staffID int64) error
	AddParticipant(ctx context.Context, ticketID, clientID, staffID int64, staffName string, billable bool) (int, error)
	Participants(ctx context.Context, ticketID int64) ([]Participant, error)
}

type StaffDirectory interface {
	Get(ctx context.Context, id int64) (*staff.Member, error)
}

type Notifier interface {
	NewConsultation(clientName, subject string)
	BalanceExhausted(clientName string)
}

type Service struct {
	store    Store
	ledger   *ledger.Service
	staff    StaffDirectory
	recorder *audit.Recorder
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewService(store Store, led *ledger.Service, dir StaffDirectory, recorder *audit.Recorder, notifier Notifier, log *slog.Logger) *Service {
	return &Service{store: store, ledger: led, staff: dir, recorder: recorder, notifier: notifier, log: log, now: time.Now}
}

// Create opens a consultation thread, paying one ticket. The debit and the
// insert commit together: an insufficient balance leaves no thread.
func (s *Service) Create(ctx context.Context, clientID int64, subject, priority, category string) (*Ticket, error) {
	c, err := s.ledger.SyncGrants(ctx, clientID)
	if err != nil {
		return nil, err
	}

	t, remaining, err := s.store.CreateWithDebit(ctx, clientID, subject, priority, category, s.now().Add(ticketLifetime))
	if err != nil {
		if err == ledger.ErrInsufficientTickets {
			metrics.TicketDebits.WithLabelValues(string(ledger.TypeNewConsultation), "insufficient").Inc()
		}
		return nil, err
	}
	metrics.TicketDebits.WithLabelValues(string(ledger.TypeNewConsultation), "ok").Inc()
	metrics.ConsultationsCreated.Inc()

	s.recorder.Record(ctx, c.ID, c.Name, audit.ActionTicketDebit,
		fmt.Sprintf("%s: New consultation: %s (-1, remaining %d)", ledger.TypeNewConsultation, subject, remaining), &c.ID)
	s.recorder.Record(ctx, c.ID, c.Name, audit.ActionConsultCreate,
		fmt.Sprintf("Consultation #%d: %s", t.ID, subject), &c.ID)
	if s.notifier != nil {
		s.notifier.NewConsultation(c.Name, subject)
		if remaining == 0 {
			s.notifier.BalanceExhausted(c.Name)
		}
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Ticket, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, clientID int64) ([]Ticket, error) {
	return s.store.List(ctx, clientID)
}

func (s *Service) Participants(ctx context.Context, ticketID int64) ([]Participant, error) {
	return s.store.Participants(ctx, ticketID)
}

// Transition advances the one-directional lifecycle.
func (s *Service) Transition(ctx context.Context, id int64, to Status, actorID int64, actorName string) error {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(t.Status, to) {
		return ErrInvalidTransition
	}
	if err := s.store.SetStatus(ctx, id, t.Status, to); err != nil {
		return err
	}
	s.recorder.Record(ctx, actorID, actorName, audit.ActionConsultStatus,
		fmt.Sprintf("Consultation #%d: %s → %s", id, t.Status, to), &t.ClientID)
	return nil
}

func (s *Service) Assign(ctx context.Context, id, staffID int64) error {
	if _, err := s.staff.Get(ctx, staffID); err != nil {
		return err
	}
	return s.store.SetAssignee(ctx, id, staffID)
}

// Invite adds a staff participant to the thread. Specialist roles (lawyer,
// accountant) cost one ticket; everyone else joins free. A failed debit
// aborts the invitation entirely.
func (s *Service) Invite(ctx context.Context, ticketID, staffID int64) error {
	t, err := s.store.Get(ctx, ticketID)
	if err != nil {
		return err
	}
	m, err := s.staff.Get(ctx, staffID)
	if err != nil {
		return err
	}

	billable := m.Role.IsBillable()
	var clientName string
	if billable {
		c, err := s.ledger.SyncGrants(ctx, t.ClientID)
		if err != nil {
			return err
		}
		clientName = c.Name
	}
	remaining, err := s.store.AddParticipant(ctx, ticketID, t.ClientID, staffID, m.Name, billable)
	if err != nil {
		if err == ledger.ErrInsufficientTickets {
			metrics.TicketDebits.WithLabelValues(string(ledger.TypeSpecialistInvite), "insufficient").Inc()
		}
		return err
	}
	if billable {
		metrics.TicketDebits.WithLabelValues(string(ledger.TypeSpecialistInvite), "ok").Inc()
		s.recorder.Record(ctx, t.ClientID, clientName, audit.ActionTicketDebit,
			fmt.Sprintf("%s: Specialist invited: %s (-1, remaining %d)", ledger.TypeSpecialistInvite, m.Name, remaining), &t.ClientID)
		if remaining == 0 && s.notifier != nil {
			s.notifier.BalanceExhausted(clientName)
		}
	}

	s.recorder.Record(ctx, staffID, m.Name, audit.ActionConsultInvite,
		fmt.Sprintf("Consultation #%d: %s joined (billable=%v)", ticketID, m.Name, billable), &t.ClientID)
	return nil
}
