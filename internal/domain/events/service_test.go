package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/clients"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/ledger"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/plans"
)

type memStore struct {
	mu           sync.Mutex
	events       map[int64]*Event
	applications []Application
	clients      map[int64]*clients.Client
	plan         *plans.Plan
	logEntries   []ledger.Entry
	nextID       int64
}

func newMemStore() *memStore {
	return &memStore{
		events:  map[int64]*Event{},
		clients: map[int64]*clients.Client{},
		plan:    &plans.Plan{ID: 1, InitialTickets: 5, MonthlyTickets: 5},
	}
}

func (s *memStore) addClient(id int64, balance int) {
	s.clients[id] = &clients.Client{
		ID: id, Name: "client", PlanID: 1,
		RemainingTickets: balance,
		RegistrationDate: time.Now(),
		GrantedThrough:   time.Now().Format("2006-01"),
	}
}

// ledger.Store

func (s *memStore) Client(_ context.Context, id int64) (*clients.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, clients.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) Plan(_ context.Context, _ int64) (*plans.Plan, error) {
	cp := *s.plan
	return &cp, nil
}

func (s *memStore) debitLocked(clientID int64, amount int, typ ledger.ConsumptionType, description string, relatedID *int64) (int, error) {
	c, ok := s.clients[clientID]
	if !ok {
		return 0, clients.ErrNotFound
	}
	if c.RemainingTickets < amount {
		return 0, ledger.ErrInsufficientTickets
	}
	c.RemainingTickets -= amount
	s.logEntries = append(s.logEntries, ledger.Entry{
		ClientID: clientID, Date: time.Now(), Type: typ,
		Description: description, TicketCost: amount, RelatedID: relatedID,
	})
	return c.RemainingTickets, nil
}

func (s *memStore) Debit(_ context.Context, clientID int64, amount int, typ ledger.ConsumptionType, description string, relatedID *int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debitLocked(clientID, amount, typ, description, relatedID)
}

func (s *memStore) Entries(_ context.Context, _ int64) ([]ledger.Entry, error) { return nil, nil }

func (s *memStore) ApplyGrant(_ context.Context, clientID int64, oldThrough, newThrough string, delta int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok || c.GrantedThrough != oldThrough {
		return false, nil
	}
	c.RemainingTickets += delta
	c.GrantedThrough = newThrough
	return true, nil
}

// events.Store

func (s *memStore) Get(_ context.Context, kind Kind, id int64) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.Kind != kind {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) List(_ context.Context, _ Kind) ([]Event, error) { return nil, nil }

func (s *memStore) Create(_ context.Context, kind Kind, title, location string, capacity int, heldAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.events[s.nextID] = &Event{ID: s.nextID, Kind: kind, Title: title, Location: location, Capacity: capacity, HeldAt: heldAt}
	return s.nextID, nil
}

func (s *memStore) Update(_ context.Context, _ int64, _ string, _ string, _ int, _ time.Time) error {
	return nil
}
func (s *memStore) Delete(_ context.Context, _ int64) error { return nil }

func (s *memStore) Register(_ context.Context, eventID, clientID, userID int64, userName string, debit bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return 0, ErrNotFound
	}
	count, dup := 0, false
	for _, a := range s.applications {
		if a.EventID != eventID {
			continue
		}
		count++
		dup = dup || a.UserID == userID
	}
	// same precedence as the SQL path: capacity first, then duplicate
	if count >= e.Capacity {
		return 0, ErrAtCapacity
	}
	if dup {
		return 0, ErrDuplicateApplication
	}
	var remaining int
	if debit {
		var err error
		remaining, err = s.debitLocked(clientID, 1, ledger.TypeOnlineEventParticipation, userName, &eventID)
		if err != nil {
			return 0, err
		}
	}
	s.applications = append(s.applications, Application{EventID: eventID, UserID: userID, ClientID: clientID, UserName: userName})
	return remaining, nil
}

func (s *memStore) Applications(_ context.Context, kind Kind, eventID int64) ([]Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok || e.Kind != kind {
		return nil, nil
	}
	var out []Application
	for _, a := range s.applications {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memSink struct{ entries []audit.Entry }

func (s *memSink) Append(_ context.Context, e audit.Entry) error {
	s.entries = append(s.entries, e)
	return nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type memNotifier struct {
	exhausted []string
}

func (n *memNotifier) BalanceExhausted(clientName string) {
	n.exhausted = append(n.exhausted, clientName)
}

func newTestService(store *memStore) *Service {
	svc, _, _ := newNotifyingService(store)
	return svc
}

func newNotifyingService(store *memStore) (*Service, *memSink, *memNotifier) {
	sink := &memSink{}
	notifier := &memNotifier{}
	recorder := audit.NewRecorder(sink, discard())
	led := ledger.NewService(store, recorder, nil, discard())
	return NewService(store, led, recorder, notifier, discard()), sink, notifier
}

func TestOnlineApplicationDebits(t *testing.T) {
	store := newMemStore()
	store.addClient(1, 1)
	svc := newTestService(store)
	ctx := context.Background()

	id, _ := store.Create(ctx, KindSeminar, "労務セミナー", "オンライン", 1, time.Now())

	if err := svc.Apply(ctx, KindSeminar, id, 1, 101, "Tanaka"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if store.clients[1].RemainingTickets != 0 {
		t.Errorf("balance = %d, want 0", store.clients[1].RemainingTickets)
	}
	apps, _ := store.Applications(ctx, KindSeminar, id)
	if len(apps) != 1 {
		t.Errorf("applications = %d, want 1", len(apps))
	}
	if len(store.logEntries) != 1 || store.logEntries[0].Type != ledger.TypeOnlineEventParticipation {
		t.Fatalf("log = %+v, want one online_event_participation entry", store.logEntries)
	}
}

func TestOfflineApplicationIsFree(t *testing.T) {
	store := newMemStore()
	store.addClient(1, 0)
	svc := newTestService(store)
	ctx := context.Background()

	id, _ := store.Create(ctx, KindSeminar, "会場セミナー", "東京会場", 10, time.Now())

	// zero balance must not matter for venue events
	if err := svc.Apply(ctx, KindSeminar, id, 1, 101, "Tanaka"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(store.logEntries) != 0 {
		t.Errorf("log entries = %d, want 0", len(store.logEntries))
	}
}

func TestCapacityBeatsBalance(t *testing.T) {
	store := newMemStore()
	store.addClient(1, 1)
	store.addClient(2, 100)
	svc := newTestService(store)
	ctx := context.Background()

	id, _ := store.Create(ctx, KindSeminar, "満席セミナー", "オンライン", 1, time.Now())

	if err := svc.Apply(ctx, KindSeminar, id, 1, 101, "first"); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	// richest client still bounces off a full room
	err := svc.Apply(ctx, KindSeminar, id, 2, 102, "second")
	if !errors.Is(err, ErrAtCapacity) {
		t.Fatalf("err = %v, want ErrAtCapacity", err)
	}
	if store.clients[2].RemainingTickets != 100 {
		t.Errorf("balance = %d, want untouched 100", store.clients[2].RemainingTickets)
	}
}

func TestDuplicateApplicationRejected(t *testing.T) {
	store := newMemStore()
	store.addClient(1, 10)
	svc := newTestService(store)
	ctx := context.Background()

	id, _ := store.Create(ctx, KindEvent, "交流会", "大阪会場", 10, time.Now())

	if err := svc.Apply(ctx, KindEvent, id, 1, 101, "Tanaka"); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	err := svc.Apply(ctx, KindEvent, id, 1, 101, "Tanaka")
	if !errors.Is(err, ErrDuplicateApplication) {
		t.Fatalf("err = %v, want ErrDuplicateApplication", err)
	}
	apps, _ := store.Applications(ctx, KindEvent, id)
	if len(apps) != 1 {
		t.Errorf("applications = %d, want 1", len(apps))
	}
}

func TestInsufficientTicketsLeavesNoSeat(t *testing.T) {
	store := newMemStore()
	store.addClient(1, 0)
	svc := newTestService(store)
	ctx := context.Background()

	id, _ := store.Create(ctx, KindSeminar, "オンライン研修", "Online", 10, time.Now())

	err := svc.Apply(ctx, KindSeminar, id, 1, 101, "Tanaka")
	if !errors.Is(err, ledger.ErrInsufficientTickets) {
		t.Fatalf("err = %v, want ErrInsufficientTickets", err)
	}
	apps, _ := store.Applications(ctx, KindSeminar, id)
	if len(apps) != 0 {
		t.Errorf("applications = %d, want 0", len(apps))
	}
}

func TestKindMismatchIsNotFound(t *testing.T) {
	store := newMemStore()
	store.addClient(1, 5)
	svc := newTestService(store)
	ctx := context.Background()

	id, _ := store.Create(ctx, KindSeminar, "セミナー", "オンライン", 10, time.Now())

	err := svc.Apply(ctx, KindEvent, id, 1, 101, "Tanaka")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for wrong kind", err)
	}
}

func TestOnlineApplicationEmptyingBalanceWarns(t *testing.T) {
	store := newMemStore()
	store.addClient(1, 1)
	svc, sink, notifier := newNotifyingService(store)
	ctx := context.Background()

	id, _ := store.Create(ctx, KindSeminar, "オンライン研修", "Online", 10, time.Now())

	if err := svc.Apply(ctx, KindSeminar, id, 1, 101, "Tanaka"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(notifier.exhausted) != 1 || notifier.exhausted[0] != "client" {
		t.Fatalf("exhausted = %v, want one warning for client", notifier.exhausted)
	}
	var debits int
	for _, e := range sink.entries {
		if e.Action == audit.ActionTicketDebit {
			debits++
		}
	}
	if debits != 1 {
		t.Errorf("ticket.debit audit entries = %d, want 1", debits)
	}
}

func TestOnlineApplicationLeavingBalanceDoesNotWarn(t *testing.T) {
	store := newMemStore()
	store.addClient(1, 2)
	svc, _, notifier := newNotifyingService(store)
	ctx := context.Background()

	id, _ := store.Create(ctx, KindSeminar, "オンライン研修", "Online", 10, time.Now())

	if err := svc.Apply(ctx, KindSeminar, id, 1, 101, "Tanaka"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if len(notifier.exhausted) != 0 {
		t.Errorf("exhausted = %v, want none at balance 1", notifier.exhausted)
	}
}

func TestApplicationsPinnedToKind(t *testing.T) {
	store := newMemStore()
	store.addClient(1, 5)
	svc := newTestService(store)
	ctx := context.Background()

	id, _ := store.Create(ctx, KindSeminar, "会場セミナー", "東京会場", 10, time.Now())
	if err := svc.Apply(ctx, KindSeminar, id, 1, 101, "Tanaka"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	apps, err := svc.Applications(ctx, KindSeminar, id)
	if err != nil || len(apps) != 1 {
		t.Fatalf("seminar applications = %d (%v), want 1", len(apps), err)
	}
	// the same id queried as an event must come back empty
	apps, err = svc.Applications(ctx, KindEvent, id)
	if err != nil || len(apps) != 0 {
		t.Fatalf("event applications = %d (%v), want 0", len(apps), err)
	}
}

func TestOnlineMarker(t *testing.T) {
	tests := []struct {
		location string
		want     bool
	}{
		{"オンライン", true},
		{"Online", true},
		{"online", true},
		{"ONLINE", true},
		{"東京会場", false},
		{"", false},
	}
	for _, tt := range tests {
		e := &Event{Location: tt.location}
		if got := e.Online(); got != tt.want {
			t.Errorf("Online(%q) = %v, want %v", tt.location, got, tt.want)
		}
	}
}
