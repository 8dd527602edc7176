package ledger

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
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/plans"
)

// memStore mirrors the production repo's atomicity with a single mutex.
type memStore struct {
	mu      sync.Mutex
	clients map[int64]*clients.Client
	plans   map[int64]*plans.Plan
	entries []Entry
	nextID  int64
}

func newMemStore() *memStore {
	return &memStore{
		clients: map[int64]*clients.Client{},
		plans:   map[int64]*plans.Plan{},
	}
}

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

func (s *memStore) Plan(_ context.Context, id int64) (*plans.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, plans.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) Debit(_ context.Context, clientID int64, amount int, typ ConsumptionType, description string, relatedID *int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return 0, clients.ErrNotFound
	}
	if c.RemainingTickets < amount {
		return 0, ErrInsufficientTickets
	}
	c.RemainingTickets -= amount
	s.nextID++
	s.entries = append(s.entries, Entry{
		ID: s.nextID, ClientID: clientID, Date: time.Now(),
		Type: typ, Description: description, TicketCost: amount, RelatedID: relatedID,
	})
	return c.RemainingTickets, nil
}

func (s *memStore) Entries(_ context.Context, clientID int64) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for _, e := range s.entries {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) ApplyGrant(_ context.Context, clientID int64, oldThrough, newThrough string, delta int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return false, nil
	}
	if c.GrantedThrough != oldThrough {
		return false, nil
	}
	c.RemainingTickets += delta
	c.GrantedThrough = newThrough
	return true, nil
}

type memSink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (s *memSink) Append(_ context.Context, e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(store *memStore) (*Service, *memSink) {
	sink := &memSink{}
	svc := NewService(store, audit.NewRecorder(sink, discard()), nil, discard())
	return svc, sink
}

func seed(store *memStore, balance int, through string) {
	store.plans[1] = &plans.Plan{ID: 1, Name: "standard", InitialTickets: 5, MonthlyTickets: 5}
	store.clients[1] = &clients.Client{
		ID: 1, Name: "Sample Co.", PlanID: 1,
		RemainingTickets: balance,
		RegistrationDate: time.Now().AddDate(0, 0, -1),
		GrantedThrough:   through,
	}
}

func currentMonth() string { return time.Now().Format("2006-01") }

func TestDebitSuccess(t *testing.T) {
	store := newMemStore()
	seed(store, 1, currentMonth())
	svc, sink := newTestService(store)

	if err := svc.Debit(context.Background(), 1, TypeNewConsultation, "first", nil, 1); err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if got := store.clients[1].RemainingTickets; got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}
	if len(store.entries) != 1 || store.entries[0].TicketCost != 1 {
		t.Fatalf("entries = %+v, want one entry with cost 1", store.entries)
	}
	if len(sink.entries) != 1 || sink.entries[0].Action != audit.ActionTicketDebit {
		t.Errorf("audit entries = %+v, want one debit record", sink.entries)
	}
}

func TestDebitInsufficientLeavesNoTrace(t *testing.T) {
	store := newMemStore()
	seed(store, 1, currentMonth())
	svc, _ := newTestService(store)
	ctx := context.Background()

	if err := svc.Debit(ctx, 1, TypeNewConsultation, "first", nil, 1); err != nil {
		t.Fatalf("first debit failed: %v", err)
	}
	err := svc.Debit(ctx, 1, TypeNewConsultation, "second", nil, 1)
	if !errors.Is(err, ErrInsufficientTickets) {
		t.Fatalf("err = %v, want ErrInsufficientTickets", err)
	}
	if got := store.clients[1].RemainingTickets; got != 0 {
		t.Errorf("balance = %d, want 0 (no mutation on failure)", got)
	}
	if len(store.entries) != 1 {
		t.Errorf("entries = %d, want 1 (no log row on failure)", len(store.entries))
	}
}

func TestDebitRejectsBadInput(t *testing.T) {
	store := newMemStore()
	seed(store, 10, currentMonth())
	svc, _ := newTestService(store)
	ctx := context.Background()

	if err := svc.Debit(ctx, 1, TypeNewConsultation, "zero", nil, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("amount 0: err = %v, want ErrInvalidAmount", err)
	}
	if err := svc.Debit(ctx, 1, TypeNewConsultation, "negative", nil, -3); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("amount -3: err = %v, want ErrInvalidAmount", err)
	}
	if err := svc.Debit(ctx, 1, ConsumptionType("mystery"), "bad type", nil, 1); err == nil {
		t.Error("unknown type accepted")
	}
	if err := svc.Debit(ctx, 99, TypeNewConsultation, "ghost", nil, 1); !errors.Is(err, clients.ErrNotFound) {
		t.Errorf("missing client: err = %v, want ErrNotFound", err)
	}
	if got := store.clients[1].RemainingTickets; got != 10 {
		t.Errorf("balance = %d, want untouched 10", got)
	}
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	store := newMemStore()
	seed(store, 10, currentMonth())
	svc, _ := newTestService(store)

	const workers = 50
	var wg sync.WaitGroup
	var okCount int64
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Debit(context.Background(), 1, TypeNewConsultation, "race", nil, 1); err == nil {
				mu.Lock()
				okCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if okCount != 10 {
		t.Errorf("successful debits = %d, want exactly 10", okCount)
	}
	if got := store.clients[1].RemainingTickets; got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}
	if len(store.entries) != 10 {
		t.Errorf("log entries = %d, want 10", len(store.entries))
	}
}

func TestSyncGrantsCatchesUpMissedMonths(t *testing.T) {
	store := newMemStore()
	twoMonthsAgo := time.Now().AddDate(0, -2, 0).Format("2006-01")
	seed(store, 5, twoMonthsAgo)
	svc, _ := newTestService(store)

	c, err := svc.SyncGrants(context.Background(), 1)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if c.RemainingTickets != 15 {
		t.Errorf("balance = %d, want 15 (two missed months of 5)", c.RemainingTickets)
	}
	if c.GrantedThrough != currentMonth() {
		t.Errorf("granted through = %q, want %q", c.GrantedThrough, currentMonth())
	}

	// idempotent once caught up
	c, err = svc.SyncGrants(context.Background(), 1)
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if c.RemainingTickets != 15 {
		t.Errorf("balance after second sync = %d, want 15", c.RemainingTickets)
	}
}

func TestPassbookMatchesLiveBalance(t *testing.T) {
	store := newMemStore()
	reg := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	store.plans[1] = &plans.Plan{ID: 1, Name: "standard", InitialTickets: 5, MonthlyTickets: 5}
	store.clients[1] = &clients.Client{
		ID: 1, Name: "Sample Co.", PlanID: 1,
		RemainingTickets: 5,
		RegistrationDate: reg,
		GrantedThrough:   "2024-01",
	}
	svc, _ := newTestService(store)
	svc.now = func() time.Time { return time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	pb, err := svc.Passbook(ctx, 1)
	if err != nil {
		t.Fatalf("passbook failed: %v", err)
	}
	if pb[0].RunningBalance != 20 {
		t.Errorf("final running balance = %d, want 20", pb[0].RunningBalance)
	}
	if got := store.clients[1].RemainingTickets; got != pb[0].RunningBalance {
		t.Errorf("live balance %d != passbook %d", got, pb[0].RunningBalance)
	}

	// consume a few and re-check the consistency property
	for i := 0; i < 3; i++ {
		if err := svc.Debit(ctx, 1, TypeNewConsultation, "consume", nil, 1); err != nil {
			t.Fatalf("debit %d failed: %v", i, err)
		}
	}
	pb, err = svc.Passbook(ctx, 1)
	if err != nil {
		t.Fatalf("second passbook failed: %v", err)
	}
	if got := store.clients[1].RemainingTickets; got != pb[0].RunningBalance {
		t.Errorf("live balance %d != passbook %d after debits", got, pb[0].RunningBalance)
	}
}
