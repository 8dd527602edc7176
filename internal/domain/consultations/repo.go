package consultations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/ledger"
)

var ErrNotFound = errors.New("consultations: not found")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const cols = `id, client_id, subject, priority, category, status, assignee_id, expiration_date, created_at, updated_at`

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	if err := row.Scan(&t.ID, &t.ClientID, &t.Subject, &t.Priority, &t.Category, &t.Status, &t.AssigneeID, &t.ExpirationDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// CreateWithDebit inserts the thread and debits one ticket in the same
// transaction, so a failed debit leaves no thread behind.
func (r *Repo) CreateWithDebit(ctx context.Context, clientID int64, subject, priority, category string, expires time.Time) (*Ticket, int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	t, err := scanTicket(tx.QueryRow(ctx, `
		INSERT INTO message_tickets (client_id, subject, priority, category, status, expiration_date)
		VALUES ($1,$2,$3,$4,'received',$5)
		RETURNING `+cols, clientID, subject, priority, category, expires))
	if err != nil {
		return nil, 0, err
	}

	remaining, err := ledger.DebitTx(ctx, tx, clientID, 1, ledger.TypeNewConsultation,
		fmt.Sprintf("New consultation: %s", subject), &t.ID)
	if err != nil {
		return nil, 0, err
	}
	return t, remaining, tx.Commit(ctx)
}

func (r *Repo) Get(ctx context.Context, id int64) (*Ticket, error) {
	return scanTicket(r.pool.QueryRow(ctx, `SELECT `+cols+` FROM message_tickets WHERE id=$1`, id))
}

func (r *Repo) List(ctx context.Context, clientID int64) ([]Ticket, error) {
	const q = `SELECT ` + cols + ` FROM message_tickets WHERE ($1 = 0 OR client_id = $1) ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.ClientID, &t.Subject, &t.Priority, &t.Category, &t.Status, &t.AssigneeID, &t.ExpirationDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SetStatus moves the thread forward only when it is still in the expected
// state; a concurrent transition makes this a no-op reported as invalid.
func (r *Repo) SetStatus(ctx context.Context, id int64, from, to Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE message_tickets SET status=$3, updated_at=now()
		WHERE id=$1 AND status=$2
	`, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *Repo) SetAssignee(ctx context.Context, id, staffID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE message_tickets SET assignee_id=$2, updated_at=now() WHERE id=$1
	`, id, staffID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddParticipant appends a thread participant; billable invitations debit
// one ticket in the same transaction. The returned balance is meaningful
// only for billable invitations.
func (r *Repo) AddParticipant(ctx context.Context, ticketID, clientID, staffID int64, staffName string, billable bool) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var remaining int
	if billable {
		remaining, err = ledger.DebitTx(ctx, tx, clientID, 1, ledger.TypeSpecialistInvite,
			fmt.Sprintf("Specialist invited: %s", staffName), &ticketID)
		if err != nil {
			return 0, err
		}
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO ticket_participants (ticket_id, staff_id, billable)
		VALUES ($1,$2,$3)
	`, ticketID, staffID, billable); err != nil {
		return 0, err
	}
	return remaining, tx.Commit(ctx)
}

func (r *Repo) Participants(ctx context.Context, ticketID int64) ([]Participant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, ticket_id, staff_id, billable, created_at
		FROM ticket_participants WHERE ticket_id=$1 ORDER BY id
	`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.TicketID, &p.StaffID, &p.Billable, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
