package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/clients"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/plans"
)

var ErrInsufficientTickets = errors.New("ledger: insufficient tickets")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// DebitTx is the atomic check-then-decrement: the conditional UPDATE either
// removes the full amount or touches nothing, and the log row is written in
// the same transaction. Gateways that must couple a debit with a dependent
// insert run this inside their own tx. Returns the balance after the debit.
func DebitTx(ctx context.Context, tx pgx.Tx, clientID int64, amount int, typ ConsumptionType, description string, relatedID *int64) (int, error) {
	var remaining int
	err := tx.QueryRow(ctx, `
		UPDATE clients
		SET remaining_tickets = remaining_tickets - $2, updated_at = now()
		WHERE id = $1 AND remaining_tickets >= $2
		RETURNING remaining_tickets
	`, clientID, amount).Scan(&remaining)
	if err == pgx.ErrNoRows {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE id=$1)`, clientID).Scan(&exists); err != nil {
			return 0, err
		}
		if !exists {
			return 0, clients.ErrNotFound
		}
		return 0, ErrInsufficientTickets
	}
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO ticket_consumption_logs (client_id, date, type, description, ticket_cost, related_id)
		VALUES ($1, now(), $2, $3, $4, $5)
	`, clientID, typ, description, amount, relatedID)
	return remaining, err
}

func (r *Repo) Debit(ctx context.Context, clientID int64, amount int, typ ConsumptionType, description string, relatedID *int64) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	remaining, err := DebitTx(ctx, tx, clientID, amount, typ, description, relatedID)
	if err != nil {
		return 0, err
	}
	return remaining, tx.Commit(ctx)
}

func (r *Repo) Client(ctx context.Context, id int64) (*clients.Client, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, plan_id, remaining_tickets, registration_date, granted_through, created_at, updated_at
		FROM clients WHERE id=$1
	`, id)
	var c clients.Client
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PlanID, &c.RemainingTickets, &c.RegistrationDate, &c.GrantedThrough, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, clients.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repo) Plan(ctx context.Context, id int64) (*plans.Plan, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, monthly_fee, initial_tickets, monthly_tickets, permissions, created_at, updated_at
		FROM plans WHERE id=$1
	`, id)
	var p plans.Plan
	if err := row.Scan(&p.ID, &p.Name, &p.MonthlyFee, &p.InitialTickets, &p.MonthlyTickets, &p.Permissions, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, plans.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Entries(ctx context.Context, clientID int64) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_id, date, type, description, ticket_cost, related_id
		FROM ticket_consumption_logs
		WHERE client_id=$1
		ORDER BY date
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Date, &e.Type, &e.Description, &e.TicketCost, &e.RelatedID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ApplyGrant folds pending monthly grants into the live balance. The
// granted_through guard makes it a compare-and-swap: false means another
// writer advanced it first and the caller should re-read.
func (r *Repo) ApplyGrant(ctx context.Context, clientID int64, oldThrough, newThrough string, delta int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients
		SET remaining_tickets = remaining_tickets + $4, granted_through = $3, updated_at = now()
		WHERE id = $1 AND granted_through = $2
	`, clientID, oldThrough, newThrough, delta)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
