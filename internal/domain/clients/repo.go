package clients

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("clients: not found")
	// ErrInUse blocks deletion while consumption logs or invoices reference the client.
	ErrInUse = errors.New("clients: client in use")
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const cols = `id, name, email, plan_id, remaining_tickets, registration_date, granted_through, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PlanID, &c.RemainingTickets, &c.RegistrationDate, &c.GrantedThrough, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (*Client, error) {
	return scanClient(r.pool.QueryRow(ctx, `SELECT `+cols+` FROM clients WHERE id=$1`, id))
}

func (r *Repo) List(ctx context.Context) ([]Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cols+` FROM clients ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.PlanID, &c.RemainingTickets, &c.RegistrationDate, &c.GrantedThrough, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create grants plan.initial_tickets as the opening balance and marks the
// registration month as already granted (monthly grants start the month after).
func (r *Repo) Create(ctx context.Context, name, email string, planID int64) (*Client, error) {
	return scanClient(r.pool.QueryRow(ctx, `
		INSERT INTO clients (name, email, plan_id, remaining_tickets, registration_date, granted_through)
		SELECT $1, $2, p.id, p.initial_tickets, CURRENT_DATE, to_char(CURRENT_DATE, 'YYYY-MM')
		FROM plans p WHERE p.id = $3
		RETURNING `+cols, name, email, planID))
}

func (r *Repo) Update(ctx context.Context, id int64, name, email string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients SET name=$2, email=$3, updated_at=now() WHERE id=$1
	`, id, name, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ChangePlan switches the plan immediately. The balance is untouched:
// only future grants follow the new plan's schedule.
func (r *Repo) ChangePlan(ctx context.Context, id, planID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients SET plan_id=$2, updated_at=now() WHERE id=$1
	`, id, planID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM ticket_consumption_logs WHERE client_id=$1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrInUse
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
