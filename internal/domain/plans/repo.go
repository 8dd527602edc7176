package plans

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("plans: not found")
	// ErrPlanInUse blocks deletion while clients still reference the plan.
	ErrPlanInUse = errors.New("plans: plan in use")
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Get(ctx context.Context, id int64) (*Plan, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, monthly_fee, initial_tickets, monthly_tickets, permissions, created_at, updated_at
		FROM plans WHERE id = $1
	`, id)
	var p Plan
	if err := row.Scan(&p.ID, &p.Name, &p.MonthlyFee, &p.InitialTickets, &p.MonthlyTickets, &p.Permissions, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context) ([]Plan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, monthly_fee, initial_tickets, monthly_tickets, permissions, created_at, updated_at
		FROM plans ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.MonthlyFee, &p.InitialTickets, &p.MonthlyTickets, &p.Permissions, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, p Plan) (int64, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO plans (name, monthly_fee, initial_tickets, monthly_tickets, permissions)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, p.Name, p.MonthlyFee, p.InitialTickets, p.MonthlyTickets, p.Permissions)
	var id int64
	return id, row.Scan(&id)
}

// Update edits the plan in place. Grant history is replayed with the
// current values, so changing ticket counts rewrites past passbook rows.
func (r *Repo) Update(ctx context.Context, p Plan) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE plans
		SET name=$2, monthly_fee=$3, initial_tickets=$4, monthly_tickets=$5, permissions=$6, updated_at=now()
		WHERE id=$1
	`, p.ID, p.Name, p.MonthlyFee, p.InitialTickets, p.MonthlyTickets, p.Permissions)
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
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM clients WHERE plan_id=$1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrPlanInUse
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM plans WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
