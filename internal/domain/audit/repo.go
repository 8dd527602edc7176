package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Append(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (ts, actor_id, actor_name, action, details, client_id)
		VALUES (now(), $1, $2, $3, $4, $5)
	`, e.ActorID, e.ActorName, e.Action, e.Details, e.ClientID)
	return err
}

func (r *Repo) Search(ctx context.Context, f Filter) ([]Entry, error) {
	const q = `
		SELECT id, ts, actor_id, actor_name, action, details, client_id
		FROM audit_logs
		WHERE ($1 = '' OR details ILIKE '%'||$1||'%' OR actor_name ILIKE '%'||$1||'%')
		  AND ($2 = '' OR action = $2)
		  AND ($3::timestamptz IS NULL OR ts >= $3)
		  AND ($4::timestamptz IS NULL OR ts <= $4)
		ORDER BY ts DESC
		LIMIT 1000`

	var from, to any
	if !f.From.IsZero() {
		from = f.From
	}
	if !f.To.IsZero() {
		to = f.To
	}
	rows, err := r.pool.Query(ctx, q, f.Query, f.Action, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.ActorID, &e.ActorName, &e.Action, &e.Details, &e.ClientID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
