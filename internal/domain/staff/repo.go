package staff

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("staff: not found")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Get(ctx context.Context, id int64) (*Member, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, role, status, created_at, updated_at
		FROM staff WHERE id=$1
	`, id)
	var m Member
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Role, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repo) List(ctx context.Context) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, role, status, created_at, updated_at
		FROM staff ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Role, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, name, email string, role Role) (int64, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO staff (name, email, role, status)
		VALUES ($1,$2,$3,'pending')
		RETURNING id
	`, name, email, role)
	var id int64
	return id, row.Scan(&id)
}

// Approve moves pending → approved; approving twice is a no-op.
func (r *Repo) Approve(ctx context.Context, id int64) (*Member, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE staff SET status='approved', updated_at=now()
		WHERE id=$1
		RETURNING id, name, email, role, status, created_at, updated_at
	`, id)
	var m Member
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Role, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM staff WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
