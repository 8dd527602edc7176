package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/ledger"
)

var (
	ErrNotFound             = errors.New("events: not found")
	ErrAtCapacity           = errors.New("events: at capacity")
	ErrDuplicateApplication = errors.New("events: duplicate application")
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const cols = `id, kind, title, location, capacity, held_at, created_at, updated_at`

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	if err := row.Scan(&e.ID, &e.Kind, &e.Title, &e.Location, &e.Capacity, &e.HeldAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *Repo) Get(ctx context.Context, kind Kind, id int64) (*Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+cols+` FROM events WHERE id=$1 AND kind=$2`, id, kind))
}

func (r *Repo) List(ctx context.Context, kind Kind) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+cols+` FROM events WHERE ($1 = '' OR kind=$1) ORDER BY held_at`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Kind, &e.Title, &e.Location, &e.Capacity, &e.HeldAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, kind Kind, title, location string, capacity int, heldAt time.Time) (int64, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (kind, title, location, capacity, held_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, kind, title, location, capacity, heldAt)
	var id int64
	return id, row.Scan(&id)
}

func (r *Repo) Update(ctx context.Context, id int64, title, location string, capacity int, heldAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE events SET title=$2, location=$3, capacity=$4, held_at=$5, updated_at=now()
		WHERE id=$1
	`, id, title, location, capacity, heldAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Register runs the whole admission as one transaction: the event row is
// locked, capacity and duplicate are checked under the lock, the debit (for
// online events) and the applicant insert commit together. Overbooking and
// a paid-but-not-registered state are both impossible.
func (r *Repo) Register(ctx context.Context, eventID, clientID, userID int64, userName string, debit bool) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var capacity int
	var title string
	err = tx.QueryRow(ctx, `SELECT capacity, title FROM events WHERE id=$1 FOR UPDATE`, eventID).Scan(&capacity, &title)
	if err == pgx.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM event_applications WHERE event_id=$1`, eventID).Scan(&count); err != nil {
		return 0, err
	}
	if count >= capacity {
		return 0, ErrAtCapacity
	}

	var dup bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM event_applications WHERE event_id=$1 AND user_id=$2)`, eventID, userID).Scan(&dup); err != nil {
		return 0, err
	}
	if dup {
		return 0, ErrDuplicateApplication
	}

	var remaining int
	if debit {
		remaining, err = ledger.DebitTx(ctx, tx, clientID, 1, ledger.TypeOnlineEventParticipation,
			fmt.Sprintf("Online participation: %s", title), &eventID)
		if err != nil {
			return 0, err
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO event_applications (event_id, user_id, client_id, user_name)
		VALUES ($1,$2,$3,$4)
	`, eventID, userID, clientID, userName); err != nil {
		return 0, err
	}
	return remaining, tx.Commit(ctx)
}

func (r *Repo) Applications(ctx context.Context, kind Kind, eventID int64) ([]Application, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.event_id, a.user_id, a.client_id, a.user_name, a.created_at
		FROM event_applications a
		JOIN events e ON e.id = a.event_id
		WHERE a.event_id=$1 AND e.kind=$2
		ORDER BY a.id
	`, eventID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.EventID, &a.UserID, &a.ClientID, &a.UserName, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
