package affiliates

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("affiliates: not found")
	ErrAlreadyApproved = errors.New("affiliates: referral already approved")
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) CreateReferral(ctx context.Context, affiliateID, clientID int64) (int64, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO referrals (affiliate_id, client_id, status)
		VALUES ($1,$2,'pending')
		RETURNING id
	`, affiliateID, clientID)
	var id int64
	return id, row.Scan(&id)
}

// Approve flips the referral to approved and creates the payout in one
// transaction. The status guard makes approval idempotent-hostile: a second
// approval fails instead of paying twice.
func (r *Repo) Approve(ctx context.Context, referralID int64) (*Payout, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var affiliateID, clientID int64
	err = tx.QueryRow(ctx, `
		UPDATE referrals SET status='approved'
		WHERE id=$1 AND status='pending'
		RETURNING affiliate_id, client_id
	`, referralID).Scan(&affiliateID, &clientID)
	if err == pgx.ErrNoRows {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM referrals WHERE id=$1)`, referralID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrAlreadyApproved
	}
	if err != nil {
		return nil, err
	}

	// commission on the referred client's current plan fee
	var p Payout
	err = tx.QueryRow(ctx, `
		INSERT INTO payouts (affiliate_id, referral_id, amount)
		SELECT a.id, $1, pl.monthly_fee * a.commission_rate
		FROM affiliates a
		JOIN clients c ON c.id = $2
		JOIN plans pl ON pl.id = c.plan_id
		WHERE a.id = $3
		RETURNING id, affiliate_id, referral_id, amount, created_at
	`, referralID, clientID, affiliateID).Scan(&p.ID, &p.AffiliateID, &p.ReferralID, &p.Amount, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, tx.Commit(ctx)
}

func (r *Repo) ListPayouts(ctx context.Context, affiliateID int64) ([]Payout, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, affiliate_id, referral_id, amount, created_at
		FROM payouts WHERE ($1 = 0 OR affiliate_id = $1) ORDER BY id
	`, affiliateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payout
	for rows.Next() {
		var p Payout
		if err := rows.Scan(&p.ID, &p.AffiliateID, &p.ReferralID, &p.Amount, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) ListAffiliates(ctx context.Context) ([]Affiliate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, commission_rate, created_at FROM affiliates ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Affiliate
	for rows.Next() {
		var a Affiliate
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.CommissionRate, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
