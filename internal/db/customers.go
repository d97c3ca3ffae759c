package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerStore struct {
	pool *pgxpool.Pool
}

func NewCustomerStore(pool *pgxpool.Pool) *CustomerStore {
	return &CustomerStore{pool: pool}
}

// GetOrCreate returns the customer profile for userID, creating it on first
// use. A non-empty email refreshes the stored one.
func (s *CustomerStore) GetOrCreate(ctx context.Context, userID int64, email string) (*Customer, error) {
	var c Customer
	err := s.pool.QueryRow(ctx, `
		INSERT INTO customers (user_id, email) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET email = COALESCE(NULLIF(EXCLUDED.email, ''), customers.email)
		RETURNING user_id, email, stripe_customer_id
	`, userID, email).Scan(&c.UserID, &c.Email, &c.StripeCustomerID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CustomerStore) SetStripeCustomerID(ctx context.Context, userID int64, stripeCustomerID string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE customers SET stripe_customer_id = $1 WHERE user_id = $2`, stripeCustomerID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
