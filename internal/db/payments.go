package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentStore struct {
	pool *pgxpool.Pool
}

func NewPaymentStore(pool *pgxpool.Pool) *PaymentStore {
	return &PaymentStore{pool: pool}
}

// CreatePayment returns ErrDuplicate when the provider reference was already
// recorded for the same method.
func (s *PaymentStore) CreatePayment(ctx context.Context, payment *Payment) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO payments (order_id, payment_method, successful, amount, raw_response, provider_reference)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, timestamp
	`, payment.OrderID, payment.PaymentMethod, payment.Successful, payment.Amount, payment.RawResponse, payment.ProviderReference).
		Scan(&payment.ID, &payment.Timestamp)
	return duplicate(err)
}

func (s *PaymentStore) PaymentReferenceUsed(ctx context.Context, method, reference string) (bool, error) {
	var used bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM payments WHERE payment_method = $1 AND provider_reference = $2)
	`, method, reference).Scan(&used)
	return used, err
}

func (s *PaymentStore) ListPayments(ctx context.Context, orderID int64) ([]*Payment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, payment_method, timestamp, successful, amount, raw_response, provider_reference
		FROM payments WHERE order_id = $1 ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[Payment])
}

const stripePaymentColumns = `id, order_id, payment_intent_id, timestamp, successful, amount`

// UpsertStripePayment returns the first stripe payment recorded for the order,
// inserting an empty one when none exists.
func (s *PaymentStore) UpsertStripePayment(ctx context.Context, orderID int64) (*StripePayment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+stripePaymentColumns+` FROM stripe_payments
		WHERE order_id = $1 ORDER BY id LIMIT 1
	`, orderID)
	if err != nil {
		return nil, err
	}
	payment, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[StripePayment])
	if err == nil {
		return payment, nil
	}
	if notFound(err) != ErrNotFound {
		return nil, err
	}

	payment = &StripePayment{OrderID: orderID}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO stripe_payments (order_id) VALUES ($1)
		RETURNING id, timestamp
	`, orderID).Scan(&payment.ID, &payment.Timestamp)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentStore) UpdateStripePayment(ctx context.Context, payment *StripePayment) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE stripe_payments SET payment_intent_id = $1, amount = $2, successful = $3
		WHERE id = $4
	`, payment.PaymentIntentID, payment.Amount, payment.Successful, payment.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PaymentStore) GetStripePaymentByIntentID(ctx context.Context, intentID string) (*StripePayment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+stripePaymentColumns+` FROM stripe_payments
		WHERE payment_intent_id = $1 ORDER BY id LIMIT 1
	`, intentID)
	if err != nil {
		return nil, err
	}
	payment, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[StripePayment])
	if err != nil {
		return nil, notFound(err)
	}
	return payment, nil
}

func (s *PaymentStore) ListStripePayments(ctx context.Context, orderID int64) ([]*StripePayment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+stripePaymentColumns+` FROM stripe_payments WHERE order_id = $1 ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[StripePayment])
}

func (s *PaymentStore) MarkStripePaymentSuccessful(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE stripe_payments SET successful = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
