package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AddressStore struct {
	pool *pgxpool.Pool
}

func NewAddressStore(pool *pgxpool.Pool) *AddressStore {
	return &AddressStore{pool: pool}
}

const addressColumns = `id, user_id, address_line_1, address_line_2, city, zip_code, address_type, is_default`

func (s *AddressStore) Create(ctx context.Context, address *Address) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO addresses (user_id, address_line_1, address_line_2, city, zip_code, address_type, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, address.UserID, address.AddressLine1, address.AddressLine2, address.City, address.ZipCode,
		string(address.AddressType), address.Default).Scan(&address.ID)
}

func (s *AddressStore) GetByID(ctx context.Context, id int64) (*Address, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	address, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		return nil, notFound(err)
	}
	return address, nil
}

// ListForUser returns the user's saved addresses of one type, defaults first.
func (s *AddressStore) ListForUser(ctx context.Context, userID int64, addressType AddressType) ([]*Address, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+addressColumns+` FROM addresses
		WHERE user_id = $1 AND address_type = $2
		ORDER BY is_default DESC, id
	`, userID, string(addressType))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanAddress)
}

func scanAddress(row pgx.CollectableRow) (*Address, error) {
	var (
		a           Address
		addressType string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.AddressLine1, &a.AddressLine2, &a.City, &a.ZipCode, &addressType, &a.Default)
	if err != nil {
		return nil, err
	}
	a.AddressType = AddressType(addressType)
	return &a, nil
}
