package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderStore struct {
	pool *pgxpool.Pool
}

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderColumns = `id, user_id, start_date, ordered_date, ordered, billing_address_id, shipping_address_id`

func (s *OrderStore) Create(ctx context.Context, order *Order) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO orders (user_id) VALUES ($1)
		RETURNING id, start_date
	`, nullableID(order.UserID)).Scan(&order.ID, &order.StartDate)
}

func (s *OrderStore) GetByID(ctx context.Context, id int64) (*Order, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	order, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

// GetOpen returns the order only while it is still a cart.
func (s *OrderStore) GetOpen(ctx context.Context, id int64) (*Order, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND ordered = FALSE`, id)
	if err != nil {
		return nil, err
	}
	order, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

func (s *OrderStore) AttachUser(ctx context.Context, orderID, userID int64) error {
	return s.execOne(ctx, `UPDATE orders SET user_id = $1 WHERE id = $2`, userID, orderID)
}

func (s *OrderStore) SetAddresses(ctx context.Context, orderID, billingAddressID, shippingAddressID int64) error {
	return s.execOne(ctx, `
		UPDATE orders SET billing_address_id = $1, shipping_address_id = $2 WHERE id = $3
	`, nullableID(billingAddressID), nullableID(shippingAddressID), orderID)
}

// MarkOrdered flips the order out of the cart state. Applying it to an order
// that is already ordered rewrites the same flag and moves ordered_date.
func (s *OrderStore) MarkOrdered(ctx context.Context, orderID int64, orderedAt time.Time) error {
	return s.execOne(ctx, `UPDATE orders SET ordered = TRUE, ordered_date = $1 WHERE id = $2`, orderedAt, orderID)
}

// ListOrdered pages through placed orders, most recent first.
func (s *OrderStore) ListOrdered(ctx context.Context, limit, offset int) ([]*Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE ordered = TRUE
		ORDER BY ordered_date DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanOrder)
}

func (s *OrderStore) CountOrdered(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE ordered = TRUE`).Scan(&count)
	return count, err
}

const itemSelect = `
	SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.colour_id, oi.size_id,
	       p.title, p.slug, p.image, p.price, p.stock, p.active, c.name, sz.name
	FROM order_items oi
	JOIN products p ON p.id = oi.product_id
	JOIN colour_variations c ON c.id = oi.colour_id
	JOIN size_variations sz ON sz.id = oi.size_id`

func (s *OrderStore) ListItems(ctx context.Context, orderID int64) ([]*OrderItem, error) {
	rows, err := s.pool.Query(ctx, itemSelect+` WHERE oi.order_id = $1 ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanOrderItem)
}

func (s *OrderStore) GetItem(ctx context.Context, itemID int64) (*OrderItem, error) {
	rows, err := s.pool.Query(ctx, itemSelect+` WHERE oi.id = $1`, itemID)
	if err != nil {
		return nil, err
	}
	item, err := pgx.CollectExactlyOneRow(rows, scanOrderItem)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

// FindItem returns the first line on the order with the same product and
// variants. Duplicates are not prevented by the schema, the lowest id wins.
func (s *OrderStore) FindItem(ctx context.Context, orderID, productID, colourID, sizeID int64) (*OrderItem, error) {
	rows, err := s.pool.Query(ctx, itemSelect+`
		WHERE oi.order_id = $1 AND oi.product_id = $2 AND oi.colour_id = $3 AND oi.size_id = $4
		ORDER BY oi.id
		LIMIT 1
	`, orderID, productID, colourID, sizeID)
	if err != nil {
		return nil, err
	}
	item, err := pgx.CollectExactlyOneRow(rows, scanOrderItem)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

func (s *OrderStore) CreateItem(ctx context.Context, item *OrderItem) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, colour_id, size_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, item.OrderID, item.ProductID, item.Quantity, item.ColourID, item.SizeID).Scan(&item.ID)
}

func (s *OrderStore) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %d", quantity)
	}
	return s.execOne(ctx, `UPDATE order_items SET quantity = $1 WHERE id = $2`, quantity, itemID)
}

func (s *OrderStore) DeleteItem(ctx context.Context, itemID int64) error {
	return s.execOne(ctx, `DELETE FROM order_items WHERE id = $1`, itemID)
}

func (s *OrderStore) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (*Order, error) {
	var (
		o                 Order
		userID            pgtype.Int8
		orderedDate       pgtype.Timestamptz
		billingAddressID  pgtype.Int8
		shippingAddressID pgtype.Int8
	)
	if err := row.Scan(&o.ID, &userID, &o.StartDate, &orderedDate, &o.Ordered, &billingAddressID, &shippingAddressID); err != nil {
		return nil, err
	}
	o.UserID = userID.Int64
	o.BillingAddressID = billingAddressID.Int64
	o.ShippingAddressID = shippingAddressID.Int64
	if orderedDate.Valid {
		o.OrderedDate = orderedDate.Time
	}
	o.Items = []*OrderItem{}
	return &o, nil
}

func scanOrderItem(row pgx.CollectableRow) (*OrderItem, error) {
	var (
		item    OrderItem
		product Product
	)
	err := row.Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.ColourID, &item.SizeID,
		&product.Title, &product.Slug, &product.Image, &product.PriceCents, &product.Stock, &product.Active,
		&item.Colour.Name, &item.Size.Name,
	)
	if err != nil {
		return nil, err
	}
	product.ID = item.ProductID
	item.Product = &product
	item.Colour.ID = item.ColourID
	item.Size.ID = item.SizeID
	return &item, nil
}

func nullableID(id int64) pgtype.Int8 {
	return pgtype.Int8{Int64: id, Valid: id != 0}
}
