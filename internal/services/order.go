package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gitshopapp/storefront/internal/db"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
)

type OrderService struct {
	orders    OrderStore
	addresses AddressStore
	payments  PaymentStore
	logger    *slog.Logger
}

func NewOrderService(orders OrderStore, addresses AddressStore, payments PaymentStore, logger *slog.Logger) *OrderService {
	return &OrderService{orders: orders, addresses: addresses, payments: payments, logger: logger}
}

func (s *OrderService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

type OrderDetail struct {
	Order          *models.Order           `json:"order"`
	Subtotal       string                  `json:"subtotal"`
	Total          string                  `json:"total"`
	Payments       []*models.Payment       `json:"payments"`
	StripePayments []*models.StripePayment `json:"stripe_payments"`
}

// Detail returns an order with its lines, addresses and payments. Only the
// owner and staff may see it; anyone else gets ErrOrderNotFound.
func (s *OrderService) Detail(ctx context.Context, shopper models.Shopper, orderID int64) (*OrderDetail, error) {
	if !shopper.Authenticated() {
		return nil, ErrLoginRequired
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order.UserID != shopper.UserID && !shopper.Staff {
		s.loggerFromContext(ctx).Warn("rejected order detail for non-owner", "order_id", orderID, "user_id", shopper.UserID)
		return nil, ErrOrderNotFound
	}

	if err := s.loadDetail(ctx, order); err != nil {
		return nil, err
	}

	payments, err := s.payments.ListPayments(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	stripePayments, err := s.payments.ListStripePayments(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stripe payments: %w", err)
	}

	return &OrderDetail{
		Order:          order,
		Subtotal:       order.Subtotal(),
		Total:          order.Total(),
		Payments:       payments,
		StripePayments: stripePayments,
	}, nil
}

func (s *OrderService) loadDetail(ctx context.Context, order *models.Order) error {
	items, err := s.orders.ListItems(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	order.Items = items

	for _, side := range []struct {
		id     int64
		target **models.Address
	}{
		{id: order.BillingAddressID, target: &order.BillingAddress},
		{id: order.ShippingAddressID, target: &order.ShippingAddress},
	} {
		if side.id == 0 {
			continue
		}
		address, err := s.addresses.GetByID(ctx, side.id)
		if errors.Is(err, db.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load address: %w", err)
		}
		*side.target = address
	}
	return nil
}
