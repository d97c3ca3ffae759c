package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gitshopapp/storefront/internal/db"
	"github.com/gitshopapp/storefront/internal/email"
	"github.com/gitshopapp/storefront/internal/models"
)

// OrderNotifier is told about every order that leaves the cart state.
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, order *models.Order, paymentMethod string) error
}

// EmailOrderNotifier mails an order confirmation to the owning customer.
type EmailOrderNotifier struct {
	provider  email.Provider
	renderer  *email.Renderer
	orders    OrderStore
	addresses AddressStore
	customers CustomerStore
	shop      ShopDetails
}

func NewEmailOrderNotifier(provider email.Provider, renderer *email.Renderer, orders OrderStore, addresses AddressStore, customers CustomerStore, shop ShopDetails) *EmailOrderNotifier {
	return &EmailOrderNotifier{
		provider:  provider,
		renderer:  renderer,
		orders:    orders,
		addresses: addresses,
		customers: customers,
		shop:      shop,
	}
}

func (n *EmailOrderNotifier) OrderPlaced(ctx context.Context, order *models.Order, paymentMethod string) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	if !order.HasOwner() {
		return nil
	}

	customer, err := n.customers.GetOrCreate(ctx, order.UserID, "")
	if err != nil {
		return fmt.Errorf("failed to load customer: %w", err)
	}
	if customer.Email == "" {
		return nil
	}

	items, err := n.orders.ListItems(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	order.Items = items

	if order.ShippingAddress == nil && order.ShippingAddressID != 0 {
		address, err := n.addresses.GetByID(ctx, order.ShippingAddressID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("failed to load shipping address: %w", err)
		}
		order.ShippingAddress = address
	}

	info := BuildOrderInfo(n.shop, order, customer.Email, paymentMethod)
	return email.SendOrderConfirmation(ctx, n.provider, n.renderer, info)
}

type noopOrderNotifier struct{}

func (noopOrderNotifier) OrderPlaced(context.Context, *models.Order, string) error {
	return nil
}
