package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gitshopapp/storefront/internal/db"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
)

type CheckoutService struct {
	cart      *CartService
	orders    OrderStore
	addresses AddressStore
	logger    *slog.Logger
}

func NewCheckoutService(cart *CartService, orders OrderStore, addresses AddressStore, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{cart: cart, orders: orders, addresses: addresses, logger: logger}
}

func (s *CheckoutService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// AddressInput is one side of the checkout form. Either SelectedID names a
// saved address or all four freeform fields are filled in.
type AddressInput struct {
	SelectedID   int64  `form:"selected"`
	AddressLine1 string `form:"address_line_1" validate:"required_without=SelectedID"`
	AddressLine2 string `form:"address_line_2" validate:"required_without=SelectedID"`
	ZipCode      string `form:"zip_code" validate:"required_without=SelectedID"`
	City         string `form:"city" validate:"required_without=SelectedID"`
}

func (a *AddressInput) trim() {
	a.AddressLine1 = strings.TrimSpace(a.AddressLine1)
	a.AddressLine2 = strings.TrimSpace(a.AddressLine2)
	a.ZipCode = strings.TrimSpace(a.ZipCode)
	a.City = strings.TrimSpace(a.City)
}

type CheckoutInput struct {
	Billing  AddressInput `form:"billing"`
	Shipping AddressInput `form:"shipping"`
}

type CheckoutContext struct {
	Order             *models.Order     `json:"order"`
	BillingAddresses  []*models.Address `json:"billing_addresses"`
	ShippingAddresses []*models.Address `json:"shipping_addresses"`
}

// Context returns the cart with the shopper's saved addresses to pick from.
func (s *CheckoutService) Context(ctx context.Context, session CartSession, shopper models.Shopper) (*CheckoutContext, error) {
	if !shopper.Authenticated() {
		return nil, ErrLoginRequired
	}

	order, err := s.cart.Summary(ctx, session, shopper)
	if err != nil {
		return nil, err
	}
	billing, err := s.addresses.ListForUser(ctx, shopper.UserID, models.AddressBilling)
	if err != nil {
		return nil, fmt.Errorf("failed to list billing addresses: %w", err)
	}
	shipping, err := s.addresses.ListForUser(ctx, shopper.UserID, models.AddressShipping)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipping addresses: %w", err)
	}

	return &CheckoutContext{Order: order, BillingAddresses: billing, ShippingAddresses: shipping}, nil
}

// SubmitAddresses attaches a billing and a shipping address to the active
// order, creating new address rows for sides filled in by hand.
func (s *CheckoutService) SubmitAddresses(ctx context.Context, session CartSession, shopper models.Shopper, input CheckoutInput) (*models.Order, error) {
	if !shopper.Authenticated() {
		return nil, ErrLoginRequired
	}

	input.Billing.trim()
	input.Shipping.trim()

	fields := map[string]string{}
	var validationErr *ValidationError
	if err := validateStruct(input); err != nil {
		if !errors.As(err, &validationErr) {
			return nil, err
		}
		for field, msg := range validationErr.Fields {
			fields[field] = msg
		}
	}

	billing, err := s.selectedAddress(ctx, shopper, input.Billing.SelectedID, models.AddressBilling)
	if err != nil {
		if !errors.Is(err, ErrAddressNotFound) {
			return nil, err
		}
		fields["selected_billing_address"] = "Select a valid choice."
	}
	shipping, err := s.selectedAddress(ctx, shopper, input.Shipping.SelectedID, models.AddressShipping)
	if err != nil {
		if !errors.Is(err, ErrAddressNotFound) {
			return nil, err
		}
		fields["selected_shipping_address"] = "Select a valid choice."
	}
	if err := newValidationError(fields); err != nil {
		return nil, err
	}

	order, err := s.cart.ActiveOrder(ctx, session, shopper)
	if err != nil {
		return nil, err
	}

	if billing == nil {
		if billing, err = s.createAddress(ctx, shopper, input.Billing, models.AddressBilling); err != nil {
			return nil, err
		}
	}
	if shipping == nil {
		if shipping, err = s.createAddress(ctx, shopper, input.Shipping, models.AddressShipping); err != nil {
			return nil, err
		}
	}

	if err := s.orders.SetAddresses(ctx, order.ID, billing.ID, shipping.ID); err != nil {
		return nil, fmt.Errorf("failed to attach addresses: %w", err)
	}
	order.BillingAddressID, order.BillingAddress = billing.ID, billing
	order.ShippingAddressID, order.ShippingAddress = shipping.ID, shipping

	s.loggerFromContext(ctx).Info("checkout addresses saved", "order_id", order.ID, "billing_address_id", billing.ID, "shipping_address_id", shipping.ID)
	return order, nil
}

// selectedAddress returns the saved address id points to, or nil when id is
// zero. Addresses of another user or of the other type are not found.
func (s *CheckoutService) selectedAddress(ctx context.Context, shopper models.Shopper, id int64, addressType models.AddressType) (*models.Address, error) {
	if id == 0 {
		return nil, nil
	}
	address, err := s.addresses.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load address: %w", err)
	}
	if address.UserID != shopper.UserID || address.AddressType != addressType {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

func (s *CheckoutService) createAddress(ctx context.Context, shopper models.Shopper, input AddressInput, addressType models.AddressType) (*models.Address, error) {
	address := &models.Address{
		UserID:       shopper.UserID,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		ZipCode:      input.ZipCode,
		AddressType:  addressType,
	}
	if err := s.addresses.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to create %s address: %w", strings.ToLower(addressType.Label()), err)
	}
	return address, nil
}
