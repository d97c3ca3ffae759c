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
	"github.com/gitshopapp/storefront/internal/paypal"
)

// PayPalVerifier checks a client confirmation against PayPal itself.
type PayPalVerifier interface {
	Verify(ctx context.Context, confirmation *paypal.Confirmation) error
}

type PayPalService struct {
	cart        *CartService
	payments    PaymentStore
	reconciler  *Reconciler
	verifier    PayPalVerifier
	clientID    string
	callbackURL string
	currency    string
	logger      *slog.Logger
}

type PayPalOptions struct {
	ClientID    string
	CallbackURL string
	Currency    string
	// Verifier is nil when no API credentials are configured. Confirmations
	// are then trusted as posted.
	Verifier PayPalVerifier
}

func NewPayPalService(cart *CartService, payments PaymentStore, reconciler *Reconciler, opts PayPalOptions, logger *slog.Logger) *PayPalService {
	return &PayPalService{
		cart:        cart,
		payments:    payments,
		reconciler:  reconciler,
		verifier:    opts.Verifier,
		clientID:    opts.ClientID,
		callbackURL: opts.CallbackURL,
		currency:    strings.ToUpper(opts.Currency),
		logger:      logger,
	}
}

func (s *PayPalService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

type PayPalContext struct {
	ClientID    string        `json:"paypal_client_id"`
	CallbackURL string        `json:"callback_url"`
	Currency    string        `json:"currency"`
	Order       *models.Order `json:"order"`
	Total       string        `json:"total"`
	RawTotal    int64         `json:"raw_total"`
}

// Context returns what the PayPal buttons need to render for the active order.
func (s *PayPalService) Context(ctx context.Context, session CartSession, shopper models.Shopper) (*PayPalContext, error) {
	order, err := s.cart.Summary(ctx, session, shopper)
	if err != nil {
		return nil, err
	}
	return &PayPalContext{
		ClientID:    s.clientID,
		CallbackURL: s.callbackURL,
		Currency:    s.currency,
		Order:       order,
		Total:       order.Total(),
		RawTotal:    order.RawTotal(),
	}, nil
}

// ConfirmOrder records the PayPal order posted by the client as a successful
// payment and places the active order. The body is stored verbatim. With a
// verifier configured the PayPal order must match the cart total and the shop
// currency. A PayPal order id settles at most one cart.
func (s *PayPalService) ConfirmOrder(ctx context.Context, session CartSession, shopper models.Shopper, body []byte) (*models.Payment, error) {
	logger := s.loggerFromContext(ctx)

	confirmation, err := paypal.ParseConfirmation(body)
	if err != nil {
		return nil, err
	}

	order, err := s.cart.Summary(ctx, session, shopper)
	if err != nil {
		return nil, err
	}

	if confirmation.OrderID != "" {
		used, err := s.payments.PaymentReferenceUsed(ctx, models.PaymentMethodPayPal, confirmation.OrderID)
		if err != nil {
			return nil, fmt.Errorf("failed to check paypal order: %w", err)
		}
		if used {
			logger.Warn("paypal order already settled a cart", "paypal_order_id", confirmation.OrderID, "order_id", order.ID)
			return nil, fmt.Errorf("%w: paypal order %s was already used", paypal.ErrVerificationFailed, confirmation.OrderID)
		}
	}

	if s.verifier != nil {
		if err := s.matchCart(order, confirmation); err != nil {
			logger.Warn("paypal confirmation rejected", "error", err, "paypal_order_id", confirmation.OrderID, "order_id", order.ID)
			return nil, err
		}
		if err := s.verifier.Verify(ctx, confirmation); err != nil {
			logger.Warn("paypal confirmation rejected", "error", err, "paypal_order_id", confirmation.OrderID)
			return nil, err
		}
	} else {
		logger.Warn("paypal confirmation accepted without verification", "paypal_order_id", confirmation.OrderID)
	}

	payment := &models.Payment{
		OrderID:           order.ID,
		PaymentMethod:     models.PaymentMethodPayPal,
		Successful:        true,
		Amount:            confirmation.Amount,
		RawResponse:       confirmation.Raw,
		ProviderReference: confirmation.OrderID,
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, fmt.Errorf("%w: paypal order %s was already used", paypal.ErrVerificationFailed, confirmation.OrderID)
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	currency := confirmation.Currency
	if currency == "" {
		currency = s.currency
	}
	err = s.reconciler.Settle(ctx, order, Settlement{
		Provider:   models.PaymentMethodPayPal,
		Reference:  confirmation.OrderID,
		Amount:     confirmation.Amount,
		Currency:   currency,
		Successful: true,
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// matchCart checks the confirmed amount and currency against the order being
// settled. The verifier then ties the confirmation to PayPal's own record.
func (s *PayPalService) matchCart(order *models.Order, confirmation *paypal.Confirmation) error {
	if confirmation.Cents() != order.RawTotal() {
		return fmt.Errorf("%w: amount %s does not match cart total %s", paypal.ErrVerificationFailed,
			confirmation.Value, order.Total())
	}
	if !strings.EqualFold(confirmation.Currency, s.currency) {
		return fmt.Errorf("%w: currency %q does not match %s", paypal.ErrVerificationFailed,
			confirmation.Currency, s.currency)
	}
	return nil
}
