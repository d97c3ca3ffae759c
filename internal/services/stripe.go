package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/gitshopapp/storefront/internal/db"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/stripe"
)

const (
	PaymentMethodStripe = "Stripe"
	// NewCardSelection is posted when the shopper enters a card in the
	// browser instead of picking a saved one.
	NewCardSelection = "newCard"
)

// StripeGateway is the subset of the Stripe API the storefront calls.
type StripeGateway interface {
	CreateCustomer(ctx context.Context, email string) (string, error)
	CreatePaymentIntent(ctx context.Context, params stripe.IntentParams) (*stripe.Intent, error)
	ListCards(ctx context.Context, customerID string) ([]stripe.SavedCard, error)
}

type StripeService struct {
	cart           *CartService
	orders         OrderStore
	payments       PaymentStore
	customers      CustomerStore
	reconciler     *Reconciler
	gateway        StripeGateway
	publishableKey string
	currency       string
	logger         *slog.Logger
}

type StripeOptions struct {
	PublishableKey string
	Currency       string
	// Gateway is nil when Stripe is not configured.
	Gateway StripeGateway
}

func NewStripeService(cart *CartService, orders OrderStore, payments PaymentStore, customers CustomerStore, reconciler *Reconciler, opts StripeOptions, logger *slog.Logger) *StripeService {
	return &StripeService{
		cart:           cart,
		orders:         orders,
		payments:       payments,
		customers:      customers,
		reconciler:     reconciler,
		gateway:        opts.Gateway,
		publishableKey: opts.PublishableKey,
		currency:       opts.Currency,
		logger:         logger,
	}
}

func (s *StripeService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

type StripePaymentContext struct {
	PublishableKey string             `json:"stripe_public_key"`
	ClientSecret   string             `json:"client_secret"`
	PaymentMethods []stripe.SavedCard `json:"payment_methods"`
	Order          *models.Order      `json:"order"`
	Total          string             `json:"total"`
}

// ChargeResult describes a saved-card charge attempt. Warning carries the
// provider's decline code when the card was refused.
type ChargeResult struct {
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	Status          string `json:"status,omitempty"`
	Warning         string `json:"warning,omitempty"`
	NewCard         bool   `json:"new_card,omitempty"`
}

// PreparePayment creates a PaymentIntent for the active order's total and
// returns it with the shopper's saved cards. The order's StripePayment is
// stamped with the new intent.
func (s *StripeService) PreparePayment(ctx context.Context, session CartSession, shopper models.Shopper) (*StripePaymentContext, error) {
	order, customer, err := s.checkoutState(ctx, session, shopper)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, stripe.IntentParams{
		AmountCents:    order.RawTotal(),
		Currency:       s.currency,
		CustomerID:     customer.StripeCustomerID,
		OrderReference: order.ReferenceNumber(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	if err := s.stampPayment(ctx, order, intent); err != nil {
		return nil, err
	}

	cards, err := s.gateway.ListCards(ctx, customer.StripeCustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved cards: %w", err)
	}

	return &StripePaymentContext{
		PublishableKey: s.publishableKey,
		ClientSecret:   intent.ClientSecret,
		PaymentMethods: cards,
		Order:          order,
		Total:          order.Total(),
	}, nil
}

// ChargeSavedCard confirms a PaymentIntent off-session with a saved card. The
// order is placed later by the payment_intent.succeeded webhook.
func (s *StripeService) ChargeSavedCard(ctx context.Context, session CartSession, shopper models.Shopper, paymentMethodID string) (*ChargeResult, error) {
	if paymentMethodID == "" || paymentMethodID == NewCardSelection {
		return &ChargeResult{NewCard: true}, nil
	}

	order, customer, err := s.checkoutState(ctx, session, shopper)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, stripe.IntentParams{
		AmountCents:     order.RawTotal(),
		Currency:        s.currency,
		CustomerID:      customer.StripeCustomerID,
		PaymentMethodID: paymentMethodID,
		OrderReference:  order.ReferenceNumber(),
	})
	var cardErr *stripe.CardError
	if errors.As(err, &cardErr) {
		s.loggerFromContext(ctx).Warn("saved card declined", "order_id", order.ID, "code", cardErr.Code)
		return &ChargeResult{Warning: cardErr.Code}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to charge saved card: %w", err)
	}
	if err := s.stampPayment(ctx, order, intent); err != nil {
		return nil, err
	}

	return &ChargeResult{PaymentIntentID: intent.ID, Status: intent.Status}, nil
}

// HandlePaymentIntentSucceeded flags the intent's StripePayment successful
// and places its order. Replays rewrite the same flags.
func (s *StripeService) HandlePaymentIntentSucceeded(ctx context.Context, intentID string) error {
	span := sentry.StartSpan(
		ctx,
		"service.stripe.payment_intent_succeeded",
		sentry.WithOpName("service.stripe"),
		sentry.WithDescription("HandlePaymentIntentSucceeded"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	if intentID == "" {
		return fmt.Errorf("missing payment intent ID")
	}

	payment, err := s.payments.GetStripePaymentByIntentID(ctx, intentID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrStripePaymentNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load stripe payment: %w", err)
	}

	if err := s.payments.MarkStripePaymentSuccessful(ctx, payment.ID); err != nil {
		return fmt.Errorf("failed to mark stripe payment successful: %w", err)
	}

	order, err := s.orders.GetByID(ctx, payment.OrderID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}

	return s.reconciler.Settle(ctx, order, Settlement{
		Provider:   PaymentMethodStripe,
		Reference:  intentID,
		Amount:     payment.Amount,
		Currency:   s.currency,
		Successful: true,
	})
}

// checkoutState loads the active order with its lines and the shopper's
// customer profile, registering the customer with Stripe on first use.
func (s *StripeService) checkoutState(ctx context.Context, session CartSession, shopper models.Shopper) (*models.Order, *models.Customer, error) {
	if s.gateway == nil {
		return nil, nil, ErrPaymentsDisabled
	}
	if !shopper.Authenticated() {
		return nil, nil, ErrLoginRequired
	}

	order, err := s.cart.Summary(ctx, session, shopper)
	if err != nil {
		return nil, nil, err
	}
	if len(order.Items) == 0 {
		return nil, nil, ErrEmptyCart
	}

	customer, err := s.customers.GetOrCreate(ctx, shopper.UserID, shopper.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if customer.StripeCustomerID == "" {
		customerID, err := s.gateway.CreateCustomer(ctx, customer.Email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stripe customer: %w", err)
		}
		if err := s.customers.SetStripeCustomerID(ctx, shopper.UserID, customerID); err != nil {
			return nil, nil, fmt.Errorf("failed to save stripe customer: %w", err)
		}
		customer.StripeCustomerID = customerID
		s.loggerFromContext(ctx).Info("registered stripe customer", "user_id", shopper.UserID)
	}
	return order, customer, nil
}

func (s *StripeService) stampPayment(ctx context.Context, order *models.Order, intent *stripe.Intent) error {
	payment, err := s.payments.UpsertStripePayment(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to find stripe payment: %w", err)
	}
	payment.PaymentIntentID = intent.ID
	payment.Amount = models.CentsToAmount(order.RawTotal())
	if err := s.payments.UpdateStripePayment(ctx, payment); err != nil {
		return fmt.Errorf("failed to stamp stripe payment: %w", err)
	}
	return nil
}
