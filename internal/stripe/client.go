// Package stripe wraps the Stripe API calls the storefront makes.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v84"
)

// CardError is a card decline reported by Stripe. Code is the provider's
// error code, shown to the shopper as a warning.
type CardError struct {
	Code    string
	Message string
}

func (e *CardError) Error() string {
	return fmt.Sprintf("card declined: %s", e.Code)
}

// SavedCard is a card payment method attached to a customer.
type SavedCard struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int64  `json:"exp_month"`
	ExpYear  int64  `json:"exp_year"`
}

// Intent is the subset of a PaymentIntent the storefront keeps.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountCents  int64
}

// IntentParams describes a PaymentIntent to create. A non-empty
// PaymentMethodID confirms the intent off-session in the same call.
type IntentParams struct {
	AmountCents     int64
	Currency        string
	CustomerID      string
	PaymentMethodID string
	OrderReference  string
}

type Client struct {
	client *stripe.Client
}

// NewClient builds a Stripe client. A non-nil httpClient replaces the
// library's default transport for API calls.
func NewClient(secretKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		return &Client{client: stripe.NewClient(secretKey)}
	}
	backends := stripe.NewBackendsWithConfig(&stripe.BackendConfig{HTTPClient: httpClient})
	return &Client{client: stripe.NewClient(secretKey, stripe.WithBackends(backends))}
}

// CreateCustomer registers a Stripe customer for the shopper's email.
func (c *Client) CreateCustomer(ctx context.Context, email string) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("context is required")
	}

	params := &stripe.CustomerCreateParams{}
	if email != "" {
		params.Email = stripe.String(email)
	}

	customer, err := c.client.V1Customers.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	return customer.ID, nil
}

// CreatePaymentIntent creates a PaymentIntent. Card declines are returned as
// *CardError.
func (c *Client) CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if params.AmountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive: %d", params.AmountCents)
	}

	intentParams := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(params.AmountCents),
		Currency: stripe.String(params.Currency),
	}
	if params.CustomerID != "" {
		intentParams.Customer = stripe.String(params.CustomerID)
	}
	if params.OrderReference != "" {
		intentParams.Metadata = map[string]string{"order_reference": params.OrderReference}
	}
	if params.PaymentMethodID != "" {
		intentParams.PaymentMethod = stripe.String(params.PaymentMethodID)
		intentParams.OffSession = stripe.Bool(true)
		intentParams.Confirm = stripe.Bool(true)
	}

	intent, err := c.client.V1PaymentIntents.Create(ctx, intentParams)
	if err != nil {
		if cardErr := asCardError(err); cardErr != nil {
			return nil, cardErr
		}
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
		AmountCents:  intent.Amount,
	}, nil
}

// ListCards returns the customer's saved card payment methods.
func (c *Client) ListCards(ctx context.Context, customerID string) ([]SavedCard, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if customerID == "" {
		return []SavedCard{}, nil
	}

	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}

	cards := []SavedCard{}
	for pm, err := range c.client.V1PaymentMethods.List(ctx, params) {
		if err != nil {
			return nil, fmt.Errorf("failed to list payment methods: %w", err)
		}
		if pm.Card == nil {
			continue
		}
		cards = append(cards, SavedCard{
			ID:       pm.ID,
			Brand:    string(pm.Card.Brand),
			Last4:    pm.Card.Last4,
			ExpMonth: pm.Card.ExpMonth,
			ExpYear:  pm.Card.ExpYear,
		})
	}
	return cards, nil
}

func asCardError(err error) *CardError {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) || stripeErr.Type != stripe.ErrorTypeCard {
		return nil
	}
	return &CardError{Code: string(stripeErr.Code), Message: stripeErr.Msg}
}
