package models

import (
	"fmt"
	"time"
)

const PaymentMethodPayPal = "PayPal"

// Payment records a PayPal capture. Amount is the float value declared by the
// provider, RawResponse the provider body exactly as received and
// ProviderReference the provider's order id, unique per method.
type Payment struct {
	ID            int64     `json:"id"`
	OrderID       int64     `json:"order_id"`
	PaymentMethod string    `json:"payment_method"`
	Timestamp     time.Time `json:"timestamp"`
	Successful    bool      `json:"successful"`
	Amount        float64   `json:"amount"`
	RawResponse   string    `json:"raw_response"`

	ProviderReference string `json:"provider_reference"`
}

func (p *Payment) ReferenceNumber() string {
	return fmt.Sprintf("PAYMENT-ORDER-%d-%d", p.OrderID, p.ID)
}

type StripePayment struct {
	ID              int64     `json:"id"`
	OrderID         int64     `json:"order_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	Timestamp       time.Time `json:"timestamp"`
	Successful      bool      `json:"successful"`
	Amount          float64   `json:"amount"`
}

func (p *StripePayment) ReferenceNumber() string {
	return fmt.Sprintf("STRIPE-PAYMENT-ORDER-%d-%d", p.OrderID, p.ID)
}

// Customer is the local profile of an externally managed user.
type Customer struct {
	UserID           int64  `json:"user_id"`
	Email            string `json:"email"`
	StripeCustomerID string `json:"stripe_customer_id"`
}

// Shopper identifies the caller of a storefront operation. A zero UserID is
// an anonymous visitor.
type Shopper struct {
	UserID int64
	Email  string
	Staff  bool
}

func (s Shopper) Authenticated() bool {
	return s.UserID != 0
}
