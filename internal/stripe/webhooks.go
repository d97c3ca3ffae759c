package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	stripeapi "github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

var (
	ErrMissingSignature = errors.New("missing stripe signature header")
	ErrInvalidPayload   = errors.New("invalid stripe webhook payload")
)

const maxWebhookBodyBytes = 65536

func ReadWebhookEvent(r *http.Request, secret string) (*stripeapi.Event, error) {
	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		return nil, ErrMissingSignature
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if !json.Valid(payload) {
		return nil, ErrInvalidPayload
	}

	event, err := webhook.ConstructEvent(payload, signature, secret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature validation failed: %w", err)
	}

	return &event, nil
}

// PaymentIntentFromEvent decodes the PaymentIntent carried by a
// payment_intent.* event.
func PaymentIntentFromEvent(event *stripeapi.Event) (*stripeapi.PaymentIntent, error) {
	if event == nil || event.Data == nil {
		return nil, ErrInvalidPayload
	}
	var intent stripeapi.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("%w: payment intent id is missing", ErrInvalidPayload)
	}
	return &intent, nil
}
