package stripe

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84/webhook"
)

const testIntentPayload = `{"id":"evt_test","object":"event","api_version":"2026-01-28.clover","type":"payment_intent.succeeded","data":{"object":{"id":"pi_test","object":"payment_intent","amount":1050}}}`

func TestReadWebhookEvent_MissingSignature(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/webhooks/stripe/", bytes.NewBufferString(`{}`))
	_, err := ReadWebhookEvent(req, "whsec_test")
	if !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("expected ErrMissingSignature, got %v", err)
	}
}

func TestReadWebhookEvent_MalformedPayload(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/webhooks/stripe/", bytes.NewBufferString(`{not json`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	_, err := ReadWebhookEvent(req, "whsec_test")
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestReadWebhookEvent_BadSignature(t *testing.T) {
	t.Parallel()

	payload := []byte(testIntentPayload)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    "whsec_other",
		Timestamp: time.Now(),
		Scheme:    "v1",
	})

	req := httptest.NewRequest("POST", "/webhooks/stripe/", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	if _, err := ReadWebhookEvent(req, "whsec_test_secret"); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestReadWebhookEvent_Valid(t *testing.T) {
	t.Parallel()

	secret := "whsec_test_secret"
	payload := []byte(testIntentPayload)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})

	req := httptest.NewRequest("POST", "/webhooks/stripe/", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signed.Header)

	event, err := ReadWebhookEvent(req, secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event == nil || event.ID != "evt_test" {
		t.Fatalf("unexpected event: %+v", event)
	}

	intent, err := PaymentIntentFromEvent(event)
	if err != nil {
		t.Fatalf("PaymentIntentFromEvent() error = %v", err)
	}
	if intent.ID != "pi_test" || intent.Amount != 1050 {
		t.Fatalf("unexpected intent: %+v", intent)
	}
}

func TestCardErrorMessage(t *testing.T) {
	t.Parallel()

	err := &CardError{Code: "card_declined"}
	if err.Error() != "card declined: card_declined" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
