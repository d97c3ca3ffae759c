package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	stripeapi "github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/gitshopapp/storefront/internal/services"
)

func stripeEventPayload(eventID, eventType, intentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"object":"event","type":%q,"api_version":%q,"data":{"object":{"id":%q,"object":"payment_intent","status":"succeeded"}}}`,
		eventID, eventType, stripeapi.APIVersion, intentID,
	))
}

func signedWebhookRequest(t *testing.T, secret string, payload []byte) *http.Request {
	t.Helper()

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  secret,
	})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe/", bytes.NewReader(signed.Payload))
	req.Header.Set("Stripe-Signature", signed.Header)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestStripeWebhook_PaymentIntentSucceeded(t *testing.T) {
	t.Parallel()

	intents := &stubIntentHandler{}
	h, _, _ := newTestHandlers(t, testDeps{intents: intents})

	rec := httptest.NewRecorder()
	h.StripeWebhook(rec, signedWebhookRequest(t, testWebhookSecret, stripeEventPayload("evt_1", "payment_intent.succeeded", "pi_1")))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if len(intents.calls) != 1 || intents.calls[0] != "pi_1" {
		t.Fatalf("expected one call for pi_1, got %v", intents.calls)
	}
}

func TestStripeWebhook_ReplayIsAcknowledgedOnce(t *testing.T) {
	t.Parallel()

	intents := &stubIntentHandler{}
	h, _, _ := newTestHandlers(t, testDeps{intents: intents})
	payload := stripeEventPayload("evt_replay", "payment_intent.succeeded", "pi_2")

	for i := range 2 {
		rec := httptest.NewRecorder()
		h.StripeWebhook(rec, signedWebhookRequest(t, testWebhookSecret, payload))
		if rec.Code != http.StatusOK {
			t.Fatalf("delivery %d: expected status %d, got %d", i+1, http.StatusOK, rec.Code)
		}
	}

	if len(intents.calls) != 1 {
		t.Fatalf("expected the event to be processed once, got %d", len(intents.calls))
	}
}

func TestStripeWebhook_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		request    func(t *testing.T) *http.Request
		handlerErr error
		status     int
		calls      int
	}{
		{
			name: "missing signature",
			request: func(*testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/webhooks/stripe/", bytes.NewReader(stripeEventPayload("evt_2", "payment_intent.succeeded", "pi_3")))
			},
			status: http.StatusBadRequest,
		},
		{
			name: "signed with another secret",
			request: func(t *testing.T) *http.Request {
				return signedWebhookRequest(t, "whsec_other", stripeEventPayload("evt_3", "payment_intent.succeeded", "pi_3"))
			},
			status: http.StatusBadRequest,
		},
		{
			name: "malformed payload",
			request: func(t *testing.T) *http.Request {
				return signedWebhookRequest(t, testWebhookSecret, []byte("{not json"))
			},
			status: http.StatusBadRequest,
		},
		{
			name: "unhandled event type",
			request: func(t *testing.T) *http.Request {
				return signedWebhookRequest(t, testWebhookSecret, stripeEventPayload("evt_4", "charge.refunded", "pi_3"))
			},
			status: http.StatusBadRequest,
		},
		{
			name: "unknown payment intent",
			request: func(t *testing.T) *http.Request {
				return signedWebhookRequest(t, testWebhookSecret, stripeEventPayload("evt_5", "payment_intent.succeeded", "pi_unknown"))
			},
			handlerErr: services.ErrStripePaymentNotFound,
			status:     http.StatusNotFound,
			calls:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			intents := &stubIntentHandler{err: tt.handlerErr}
			h, _, _ := newTestHandlers(t, testDeps{intents: intents})

			rec := httptest.NewRecorder()
			h.StripeWebhook(rec, tt.request(t))

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			if len(intents.calls) != tt.calls {
				t.Fatalf("expected %d handler calls, got %d", tt.calls, len(intents.calls))
			}
		})
	}
}

func TestStripeWebhook_FailedEventIsRetried(t *testing.T) {
	t.Parallel()

	intents := &stubIntentHandler{err: services.ErrStripePaymentNotFound}
	h, _, _ := newTestHandlers(t, testDeps{intents: intents})
	payload := stripeEventPayload("evt_retry", "payment_intent.succeeded", "pi_4")

	rec := httptest.NewRecorder()
	h.StripeWebhook(rec, signedWebhookRequest(t, testWebhookSecret, payload))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	intents.err = nil
	rec = httptest.NewRecorder()
	h.StripeWebhook(rec, signedWebhookRequest(t, testWebhookSecret, payload))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d on retry, got %d", http.StatusOK, rec.Code)
	}
	if len(intents.calls) != 2 {
		t.Fatalf("expected two handler calls, got %d", len(intents.calls))
	}
}
