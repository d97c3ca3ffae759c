package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gitshopapp/storefront/internal/cache"
	"github.com/gitshopapp/storefront/internal/services"
	stripewebhook "github.com/gitshopapp/storefront/internal/stripe"
)

// stripeWebhookIdempotencyTTL is how long webhook event IDs are kept for deduplication
const stripeWebhookIdempotencyTTL = 24 * time.Hour

func (h *Handlers) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)

	event, err := stripewebhook.ReadWebhookEvent(r, h.config.StripeWebhookSecret)
	if err != nil {
		logger.Warn("failed to read Stripe webhook payload", "error", err)
		http.Error(w, "Invalid webhook", http.StatusBadRequest)
		return
	}

	if event == nil || event.ID == "" {
		logger.Warn("missing Stripe event ID")
		http.Error(w, "Missing event ID", http.StatusBadRequest)
		return
	}

	processed, err := cache.WebhookProcessed(ctx, h.cacheProvider, "stripe", event.ID)
	if err != nil {
		logger.Error("failed to check webhook idempotency cache", "error", err, "event_id", event.ID)
	}
	if processed {
		logger.Info("webhook already processed", "event_id", event.ID)
		w.WriteHeader(http.StatusOK)
		return
	}

	processErr := h.stripeRouter.Handle(ctx, event)
	switch {
	case processErr == nil:
	case errors.Is(processErr, ErrUnhandledEvent), errors.Is(processErr, stripewebhook.ErrInvalidPayload):
		logger.Warn("rejected Stripe webhook", "error", processErr, "type", event.Type)
		http.Error(w, "Unhandled event", http.StatusBadRequest)
		return
	case errors.Is(processErr, services.ErrStripePaymentNotFound):
		logger.Warn("Stripe webhook for unknown payment intent", "event_id", event.ID)
		http.Error(w, "Payment not found", http.StatusNotFound)
		return
	default:
		logger.Error("failed to process Stripe webhook", "error", processErr, "type", event.Type)
		http.Error(w, "Processing failed", http.StatusInternalServerError)
		return
	}

	if err := cache.MarkWebhookProcessed(ctx, h.cacheProvider, "stripe", event.ID, stripeWebhookIdempotencyTTL); err != nil {
		logger.Error("failed to mark webhook as processed in cache", "error", err)
	}
	w.WriteHeader(http.StatusOK)
}
