package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	stripeapi "github.com/stripe/stripe-go/v84"

	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/observability"
	stripewebhook "github.com/gitshopapp/storefront/internal/stripe"
)

// ErrUnhandledEvent is returned for event types the storefront does not act
// on. The webhook answers them with 400.
var ErrUnhandledEvent = errors.New("unhandled stripe event type")

// PaymentIntentHandler places the order a succeeded PaymentIntent paid for.
type PaymentIntentHandler interface {
	HandlePaymentIntentSucceeded(ctx context.Context, intentID string) error
}

type StripeEventRouter struct {
	service PaymentIntentHandler
	logger  *slog.Logger
}

func NewStripeEventRouter(service PaymentIntentHandler, logger *slog.Logger) *StripeEventRouter {
	return &StripeEventRouter{
		service: service,
		logger:  logger,
	}
}

func (r *StripeEventRouter) Handle(ctx context.Context, event *stripeapi.Event) error {
	span := sentry.StartSpan(
		ctx,
		"handler.stripe_router.handle",
		sentry.WithOpName("handler.stripe_router"),
		sentry.WithDescription("StripeEventRouter.Handle"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	meter := observability.MeterFromContext(ctx)
	meter.SetAttributes(attribute.String("webhook.provider", "stripe"))
	meter.Count("webhook.router.received", 1)
	recordFailed := func(reason string) {
		observability.CountFailure(ctx, "webhook.router.failed", reason)
	}

	if event == nil {
		recordFailed("missing_event")
		return fmt.Errorf("missing stripe event")
	}
	if event.Data == nil {
		recordFailed("missing_event_data")
		return fmt.Errorf("%w: missing event data", stripewebhook.ErrInvalidPayload)
	}
	meter.SetAttributes(attribute.String("webhook.event_type", string(event.Type)))

	logger := logging.FromContext(ctx, r.logger)

	switch event.Type {
	case stripeapi.EventTypePaymentIntentSucceeded:
		intent, err := stripewebhook.PaymentIntentFromEvent(event)
		if err != nil {
			recordFailed("invalid_payment_intent")
			return err
		}
		if err := r.service.HandlePaymentIntentSucceeded(ctx, intent.ID); err != nil {
			recordFailed("payment_intent_succeeded_failed")
			return err
		}
		meter.Count("webhook.router.processed", 1)
		span.Status = sentry.SpanStatusOK
		return nil
	default:
		logger.Info("unhandled Stripe event type", "type", event.Type)
		meter.Count("webhook.router.unhandled", 1)
		span.Status = sentry.SpanStatusInvalidArgument
		return fmt.Errorf("%w: %s", ErrUnhandledEvent, event.Type)
	}
}
