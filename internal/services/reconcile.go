package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/observability"
)

// Settlement is what a payment provider reports about an order. Amount is
// the provider's float value, Reference its own payment id.
type Settlement struct {
	Provider   string
	Reference  string
	Amount     float64
	Currency   string
	Successful bool
}

// Reconciler moves orders from cart to ordered once a provider settles them.
// Marking is unconditional so repeated settlements leave the order ordered.
type Reconciler struct {
	orders   OrderStore
	notifier OrderNotifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewReconciler(orders OrderStore, notifier OrderNotifier, logger *slog.Logger) *Reconciler {
	if notifier == nil {
		notifier = noopOrderNotifier{}
	}
	return &Reconciler{orders: orders, notifier: notifier, logger: logger, now: time.Now}
}

func (r *Reconciler) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, r.logger)
}

func (r *Reconciler) Settle(ctx context.Context, order *models.Order, settlement Settlement) error {
	span := sentry.StartSpan(
		ctx,
		"service.payment.settle",
		sentry.WithOpName("service.payment"),
		sentry.WithDescription("Settle"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	logger := r.loggerFromContext(ctx)
	meter := observability.MeterFromContext(ctx)
	meter.SetAttributes(attribute.String("provider", settlement.Provider))

	if !settlement.Successful {
		observability.CountFailure(ctx, "payment.settlement.failed", "unsuccessful")
		logger.Warn("ignoring unsuccessful settlement", "order_id", order.ID, "provider", settlement.Provider, "reference", settlement.Reference)
		return nil
	}

	orderedAt := r.now()
	if err := r.orders.MarkOrdered(ctx, order.ID, orderedAt); err != nil {
		observability.CountFailure(ctx, "payment.settlement.failed", "mark_ordered")
		return fmt.Errorf("failed to mark order %d as ordered: %w", order.ID, err)
	}
	order.Ordered = true
	order.OrderedDate = orderedAt
	meter.Count("payment.settlement.succeeded", 1)

	logger.Info("order placed",
		"order_id", order.ID,
		"provider", settlement.Provider,
		"reference", settlement.Reference,
		"amount", settlement.Amount,
		"currency", settlement.Currency)

	if err := r.notifier.OrderPlaced(ctx, order, settlement.Provider); err != nil {
		logger.Error("failed to send order confirmation", "error", err, "order_id", order.ID)
	}
	return nil
}
