package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gitshopapp/storefront/internal/auth"
	"github.com/gitshopapp/storefront/internal/cache"
	"github.com/gitshopapp/storefront/internal/config"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/internal/session"
)

const (
	testTokenSecret   = "0123456789abcdef0123456789abcdef"
	testWebhookSecret = "whsec_test_secret"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubCatalog struct{}

func (stubCatalog) List(context.Context, string) (*services.CatalogListing, error) {
	return &services.CatalogListing{}, nil
}

func (stubCatalog) Detail(context.Context, string) (*models.Product, error) {
	return nil, services.ErrProductNotFound
}

type stubCart struct{ err error }

func (s stubCart) Summary(context.Context, services.CartSession, models.Shopper) (*models.Order, error) {
	return &models.Order{}, s.err
}

func (s stubCart) Product(context.Context, string) (*models.Product, error) {
	return &models.Product{}, s.err
}

func (s stubCart) AddItem(context.Context, services.CartSession, models.Shopper, services.AddItemInput) (*models.OrderItem, error) {
	return &models.OrderItem{}, s.err
}

func (s stubCart) IncreaseQuantity(context.Context, services.CartSession, models.Shopper, int64) error {
	return s.err
}

func (s stubCart) DecreaseQuantity(context.Context, services.CartSession, models.Shopper, int64) error {
	return s.err
}

func (s stubCart) RemoveItem(context.Context, services.CartSession, models.Shopper, int64) error {
	return s.err
}

type stubCheckout struct {
	err   error
	input services.CheckoutInput
}

func (s *stubCheckout) Context(context.Context, services.CartSession, models.Shopper) (*services.CheckoutContext, error) {
	return &services.CheckoutContext{}, s.err
}

func (s *stubCheckout) SubmitAddresses(_ context.Context, _ services.CartSession, _ models.Shopper, input services.CheckoutInput) (*models.Order, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return &models.Order{ID: 1}, nil
}

type stubPayPal struct{ err error }

func (s stubPayPal) Context(context.Context, services.CartSession, models.Shopper) (*services.PayPalContext, error) {
	return &services.PayPalContext{}, s.err
}

func (s stubPayPal) ConfirmOrder(context.Context, services.CartSession, models.Shopper, []byte) (*models.Payment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Payment{ID: 3, OrderID: 7, Successful: true}, nil
}

type stubStripe struct {
	err      error
	selected string
}

func (s *stubStripe) PreparePayment(context.Context, services.CartSession, models.Shopper) (*services.StripePaymentContext, error) {
	return &services.StripePaymentContext{}, s.err
}

func (s *stubStripe) ChargeSavedCard(_ context.Context, _ services.CartSession, _ models.Shopper, paymentMethodID string) (*services.ChargeResult, error) {
	s.selected = paymentMethodID
	return &services.ChargeResult{}, s.err
}

type stubOrders struct{ err error }

func (s stubOrders) Detail(context.Context, models.Shopper, int64) (*services.OrderDetail, error) {
	return &services.OrderDetail{}, s.err
}

type stubStaff struct {
	err     error
	shopper models.Shopper
}

func (s *stubStaff) Orders(_ context.Context, shopper models.Shopper, _ int) (*services.StaffOrders, error) {
	s.shopper = shopper
	if s.err != nil {
		return nil, s.err
	}
	return &services.StaffOrders{}, nil
}

func (s *stubStaff) Products(_ context.Context, shopper models.Shopper, _ int) (*services.StaffProducts, error) {
	s.shopper = shopper
	if s.err != nil {
		return nil, s.err
	}
	return &services.StaffProducts{}, nil
}

func (s *stubStaff) CreateProduct(_ context.Context, shopper models.Shopper, _ services.ProductInput) (*models.Product, error) {
	s.shopper = shopper
	return &models.Product{}, s.err
}

func (s *stubStaff) UpdateProduct(_ context.Context, shopper models.Shopper, _ int64, _ services.ProductInput) (*models.Product, error) {
	s.shopper = shopper
	return &models.Product{}, s.err
}

func (s *stubStaff) DeleteProduct(_ context.Context, shopper models.Shopper, _ int64) error {
	s.shopper = shopper
	return s.err
}

type stubIntentHandler struct {
	err   error
	calls []string
}

func (s *stubIntentHandler) HandlePaymentIntentSucceeded(_ context.Context, intentID string) error {
	s.calls = append(s.calls, intentID)
	return s.err
}

type testDeps struct {
	db       stubPinger
	cart     stubCart
	checkout *stubCheckout
	paypal   stubPayPal
	stripe   *stubStripe
	orders   stubOrders
	staff    *stubStaff
	intents  *stubIntentHandler
}

func newTestHandlers(t *testing.T, deps testDeps) (*Handlers, *session.Manager, *auth.Verifier) {
	t.Helper()

	if deps.checkout == nil {
		deps.checkout = &stubCheckout{}
	}
	if deps.stripe == nil {
		deps.stripe = &stubStripe{}
	}
	if deps.staff == nil {
		deps.staff = &stubStaff{}
	}
	if deps.intents == nil {
		deps.intents = &stubIntentHandler{}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatalf("NewMemoryProvider() error = %v", err)
	}
	store := session.NewMemoryStore()
	t.Cleanup(func() {
		_ = store.Close()
	})
	manager := session.NewManager(store, false)
	verifier, err := auth.NewVerifier(testTokenSecret)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	h, err := New(Dependencies{
		Config:          &config.Config{BaseURL: "https://shop.example.com", StripeWebhookSecret: testWebhookSecret},
		DB:              deps.db,
		CacheProvider:   provider,
		SessionManager:  manager,
		Verifier:        verifier,
		StripeRouter:    NewStripeEventRouter(deps.intents, logger),
		CatalogService:  stubCatalog{},
		CartService:     deps.cart,
		CheckoutService: deps.checkout,
		PayPalService:   deps.paypal,
		StripeService:   deps.stripe,
		OrderService:    deps.orders,
		StaffService:    deps.staff,
		Logger:          logger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return h, manager, verifier
}

func issueToken(t *testing.T, verifier *auth.Verifier, shopper models.Shopper) string {
	t.Helper()

	token, err := verifier.Issue(shopper, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return token
}

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := New(Dependencies{}); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "healthy", status: http.StatusOK},
		{name: "database down", err: errors.New("connection refused"), status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h, _, _ := newTestHandlers(t, testDeps{db: stubPinger{err: tt.err}})
			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}
