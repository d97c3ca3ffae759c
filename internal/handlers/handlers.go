package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gitshopapp/storefront/internal/auth"
	"github.com/gitshopapp/storefront/internal/cache"
	"github.com/gitshopapp/storefront/internal/config"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/internal/session"
)

const maxWebhookBodyBytes = 1 << 20 // 1 MB

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CatalogService interface {
	List(ctx context.Context, category string) (*services.CatalogListing, error)
	Detail(ctx context.Context, slug string) (*models.Product, error)
}

type CartService interface {
	Summary(ctx context.Context, session services.CartSession, shopper models.Shopper) (*models.Order, error)
	Product(ctx context.Context, slug string) (*models.Product, error)
	AddItem(ctx context.Context, session services.CartSession, shopper models.Shopper, input services.AddItemInput) (*models.OrderItem, error)
	IncreaseQuantity(ctx context.Context, session services.CartSession, shopper models.Shopper, itemID int64) error
	DecreaseQuantity(ctx context.Context, session services.CartSession, shopper models.Shopper, itemID int64) error
	RemoveItem(ctx context.Context, session services.CartSession, shopper models.Shopper, itemID int64) error
}

type CheckoutService interface {
	Context(ctx context.Context, session services.CartSession, shopper models.Shopper) (*services.CheckoutContext, error)
	SubmitAddresses(ctx context.Context, session services.CartSession, shopper models.Shopper, input services.CheckoutInput) (*models.Order, error)
}

type PayPalService interface {
	Context(ctx context.Context, session services.CartSession, shopper models.Shopper) (*services.PayPalContext, error)
	ConfirmOrder(ctx context.Context, session services.CartSession, shopper models.Shopper, body []byte) (*models.Payment, error)
}

type StripeService interface {
	PreparePayment(ctx context.Context, session services.CartSession, shopper models.Shopper) (*services.StripePaymentContext, error)
	ChargeSavedCard(ctx context.Context, session services.CartSession, shopper models.Shopper, paymentMethodID string) (*services.ChargeResult, error)
}

type OrderService interface {
	Detail(ctx context.Context, shopper models.Shopper, orderID int64) (*services.OrderDetail, error)
}

type StaffService interface {
	Orders(ctx context.Context, shopper models.Shopper, page int) (*services.StaffOrders, error)
	Products(ctx context.Context, shopper models.Shopper, page int) (*services.StaffProducts, error)
	CreateProduct(ctx context.Context, shopper models.Shopper, input services.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, shopper models.Shopper, productID int64, input services.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, shopper models.Shopper, productID int64) error
}

// Handlers provides HTTP request handlers for the storefront.
type Handlers struct {
	config         *config.Config
	db             Pinger
	cacheProvider  cache.Provider
	sessionManager *session.Manager
	verifier       *auth.Verifier
	stripeRouter   *StripeEventRouter
	catalog        CatalogService
	cart           CartService
	checkout       CheckoutService
	paypal         PayPalService
	stripe         StripeService
	orders         OrderService
	staff          StaffService
	logger         *slog.Logger
}

type Dependencies struct {
	Config          *config.Config
	DB              Pinger
	CacheProvider   cache.Provider
	SessionManager  *session.Manager
	Verifier        *auth.Verifier
	StripeRouter    *StripeEventRouter
	CatalogService  CatalogService
	CartService     CartService
	CheckoutService CheckoutService
	PayPalService   PayPalService
	StripeService   StripeService
	OrderService    OrderService
	StaffService    StaffService
	Logger          *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("handlers dependencies: db is required")
	}
	if deps.CacheProvider == nil {
		return nil, fmt.Errorf("handlers dependencies: cacheProvider is required")
	}
	if deps.SessionManager == nil {
		return nil, fmt.Errorf("handlers dependencies: sessionManager is required")
	}
	if deps.Verifier == nil {
		return nil, fmt.Errorf("handlers dependencies: verifier is required")
	}
	if deps.StripeRouter == nil {
		return nil, fmt.Errorf("handlers dependencies: stripeRouter is required")
	}
	if deps.CatalogService == nil || deps.CartService == nil || deps.CheckoutService == nil {
		return nil, fmt.Errorf("handlers dependencies: catalog, cart and checkout services are required")
	}
	if deps.PayPalService == nil || deps.StripeService == nil {
		return nil, fmt.Errorf("handlers dependencies: payment services are required")
	}
	if deps.OrderService == nil || deps.StaffService == nil {
		return nil, fmt.Errorf("handlers dependencies: order and staff services are required")
	}

	return &Handlers{
		config:         deps.Config,
		db:             deps.DB,
		cacheProvider:  deps.CacheProvider,
		sessionManager: deps.SessionManager,
		verifier:       deps.Verifier,
		stripeRouter:   deps.StripeRouter,
		catalog:        deps.CatalogService,
		cart:           deps.CartService,
		checkout:       deps.CheckoutService,
		paypal:         deps.PayPalService,
		stripe:         deps.StripeService,
		orders:         deps.OrderService,
		staff:          deps.StaffService,
		logger:         logger.With("component", "handlers"),
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	if err := h.db.Ping(ctx); err != nil {
		logger.Error("database health check failed", "error", err)
		http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		logger.Error("failed to encode health response", "error", err)
	}
}

// SessionMiddleware makes sure every request carries a session and tags the
// request logger with the session's user and active order.
func (h *Handlers) SessionMiddleware(next http.Handler) http.Handler {
	return h.sessionManager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess := session.FromContext(r.Context()); sess != nil && sess.Data != nil {
			var attrs []any
			if sess.Data.UserID > 0 {
				attrs = append(attrs, "user_id", sess.Data.UserID)
			}
			if sess.Data.OrderID > 0 {
				attrs = append(attrs, "order_id", sess.Data.OrderID)
			}
			r = r.WithContext(logging.WithAttrs(r.Context(), attrs...))
		}
		next.ServeHTTP(w, r)
	}))
}

// ThankYou is shown after a successful payment.
func (h *Handlers) ThankYou(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{"message": "Thanks for your purchase!"})
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}
