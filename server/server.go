package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gitshopapp/storefront/internal/config"
	"github.com/gitshopapp/storefront/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(h),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// NewRouter registers every storefront route. The product slug routes match
// any single path segment, so they are registered last.
func NewRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.MetricsContext)
	r.Use(h.SecurityHeaders)

	r.NotFoundHandler = http.HandlerFunc(notFound)

	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")
	r.HandleFunc("/webhooks/stripe/", h.StripeWebhook).Methods("POST").Name("webhooks.stripe")

	// Everything below runs with a session and rejects cross-origin writes.
	site := r.NewRoute().Subrouter()
	site.Use(h.SessionMiddleware)
	site.Use(h.RequireSameOrigin)

	site.HandleFunc("/auth/session", h.CreateSession).Methods("POST").Name("auth.session")
	site.HandleFunc("/auth/logout", h.Logout).Methods("GET").Name("auth.logout")

	site.HandleFunc("/shop/", h.ProductList).Methods("GET").Name("shop.list")
	site.HandleFunc("/shop/{slug}/", h.ProductDetail).Methods("GET").Name("shop.detail")

	site.HandleFunc("/checkout/", h.CheckoutForm).Methods("GET").Name("checkout")
	site.HandleFunc("/checkout/", h.Checkout).Methods("POST").Name("checkout.submit")
	site.HandleFunc("/payment/", h.PaymentForm).Methods("GET").Name("payment.paypal")
	site.HandleFunc("/confirm-order/", h.ConfirmOrder).Methods("POST").Name("payment.paypal.confirm")
	site.HandleFunc("/payment/stripe/", h.StripePaymentForm).Methods("GET").Name("payment.stripe")
	site.HandleFunc("/payment/stripe/", h.StripePayment).Methods("POST").Name("payment.stripe.charge")
	site.HandleFunc("/thank-you/", h.ThankYou).Methods("GET").Name("thank_you")
	site.HandleFunc("/orders/{id:[0-9]+}/", h.OrderDetail).Methods("GET").Name("orders.detail")

	site.HandleFunc("/increase-quantity/{id:[0-9]+}/", h.IncreaseQuantity).Methods("GET").Name("cart.increase")
	site.HandleFunc("/decrease-quantity/{id:[0-9]+}/", h.DecreaseQuantity).Methods("GET").Name("cart.decrease")
	site.HandleFunc("/remove-from-cart/{id:[0-9]+}/", h.RemoveFromCart).Methods("GET").Name("cart.remove")

	site.HandleFunc("/staff/", h.StaffOrders).Methods("GET").Name("staff.orders")
	site.HandleFunc("/staff/products/", h.StaffProducts).Methods("GET").Name("staff.products")
	site.HandleFunc("/staff/create/", h.StaffCreateProduct).Methods("POST").Name("staff.products.create")
	site.HandleFunc("/staff/products/{id:[0-9]+}/update/", h.StaffUpdateProduct).Methods("POST").Name("staff.products.update")
	site.HandleFunc("/staff/products/{id:[0-9]+}/delete/", h.StaffDeleteProduct).Methods("POST").Name("staff.products.delete")

	site.HandleFunc("/", h.CartSummary).Methods("GET").Name("cart.summary")
	site.HandleFunc("/{slug}/", h.AddToCartForm).Methods("GET").Name("cart.product")
	site.HandleFunc("/{slug}/", h.AddToCart).Methods("POST").Name("cart.add")

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Not Found"})
}
