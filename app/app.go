package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gitshopapp/storefront/internal/auth"
	"github.com/gitshopapp/storefront/internal/cache"
	"github.com/gitshopapp/storefront/internal/config"
	"github.com/gitshopapp/storefront/internal/db"
	"github.com/gitshopapp/storefront/internal/email"
	"github.com/gitshopapp/storefront/internal/handlers"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/observability"
	"github.com/gitshopapp/storefront/internal/paypal"
	"github.com/gitshopapp/storefront/internal/services"
	"github.com/gitshopapp/storefront/internal/session"
	"github.com/gitshopapp/storefront/internal/stripe"
)

const (
	shopName             = "Storefront"
	paypalRequestTimeout = 15 * time.Second
	stripeRequestTimeout = 30 * time.Second
)

type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	DB             *pgxpool.Pool
	CacheProvider  cache.Provider
	SessionManager *session.Manager
	Handlers       *handlers.Handlers

	flushSentry func()
}

// Bootstrap loads configuration, starts Sentry and builds the logger. It is
// the part of New the migrate and seed commands share.
func Bootstrap() (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Environment)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Sentry: cfg.SentryDSN != "",
	})
	return cfg, logger, flush, nil
}

func New() (*App, error) {
	cfg, logger, flush, err := Bootstrap()
	if err != nil {
		return nil, err
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	database, err := db.Connect(startupCtx, cfg.DatabaseURL)
	if err != nil {
		flush()
		return nil, err
	}

	a := &App{
		Config:      cfg,
		Logger:      logger,
		DB:          database,
		flushSentry: flush,
	}

	a.CacheProvider, err = cache.NewProvider(startupCtx, cache.Config{
		Provider:      cfg.CacheProvider,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	sessionStore, err := session.NewStore(startupCtx, session.Config{
		Provider:      cfg.SessionStoreProvider,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	a.SessionManager = session.NewManager(sessionStore, cfg.SecureCookies())

	verifier, err := auth.NewVerifier(cfg.AuthTokenSecret)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	emailProvider, err := email.NewProvider(email.Config{
		APIKey: cfg.ResendAPIKey,
		From:   cfg.EmailFrom,
	}, logger.With("component", "email"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize email provider: %w", err)
	}
	emailRenderer, err := email.NewRenderer()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize email templates: %w", err)
	}

	orderStore := db.NewOrderStore(database)
	catalogStore := db.NewCatalogStore(database)
	addressStore := db.NewAddressStore(database)
	customerStore := db.NewCustomerStore(database)
	paymentStore := db.NewPaymentStore(database)

	notifier := services.NewEmailOrderNotifier(
		emailProvider,
		emailRenderer,
		orderStore,
		addressStore,
		customerStore,
		services.ShopDetails{Name: shopName, URL: cfg.BaseURL},
	)
	reconciler := services.NewReconciler(orderStore, notifier, logger.With("component", "reconciler"))

	cartService := services.NewCartService(orderStore, catalogStore, logger.With("component", "cart_service"))
	checkoutService := services.NewCheckoutService(cartService, orderStore, addressStore, logger.With("component", "checkout_service"))
	catalogService := services.NewCatalogService(catalogStore, logger.With("component", "catalog_service"))
	orderService := services.NewOrderService(orderStore, addressStore, paymentStore, logger.With("component", "order_service"))
	staffService := services.NewStaffService(orderStore, catalogStore, logger.With("component", "staff_service"))

	paypalOpts := services.PayPalOptions{
		ClientID:    cfg.PayPalClientID,
		CallbackURL: strings.TrimRight(cfg.BaseURL, "/") + "/confirm-order/",
		Currency:    cfg.Currency,
	}
	if cfg.PayPalVerification() {
		paypalOpts.Verifier = paypal.NewClient(paypal.Config{
			ClientID:     cfg.PayPalClientID,
			ClientSecret: cfg.PayPalClientSecret,
			BaseURL:      cfg.PayPalAPIBase,
		}, observability.NewHTTPClient(paypalRequestTimeout))
	} else {
		logger.Warn("PayPal credentials not configured; confirmations are trusted as posted")
	}
	paypalService := services.NewPayPalService(cartService, paymentStore, reconciler, paypalOpts, logger.With("component", "paypal_service"))

	stripeOpts := services.StripeOptions{
		PublishableKey: cfg.StripePublishableKey,
		Currency:       cfg.Currency,
	}
	if cfg.StripeSecretKey != "" {
		stripeOpts.Gateway = stripe.NewClient(cfg.StripeSecretKey, observability.NewHTTPClient(stripeRequestTimeout))
	} else {
		logger.Warn("Stripe secret key not configured; card payments are disabled")
	}
	stripeService := services.NewStripeService(
		cartService,
		orderStore,
		paymentStore,
		customerStore,
		reconciler,
		stripeOpts,
		logger.With("component", "stripe_service"),
	)
	stripeRouter := handlers.NewStripeEventRouter(stripeService, logger.With("component", "stripe_router"))

	a.Handlers, err = handlers.New(handlers.Dependencies{
		Config:          cfg,
		DB:              database,
		CacheProvider:   a.CacheProvider,
		SessionManager:  a.SessionManager,
		Verifier:        verifier,
		StripeRouter:    stripeRouter,
		CatalogService:  catalogService,
		CartService:     cartService,
		CheckoutService: checkoutService,
		PayPalService:   paypalService,
		StripeService:   stripeService,
		OrderService:    orderService,
		StaffService:    staffService,
		Logger:          logger,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return a, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.SessionManager != nil {
		closeSessionManager(a.Logger, a.SessionManager)
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
	if a.flushSentry != nil {
		a.flushSentry()
	}
}

func closeSessionManager(logger *slog.Logger, manager *session.Manager) {
	if manager == nil {
		return
	}
	if err := manager.Close(); err != nil && logger != nil {
		logger.Warn("failed to close session manager", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
