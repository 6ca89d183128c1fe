package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/cleanpress/api/internal/handlers"
	"github.com/cleanpress/api/internal/payments"
	"github.com/cleanpress/api/internal/platform/config"
	pfirestore "github.com/cleanpress/api/internal/platform/firestore"
	"github.com/cleanpress/api/internal/platform/jobs"
	"github.com/cleanpress/api/internal/platform/observability"
	firestoreRepo "github.com/cleanpress/api/internal/repositories/firestore"
	"github.com/cleanpress/api/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	defaultTaxRate, err := decimal.NewFromString(strings.TrimSpace(cfg.Defaults.TaxRatePct))
	if err != nil {
		logger.Fatal("invalid default tax rate", zap.String("value", cfg.Defaults.TaxRatePct), zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	if _, err := firestoreProvider.Client(ctx); err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	registry, err := firestoreRepo.NewRegistry(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise repositories", zap.Error(err))
	}

	var events services.EventPublisher
	var pubsubClient *pubsub.Client
	if cfg.Features.EnableEvents && cfg.PubSub.EventsTopic != "" {
		pubsubClient, err = pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		publisher, err := jobs.NewPubSubEventPublisher(pubsubClient.Topic(cfg.PubSub.EventsTopic))
		if err != nil {
			logger.Fatal("failed to initialise event publisher", zap.Error(err))
		}
		events = publisher
	}
	defer func() {
		if pubsubClient != nil {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}
	}()

	var cardCharger payments.Provider = payments.DisabledProvider{}
	if cfg.Features.EnableCardPayments && strings.TrimSpace(cfg.Stripe.APIKey) != "" {
		stripeProvider, err := payments.NewStripeProvider(payments.StripeProviderConfig{
			APIKey: cfg.Stripe.APIKey,
			Logger: observability.ServiceLogger(),
		})
		if err != nil {
			logger.Fatal("failed to initialise stripe provider", zap.Error(err))
		}
		cardCharger = stripeProvider
	}

	serviceLogger := observability.ServiceLogger()
	pricing := services.NewPricingEngine(services.PricingEngineDeps{Logger: serviceLogger})

	settingsService, err := services.NewSettingsService(services.SettingsServiceDeps{
		Settings:          registry.Settings(),
		DefaultStoreName:  cfg.Defaults.StoreName,
		DefaultTaxRatePct: defaultTaxRate,
		DefaultCurrency:   cfg.Defaults.Currency,
		Logger:            serviceLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise settings service", zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Products: registry.Products(),
		Logger:   serviceLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	customerService, err := services.NewCustomerService(services.CustomerServiceDeps{
		Customers: registry.Customers(),
		Logger:    serviceLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise customer service", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:      registry.Orders(),
		Products:    registry.Products(),
		Customers:   registry.Customers(),
		Settings:    settingsService,
		Pricing:     pricing,
		CardCharger: cardCharger,
		UnitOfWork:  registry,
		Events:      events,
		Logger:      serviceLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	returnService, err := services.NewReturnService(services.ReturnServiceDeps{
		Orders:     registry.Orders(),
		Returns:    registry.Returns(),
		UnitOfWork: registry,
		Events:     events,
		Logger:     serviceLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise return service", zap.Error(err))
	}

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthStartedAt(startedAt),
		handlers.WithReadinessProbe("firestore", func(ctx context.Context) error {
			client, err := firestoreProvider.Client(ctx)
			if err != nil {
				return err
			}
			iter := client.Collections(ctx)
			if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
				return err
			}
			return nil
		}),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.TraceMiddleware(),
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(logger),
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithProductRoutes(handlers.NewProductHandlers(catalogService).Routes),
		handlers.WithCustomerRoutes(handlers.NewCustomerHandlers(customerService).Routes),
		handlers.WithOrderRoutes(handlers.NewOrderHandlers(orderService).Routes),
		handlers.WithReturnRoutes(handlers.NewReturnHandlers(returnService).Routes),
		handlers.WithSettingsRoutes(handlers.NewSettingsHandlers(settingsService).Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal("server error", zap.Error(err))
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}
