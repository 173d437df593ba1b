package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/checkout/internal/dal/postgres"
	"github.com/corray333/backend-labs/checkout/internal/dal/rabbitmq"
	outboxrepo "github.com/corray333/backend-labs/checkout/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/corray333/backend-labs/checkout/internal/dal/repositories/product/postgres"
	"github.com/corray333/backend-labs/checkout/internal/otel"
	"github.com/corray333/backend-labs/checkout/internal/payment"
	"github.com/corray333/backend-labs/checkout/internal/payment/simulator"
	"github.com/corray333/backend-labs/checkout/internal/payment/stripe"
	"github.com/corray333/backend-labs/checkout/internal/service/models/currency"
	"github.com/corray333/backend-labs/checkout/internal/service/services/checkoutsvc"
	httptransport "github.com/corray333/backend-labs/checkout/internal/transport/http"
	outboxworker "github.com/corray333/backend-labs/checkout/internal/worker/outbox"
	"github.com/corray333/backend-labs/checkout/pkg/metrics"
	"github.com/spf13/viper"
)

// App represents the application.
type App struct {
	checkoutSvc    *checkoutsvc.CheckoutService
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	outboxWorker   *outboxworker.Worker
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	if _, err := rabbitClient.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:    viper.GetString("rabbitmq.outbox.queue"),
		Durable: true,
	}); err != nil {
		panic("failed to declare outbox queue: " + err.Error())
	}

	outboxRepo := outboxrepo.NewPostgresOutboxRepository(postgresClient.Pool())
	worker := outboxworker.NewWorker(outboxRepo, rabbitClient)

	checkoutMetrics := metrics.NewCheckoutMetrics(nil)

	checkoutSvc := checkoutsvc.MustNewCheckoutService(
		checkoutsvc.WithPostgresClient(postgresClient),
		checkoutsvc.WithProductRepository(productrepo.NewPostgresProductRepository(postgresClient.Pool())),
		checkoutsvc.WithGateway(mustNewGateway()),
		checkoutsvc.WithCurrency(mustConfiguredCurrency()),
		checkoutsvc.WithMetrics(checkoutMetrics),
	)

	transport := httptransport.NewHTTPTransport(checkoutSvc)
	transport.RegisterRoutes()

	return &App{
		checkoutSvc:    checkoutSvc,
		transport:      transport,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		outboxWorker:   worker,
		otelController: otelController,
	}
}

// mustNewGateway selects the configured payment gateway implementation.
func mustNewGateway() payment.Gateway {
	switch provider := viper.GetString("payment.provider"); provider {
	case "stripe":
		apiKey := os.Getenv("CHECKOUT_STRIPE_SECRET_KEY")
		if apiKey == "" {
			panic("CHECKOUT_STRIPE_SECRET_KEY is not set")
		}

		return stripe.NewClient(apiKey)
	case "simulator", "":
		return simulator.NewGateway()
	default:
		panic("unknown payment provider: " + provider)
	}
}

func mustConfiguredCurrency() currency.Currency {
	configured := viper.GetString("payment.currency")
	if configured == "" {
		return currency.CurrencyUSD
	}

	cur, err := currency.ParseCurrency(configured)
	if err != nil {
		panic("invalid payment.currency: " + viper.GetString("payment.currency"))
	}

	return cur
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
