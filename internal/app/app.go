package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ordent/fulfillment/internal/dal/postgres"
	"github.com/ordent/fulfillment/internal/dal/rabbitmq"
	orderrepo "github.com/ordent/fulfillment/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/ordent/fulfillment/internal/dal/repositories/outbox/postgres"
	stockrepo "github.com/ordent/fulfillment/internal/dal/repositories/stock/postgres"
	"github.com/ordent/fulfillment/internal/dal/searchindex"
	"github.com/ordent/fulfillment/internal/otel"
	"github.com/ordent/fulfillment/internal/service/services/fulfillsvc"
	"github.com/ordent/fulfillment/internal/service/validation"
	httptransport "github.com/ordent/fulfillment/internal/transport/http"
	outboxworker "github.com/ordent/fulfillment/internal/worker/outbox"
)

// App represents the application.
type App struct {
	fulfillSvc     *fulfillsvc.Service
	transport      *httptransport.HTTPTransport
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	search         *searchindex.RedisIndex
	outboxWorker   *outboxworker.Worker
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()
	search := searchindex.MustNewRedisIndex()

	pool := postgresClient.Pool()
	validators := validation.New(
		validator.New(),
		orderrepo.NewPostgresOrderRepository(pool),
		stockrepo.NewPostgresStockRepository(pool),
	)

	fulfillSvc := fulfillsvc.MustNewService(
		fulfillsvc.WithPostgresClient(postgresClient),
		fulfillsvc.WithSearchIndex(search),
		fulfillsvc.WithValidators(validators),
	)

	transport := httptransport.NewHTTPTransport(fulfillSvc)
	transport.RegisterRoutes()

	worker := outboxworker.NewWorker(
		outboxrepo.NewPostgresOutboxRepository(pool),
		rabbitClient,
	)

	return &App{
		fulfillSvc:     fulfillSvc,
		transport:      transport,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		search:         search,
		outboxWorker:   worker,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
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
	}

	if err := a.search.Close(); err != nil {
		slog.Error("Search index connection close error", "error", err)
	}

	a.postgresClient.Close()

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Trace provider shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
