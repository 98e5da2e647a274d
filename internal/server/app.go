// Package server initializes and runs the Roomify API server.
// It opens the database, applies migrations, wires the services and runs the
// HTTP API next to the gRPC health endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/roomify-app/roomify/internal/cryptox"
	"github.com/roomify-app/roomify/internal/dbx"
	"github.com/roomify-app/roomify/internal/logging"
	"github.com/roomify-app/roomify/internal/server/billing"
	"github.com/roomify-app/roomify/internal/server/config"
	"github.com/roomify-app/roomify/internal/server/events"
	"github.com/roomify-app/roomify/internal/server/httpapi"
	"github.com/roomify-app/roomify/internal/server/ratelimit"
	"github.com/roomify-app/roomify/internal/server/repositories/repomanager"
	"github.com/roomify-app/roomify/internal/server/services"

	gs "github.com/roomify-app/roomify/internal/server/grpc"
)

// maxAuthBurst caps how many auth requests one address may fire back to back.
const maxAuthBurst = 10

var (
	openDB         = dbx.Open
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	broker     events.Broker
	httpServer *httpapi.Server
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	db, err := openDB(ctx, repomanager.DriverName, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	broker, err := newBroker(ctx, c, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("event broker error: %w", err)
	}

	passphrase, fallback := c.EncryptionPassphrase()
	if fallback {
		logger.Warn(ctx, "no encryption key configured, using the built-in passphrase")
	}
	cipher := cryptox.NewPassphraseCipher(passphrase)

	catalog, err := billing.DefaultCatalog()
	if err != nil {
		_ = broker.Close()
		_ = db.Close()
		return nil, fmt.Errorf("billing catalog error: %w", err)
	}
	checkout := billing.NewStripeCheckout(c.StripeBaseURL, c.StripeSecretKey)

	us := services.NewUserService(db, rm, c, broker, services.LogMailer{Logger: logger}, logger)
	ks := services.NewKeyService(db, rm, cipher, logger)
	uss := services.NewUsageService(db, rm, logger)
	bs := services.NewBillingService(db, rm, catalog, checkout, logger)

	h := httpapi.NewHandler(us, ks, uss, bs, broker, logger, c.SecretKey)
	limiter := ratelimit.NewLimiter(c.AuthRateLimit, min(c.AuthRateLimit, maxAuthBurst))
	httpServer := httpapi.NewServer(c.EndpointAddrHTTP, h.SetupRoutes(limiter, c.AuthRateLimit, c.TrustProxy), logger)

	grpcServer, err := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db.PingContext, 0)
	if err != nil {
		_ = broker.Close()
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		broker:     broker,
		httpServer: httpServer,
		grpcServer: grpcServer,
	}, nil
}

func newBroker(ctx context.Context, c *config.Config, logger logging.Logger) (events.Broker, error) {
	if c.RedisURL == "" {
		return events.NewMemoryBroker(), nil
	}
	return events.NewRedisBroker(ctx, c.RedisURL, logger)
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx ends, a shutdown signal arrives or a server fails,
// then releases the broker and the database.
func (app *App) Run(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.broker.Close(); err != nil {
		app.logger.Error(ctx, "error closing event broker", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
