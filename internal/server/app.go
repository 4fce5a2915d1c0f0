// Package server initializes and runs the FinTrack API server. It opens the
// account store, applies migrations, optionally seeds the demo account and
// serves the HTTP and gRPC endpoints until a signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/server/auth"
	"github.com/dmitrijs2005/fintrack/internal/server/config"
	"github.com/dmitrijs2005/fintrack/internal/server/httpserver"
	"github.com/dmitrijs2005/fintrack/internal/server/metrics"
	"github.com/dmitrijs2005/fintrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/fintrack/internal/server/grpc"
)

const metricsNamespace = "fintrack"

type App struct {
	config      *config.Config
	logger      logging.Logger
	codec       *auth.TokenCodec
	verifier    *auth.BcryptVerifier
	repomanager repomanager.RepositoryManager
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
	openDB      func(ctx context.Context, dsn string) (*sql.DB, error)
}

// NewApp validates c and builds the pieces that need no I/O.
func NewApp(c *config.Config, l logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	codec, err := auth.NewTokenCodec([]byte(c.SecretKey), c.TokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	verifier, err := auth.NewBcryptVerifier(c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("credential verifier: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &App{
		config:      c,
		logger:      l,
		codec:       codec,
		verifier:    verifier,
		repomanager: repomanager.NewPostgresRepositoryManager(),
		registry:    reg,
		metrics:     metrics.New(reg, metricsNamespace),
		openDB:      repomanager.OpenPostgres,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// prepareStore opens the database, migrates it and seeds the demo account
// when asked to.
func (app *App) prepareStore(ctx context.Context) (*sql.DB, error) {
	db, err := app.openDB(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	applied, err := app.repomanager.RunMigrations(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	if applied > 0 {
		app.logger.Info(ctx, "Database migrated", "applied", applied)
	}

	if app.config.SeedDemoAccount {
		created, err := services.NewSeeder(db, app.repomanager, app.verifier).EnsureDemoAccount(ctx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("seed demo account: %w", err)
		}
		if created {
			app.logger.Info(ctx, "Demo account created", "email", services.DemoEmail)
		}
	}

	return db, nil
}

// routes builds the HTTP handler over sessions.
func (app *App) routes(sessions *services.SessionService) (http.Handler, error) {
	var insights http.Handler
	if app.config.AIServiceURL != "" {
		u, err := url.Parse(app.config.AIServiceURL)
		if err != nil {
			return nil, fmt.Errorf("ai service url: %w", err)
		}
		insights = httpserver.NewInsightsProxy(u, app.logger)
	}

	return httpserver.NewRouter(httpserver.RouterDeps{
		Handler:       httpserver.NewHandler(sessions, app.logger, app.metrics),
		Authenticator: httpserver.NewAuthenticator(sessions, app.logger, app.metrics),
		Insights:      insights,
		Gatherer:      app.registry,
		Logger:        app.logger,
	}), nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc, h http.Handler) error {
	s := httpserver.NewServer(app.config.EndpointAddrHTTP, h, app.logger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc, sessions *services.SessionService) error {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, sessions, app.metrics)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return fmt.Errorf("grpc server: %w", err)
	}
	return nil
}

// Run serves until ctx is cancelled, a signal arrives or a server fails.
// The first server failure is returned once both servers have stopped.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	db, err := app.prepareStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions := services.NewSessionService(db, app.repomanager, app.codec, app.verifier)

	h, err := app.routes(sessions)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.startHTTPServer(ctx, cancelFunc, h); err != nil {
			errCh <- err
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.startGRPCServer(ctx, cancelFunc, sessions); err != nil {
			errCh <- err
		}
	}()

	wg.Wait()
	close(errCh)

	app.logger.Info(context.Background(), "App stopped")
	return <-errCh
}
