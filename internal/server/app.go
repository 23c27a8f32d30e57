// Package server initializes and runs the application server. It wires the
// record store, the secondary store adapter, the services and the HTTP API,
// and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fintrack/fintrack/internal/logging"
	"github.com/fintrack/fintrack/internal/server/config"
	"github.com/fintrack/fintrack/internal/server/httpapi"
	"github.com/fintrack/fintrack/internal/server/repositories/repomanager"
	"github.com/fintrack/fintrack/internal/server/secondary"
	"github.com/fintrack/fintrack/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	adapter secondary.Adapter
	server  *httpapi.Server

	closeAdapter func() error
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	repos, err := repomanager.NewSQLiteRepositoryManager(cfg.RecordStoreDSN)
	if err != nil {
		return nil, fmt.Errorf("record store init error: %w", err)
	}

	var adapter secondary.Adapter
	closeAdapter := func() error { return nil }
	if cfg.SecondaryDSN == "" {
		// No secondary store configured: run against the in-memory stub so
		// the rest of the app keeps working.
		adapter = secondary.NewStub()
	} else {
		pg, err := secondary.NewPostgres(cfg.SecondaryDSN, cfg.SecondaryTimeout)
		if err != nil {
			return nil, fmt.Errorf("secondary store init error: %w", err)
		}
		if err := pg.RunMigrations(context.Background()); err != nil {
			return nil, fmt.Errorf("secondary migration error: %w", err)
		}
		adapter = pg
		closeAdapter = pg.Close
	}

	recalc := services.NewBudgetRecalculator(repos.Budgets(), repos.Expenses(), logger)
	recordSvc := services.NewRecordService(repos.Incomes(), repos.Expenses(), repos.Budgets(), repos.Goals(), recalc, logger)
	syncSvc := services.NewSyncService(repos.Incomes(), repos.Expenses(), repos.Budgets(), repos.Goals(), adapter, logger)
	reportSvc := services.NewReportService(repos.Incomes(), repos.Expenses(), repos.Budgets(), repos.Goals(), adapter, logger)
	settingsSvc := services.NewSettingsService(repos.Incomes(), repos.Expenses(), repos.Budgets(), repos.Goals(), cfg, logger)
	userSvc := services.NewUserService(repos.Users(), cfg)

	srv := httpapi.NewServer(userSvc, recordSvc, syncSvc, reportSvc, settingsSvc, cfg, logger)

	return &App{
		config:       cfg,
		logger:       logger,
		repos:        repos,
		adapter:      adapter,
		server:       srv,
		closeAdapter: closeAdapter,
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

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	httpServer := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			app.logger.Error(ctx, "http server error", "error", err)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	}

	if err := app.closeAdapter(); err != nil {
		app.logger.Error(ctx, "secondary store close error", "error", err)
	}
	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "record store close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
