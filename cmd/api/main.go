package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/delux-wallet/delux_ledger/internal/config"
	"github.com/delux-wallet/delux_ledger/internal/infra"
	"github.com/delux-wallet/delux_ledger/internal/invest"
	"github.com/delux-wallet/delux_ledger/internal/ledger"
	"github.com/delux-wallet/delux_ledger/internal/logging"
	"github.com/delux-wallet/delux_ledger/internal/notification"
	"github.com/delux-wallet/delux_ledger/internal/routes"
	"github.com/delux-wallet/delux_ledger/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	deps := routes.Deps{Cfg: cfg, Logger: logger}

	var (
		accountStore    ledger.Store
		investmentStore invest.Store
	)
	switch cfg.StoreBackend {
	case "postgres":
		db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		deps.DB = db

		if accountStore, err = ledger.NewPostgresStore(ctx, db); err != nil {
			logger.Error("init accounts store", "error", err)
			os.Exit(1)
		}
		if investmentStore, err = invest.NewPostgresStore(ctx, db); err != nil {
			logger.Error("init investments store", "error", err)
			os.Exit(1)
		}
	default:
		if accountStore, err = ledger.NewJSONStore(cfg.DataDir); err != nil {
			logger.Error("init accounts store", "error", err)
			os.Exit(1)
		}
		if investmentStore, err = invest.NewJSONStore(cfg.DataDir); err != nil {
			logger.Error("init investments store", "error", err)
			os.Exit(1)
		}
	}

	if cfg.RedisURL != "" {
		cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
		deps.Cache = cache
	}

	notifier := notification.NewLoggerNotifier(logger)

	ledgerSvc, err := ledger.NewService(ctx, accountStore, cfg.WithdrawalMin, notifier, logger)
	if err != nil {
		logger.Error("init ledger", "error", err)
		os.Exit(1)
	}
	deps.Ledger = ledgerSvc

	book, err := invest.NewBook(ctx, investmentStore, ledgerSvc, cfg.InvestmentMin, cfg.Multiplier, notifier, logger)
	if err != nil {
		logger.Error("init investment book", "error", err)
		os.Exit(1)
	}
	deps.Book = book

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go invest.NewScheduler(book, cfg.SweepInterval, logger).Run(sweepCtx)

	srv := server.New(deps)

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
