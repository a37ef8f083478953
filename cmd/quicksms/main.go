package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Bessima/quicksms/internal/clients/frontend"
	"github.com/Bessima/quicksms/internal/clients/supplier"
	"github.com/Bessima/quicksms/internal/config"
	"github.com/Bessima/quicksms/internal/config/db"
	"github.com/Bessima/quicksms/internal/handlers"
	"github.com/Bessima/quicksms/internal/middlewares/logger"
	"github.com/Bessima/quicksms/internal/repository"
	"github.com/Bessima/quicksms/internal/server"
	"github.com/Bessima/quicksms/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	conf := config.InitConfig()

	if err := logger.Initialize(conf.LogLevel); err != nil {
		logger.Log.Warn(err.Error())
	}

	if err := run(conf); err != nil {
		logger.Log.Fatal("quicksms stopped", zap.Error(err))
	}
}

func run(conf *config.Config) error {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := config.LoadCatalog(conf.CatalogPath)
	if err != nil {
		return err
	}

	database, err := db.NewDB(rootCtx, conf.DatabaseDNS)
	if err != nil {
		return err
	}
	defer database.Close()
	ledger := repository.NewLedger(database)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(registry)

	supplierClient := supplier.NewClient(conf.SupplierURL, conf.SupplierAPIKey)
	frontendClient := frontend.NewClient(conf.FrontendURL, conf.FrontendToken)

	coordinatorConfig := service.DefaultCoordinatorConfig()
	coordinatorConfig.PollInterval = conf.PollInterval
	coordinator := service.NewCoordinator(rootCtx, ledger, supplierClient, frontendClient, catalog, coordinatorConfig, metrics)

	operators := service.NewOperatorService(ledger.Operators)
	seeded, err := operators.Seed(rootCtx, catalog.Operators)
	if err != nil {
		return err
	}
	logger.Log.Info("operators merged", zap.Int("created", seeded))

	resumed, err := coordinator.Resume(rootCtx)
	if err != nil {
		logger.Log.Error("in-flight orders were not resumed", zap.Error(err))
	} else {
		logger.Log.Info("in-flight orders resumed", zap.Int("tasks", resumed))
	}

	stats := service.NewStatsService(ledger, ledger.Operators, frontendClient, catalog.Pricing.Conversion())
	go stats.RunDaily(rootCtx, conf.ReportHour)

	deposits := service.NewDepositService(ledger, metrics)
	jwtConfig := &handlers.JWTConfig{
		SecretKey:       conf.JWTSecret,
		AccessTokenTTL:  conf.AccessTokenTTL,
		RefreshTokenTTL: conf.RefreshTokenTTL,
	}
	if jwtConfig.SecretKey == "" {
		logger.Log.Warn("JWT_SECRET is empty, admin tokens are signed with an empty key")
	}

	serverService := server.NewServerService(rootCtx, conf.Address)
	serverService.SetRouter(server.Routes{
		Auth:     handlers.NewAuthHandler(jwtConfig, operators),
		Orders:   handlers.NewOrdersHandler(coordinator),
		Accounts: handlers.NewAccountsHandler(ledger),
		Admin:    handlers.NewAdminHandler(deposits, stats),
		Payments: handlers.NewPaymentHandler(deposits),
		Metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		APIToken: conf.APIToken,
	})

	serverErr := make(chan error, 1)
	logger.Log.Info("Running Server on", zap.String("address", conf.Address))
	go serverService.RunServer(serverErr)

	select {
	case <-rootCtx.Done():
		logger.Log.Info("Received shutdown signal, shutting down.")
	case err = <-serverErr:
		if err != nil {
			logger.Log.Error("Server error", zap.Error(err))
		}
		stop()
	}

	if shutdownErr := serverService.Shutdown(); shutdownErr != nil {
		logger.Log.Error("Server shutdown error", zap.Error(shutdownErr))
	}

	// Polling tasks leave their orders PENDING for the next start.
	coordinator.Wait()
	logger.Log.Info("polling tasks stopped")

	return err
}
