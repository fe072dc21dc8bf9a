package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"orderdash/internal/backend"
	"orderdash/internal/cache"
	"orderdash/internal/cli"
	"orderdash/internal/core"
	apphttp "orderdash/internal/http"
	applog "orderdash/internal/log"
	"orderdash/internal/services"
	"orderdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, os.Stdout)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	result, err := backend.NewFactory(logger).CreateSource(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to create data source", "error", err, "backend", bcfg.Type)
		os.Exit(1)
	}

	metricsCache := cache.NewLRUCache[core.MetricBundle](cfg.MetricsCacheSize, cfg.MetricsCacheTTL)
	janitor := cache.NewJanitor()
	janitor.Register(metricsCache)
	janitor.Start(cfg.MetricsCacheTTL)

	dataset := services.NewDatasetService(result.Source, metricsCache)

	// A dataset that cannot be loaded at startup is fatal; later reload
	// failures keep the previous dataset.
	loadCtx, cancelLoad := context.WithTimeout(ctx, 2*time.Minute)
	err = dataset.Reload(loadCtx)
	cancelLoad()
	if err != nil {
		logger.Error("Failed to load orders", "error", err, "source", result.Source.Describe())
		os.Exit(1)
	}

	amqpClient := cli.InitAMQP(logger, cfg)

	var poller *worker.Poller
	if cfg.ReloadInterval > 0 {
		poller = worker.NewPoller(dataset, cfg.ReloadInterval)
	}

	srv := apphttp.NewServer(":"+cfg.Port, dataset, apphttp.Options{
		Title:    cfg.ReportTitle,
		Currency: cfg.ReportCurrency,
	}, applog.New(applog.Config{Handler: logger.Handler(), Component: applog.ComponentApp}))

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if poller != nil {
			if err := poller.Stop(shutdownCtx); err != nil {
				logger.Warn("Poller stop error", "error", err)
			}
		}
		janitor.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Data source cleanup error", "error", err)
			}
		}
	})

	if amqpClient != nil {
		reloads := worker.NewReloadWorker(dataset)
		go func() {
			if err := amqpClient.ConsumeDatasetImported(runCtx, reloads.HandleDatasetImported); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Dataset event consumption stopped", "error", err)
			}
		}()
	}
	if poller != nil {
		if err := poller.Start(runCtx); err != nil {
			logger.Error("Failed to start dataset poller", "error", err)
		}
	}

	logger.Info("Starting orderdash server",
		"port", cfg.Port,
		"backend", bcfg.Type,
		"source", result.Source.Describe(),
		"reload_interval", cfg.ReloadInterval,
		"amqp", amqpClient != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Server stopped gracefully")
}
