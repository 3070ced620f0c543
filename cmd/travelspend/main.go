package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"travelspend/internal/amqp"
	"travelspend/internal/cli"
	"travelspend/internal/dataset"
	"travelspend/internal/gate"
	apphttp "travelspend/internal/http"
	applog "travelspend/internal/log"
	"travelspend/internal/middleware/security"
	"travelspend/internal/worker"
)

func main() {
	// Load .env file for local development (ignore a missing file)
	envErr := cli.LoadEnvFile()

	cfg, cfgErr := cli.LoadAndValidateConfig()
	level := "info"
	if cfg != nil {
		level = cfg.LogLevel
	}
	logger := cli.SetupLogger(level, applog.ComponentApp)
	if envErr != nil {
		logger.Warn("Ignoring unreadable .env file", applog.FieldError, envErr)
	}
	if cfgErr != nil {
		logger.Error("Configuration validation failed", applog.FieldError, cfgErr)
		os.Exit(1)
	}

	loader, src, err := cli.OpenDataset(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize dataset source", applog.FieldError, err, "data_source", cfg.DataSource)
		os.Exit(1)
	}
	data := dataset.NewCache(loader.Load)
	logger.Info("Initialized dataset source", applog.FieldSource, src.Source.Name())

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Gate:     gate.New(nil),
		Sessions: gate.NewStore(cfg.SessionMax, cfg.SessionTTL),
		Dataset:  data,
		Logger:   logger,
		Detector: security.NewDetector(),
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	var amqpClient *amqp.Client
	if cfg.RefreshEnabled() {
		amqpLogger := logger.WithComponent(applog.ComponentAMQP).Slog()
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpLogger)
		if err != nil {
			// The dashboard still works without refresh notifications.
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			amqpClient = nil
		}
	} else {
		logger.Info("Dataset refresh notifications disabled - no AMQP_URL provided")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", applog.FieldError, err)
			}
		}
		if err := src.Close(); err != nil {
			logger.Warn("Dataset source close error", applog.FieldError, err)
		}
	})

	if amqpClient != nil {
		refresh := worker.NewRefreshWorker(data, logger.WithComponent(applog.ComponentDataset).Slog(), true)
		go func() {
			err := amqpClient.ConsumeRefreshWithRetry(ctx, refresh.HandleRefreshMessage)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Refresh consumption stopped", applog.FieldError, err)
			}
		}()
	}

	logger.Info("Starting travelspend server",
		"port", cfg.Port,
		"data_source", cfg.DataSource,
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
