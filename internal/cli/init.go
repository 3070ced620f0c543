// Package cli holds the start-up helpers shared by cmd/travelspend and
// cmd/spend-report, and the terminal rendering used by spend-report.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"travelspend/internal/backend"
	"travelspend/internal/config"
	"travelspend/internal/dataset"
	"travelspend/internal/dataset/memory"
	applog "travelspend/internal/log"
)

// SetupLogger builds the process logger at the given level and installs it as
// the slog default.
func SetupLogger(level, component string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: component,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env files for local development. Missing files are not
// an error; a file that exists but cannot be parsed is.
func LoadEnvFile(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenDataset builds the configured source and wraps it in a Loader with the
// built-in sample as fallback. The caller must Close the returned source.
func OpenDataset(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*dataset.Loader, *backend.SourceResult, error) {
	fcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	src, err := backend.NewFactory(logger.WithComponent(applog.ComponentDataset).Slog()).CreateSource(ctx, fcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s source: %w", fcfg.Type, err)
	}
	loader := dataset.NewLoader(src.Source, memory.Fallback, logger.WithComponent(applog.ComponentDataset).Slog())
	return loader, src, nil
}

// GracefulShutdown cancels the returned context on SIGINT or SIGTERM and then
// runs cleanup with a deadline of timeout. The done channel closes once
// cleanup has returned.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String(), applog.FieldOperation, applog.OpShutdown)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
