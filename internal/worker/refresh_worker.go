// Package worker reacts to dataset refresh notifications.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"travelspend/internal/amqp"
	"travelspend/internal/core"
	"travelspend/internal/dataset"
	applog "travelspend/internal/log"
)

// DatasetCache is the memo a refresh resets. *dataset.Cache implements it.
type DatasetCache interface {
	Get(ctx context.Context) (dataset.Result, error)
	Invalidate()
}

// RefreshWorker invalidates the shared dataset when a refresh is requested.
type RefreshWorker struct {
	cache  DatasetCache
	logger *slog.Logger
	warm   bool
}

// NewRefreshWorker creates a worker. With warm set, the dataset is reloaded
// right after invalidation so the next viewer does not pay for the load.
func NewRefreshWorker(cache DatasetCache, logger *slog.Logger, warm bool) *RefreshWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshWorker{cache: cache, logger: logger, warm: warm}
}

// HandleRefreshMessage implements amqp.RefreshHandler. A failed warm-up is
// returned so the message is requeued; the memo stays empty meanwhile and the
// next viewer retries the load. A schema error is wrapped in
// amqp.ErrPermanent since the same data fails again on every redelivery.
func (w *RefreshWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.DatasetRefreshMessage) error {
	w.logger.InfoContext(ctx, "Processing refresh message",
		"source", msg.Source,
		"requested_by", msg.RequestedBy,
		"requested_at", msg.Timestamp)

	w.cache.Invalidate()
	if !w.warm {
		return nil
	}

	res, err := w.cache.Get(ctx)
	if err != nil {
		var schemaErr *core.SchemaError
		if errors.As(err, &schemaErr) {
			return fmt.Errorf("reload dataset: %w: %w", amqp.ErrPermanent, err)
		}
		return fmt.Errorf("reload dataset: %w", err)
	}
	w.logger.InfoContext(ctx, "Dataset reloaded", applog.NewFields().
		WithOperation(applog.OpRefresh).
		WithDataset(res.Source, res.Table.Len(), res.Fallback).
		ToSlice()...)
	return nil
}
