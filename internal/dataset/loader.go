package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"travelspend/internal/core"
)

// Result is a loaded dataset and where it came from.
type Result struct {
	Table    core.Table
	Source   string
	Fallback bool
	LoadedAt time.Time
}

// Loader reads a Source and falls back to a fixed table when the source
// cannot be read.
type Loader struct {
	source   Source
	fallback func() core.Table
	logger   *slog.Logger
	now      func() time.Time
}

// NewLoader returns a loader over src using fallback for unreadable sources.
func NewLoader(src Source, fallback func() core.Table, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: src, fallback: fallback, logger: logger, now: time.Now}
}

// Load reads the dataset once. Schema errors are returned unchanged so that
// a malformed but readable dataset fails loudly instead of being masked by
// the sample data.
func (l *Loader) Load(ctx context.Context) (Result, error) {
	start := l.now()
	tbl, err := l.source.ReadTable(ctx)
	if err == nil {
		l.logger.InfoContext(ctx, "Dataset loaded",
			"source", l.source.Name(),
			"rows", tbl.Len(),
			"duration_ms", l.now().Sub(start).Milliseconds())
		return Result{Table: tbl, Source: l.source.Name(), LoadedAt: l.now()}, nil
	}

	if !errors.Is(err, ErrSourceUnavailable) {
		l.logger.ErrorContext(ctx, "Dataset load failed", "source", l.source.Name(), "error", err)
		return Result{}, fmt.Errorf("load dataset from %s: %w", l.source.Name(), err)
	}

	if errors.Is(err, ErrNotFound) {
		l.logger.InfoContext(ctx, "Dataset not found, using built-in sample", "source", l.source.Name(), "error", err)
	} else {
		l.logger.WarnContext(ctx, "Dataset unreadable, using built-in sample", "source", l.source.Name(), "error", err)
	}
	fb := l.fallback()
	return Result{Table: fb, Source: l.source.Name(), Fallback: true, LoadedAt: l.now()}, nil
}
