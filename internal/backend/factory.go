// Package backend builds the configured dataset source.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"travelspend/internal/dataset/google"
	"travelspend/internal/dataset/memory"
	"travelspend/internal/dataset/xlsx"
	"travelspend/internal/storage"
)

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new source factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateSource implements Factory.
func (f *DefaultFactory) CreateSource(ctx context.Context, cfg Config) (*SourceResult, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid data source: %s", cfg.Type)
	}

	switch cfg.Type {
	case XLSXSource:
		f.logger.Info("Using spreadsheet dataset", "path", cfg.DatasetPath, "sheet", cfg.DatasetSheet)
		return &SourceResult{Source: xlsx.New(cfg.DatasetPath, cfg.DatasetSheet)}, nil
	case SQLiteSource:
		return f.createSQLiteSource(cfg)
	case SheetsSource:
		return f.createSheetsSource(ctx, cfg)
	case MemorySource:
		f.logger.Info("Using built-in sample dataset")
		return &SourceResult{Source: memory.NewSample()}, nil
	default:
		return nil, fmt.Errorf("unsupported data source: %s", cfg.Type)
	}
}

func (f *DefaultFactory) createSQLiteSource(cfg Config) (*SourceResult, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Using SQLite dataset", "db_path", cfg.SQLiteDBPath)
	return &SourceResult{Source: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsSource(ctx context.Context, cfg Config) (*SourceResult, error) {
	cli, err := google.New(ctx, google.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Using Google Sheets dataset", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	return &SourceResult{Source: cli}, nil
}
