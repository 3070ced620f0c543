package backend

import (
	"context"
	"errors"
	"fmt"

	"travelspend/internal/config"
	"travelspend/internal/dataset"
)

// SourceType names a dataset backend.
type SourceType string

const (
	XLSXSource   SourceType = config.SourceXLSX
	SheetsSource SourceType = config.SourceSheets
	SQLiteSource SourceType = config.SourceSQLite
	MemorySource SourceType = config.SourceMemory
)

func (st SourceType) String() string { return string(st) }

// IsValid returns true if the source type is known.
func (st SourceType) IsValid() bool {
	switch st {
	case XLSXSource, SheetsSource, SQLiteSource, MemorySource:
		return true
	default:
		return false
	}
}

// CleanupFunc releases resources held by a source.
type CleanupFunc func() error

// SourceResult contains the source and its optional cleanup function.
type SourceResult struct {
	Source  dataset.Source
	Cleanup CleanupFunc
}

// Close runs the cleanup function if there is one.
func (r *SourceResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates dataset sources from configuration.
type Factory interface {
	CreateSource(ctx context.Context, cfg Config) (*SourceResult, error)
}

// Config holds what the factory needs to build any source.
type Config struct {
	Type SourceType

	// xlsx
	DatasetPath  string
	DatasetSheet string

	// sqlite
	SQLiteDBPath string

	// sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// FromAppConfig converts the application config to a factory config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	st := SourceType(appConfig.DataSource)
	if !st.IsValid() {
		return Config{}, fmt.Errorf("invalid data source in config: %s", appConfig.DataSource)
	}
	return Config{
		Type:                     st,
		DatasetPath:              appConfig.DatasetPath,
		DatasetSheet:             appConfig.DatasetSheet,
		SQLiteDBPath:             appConfig.SQLiteDBPath,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}
