// Package dataset loads the travel spend table from the configured source,
// substitutes the built-in sample when the source cannot be read, and
// memoizes the result for the process.
package dataset

import (
	"context"
	"errors"
	"fmt"

	"travelspend/internal/core"
)

// Source reads the full dataset from one storage backend.
type Source interface {
	// Name identifies the source in logs, e.g. "xlsx:travel_data.xlsx".
	Name() string
	// ReadTable reads and parses the whole dataset. Read failures wrap
	// ErrSourceUnavailable; readable data with the wrong shape is returned
	// as *core.SchemaError.
	ReadTable(ctx context.Context) (core.Table, error)
}

var (
	// ErrSourceUnavailable marks failures to read the source at all: a
	// missing or corrupt file, a network or database error.
	ErrSourceUnavailable = errors.New("dataset source unavailable")
	// ErrNotFound is the unavailable case where the dataset simply does not
	// exist yet.
	ErrNotFound = fmt.Errorf("%w: not found", ErrSourceUnavailable)
)

// Unavailable wraps err as a read failure of the named source.
func Unavailable(source string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, source, err)
}

// NotFound wraps err as a missing dataset in the named source.
func NotFound(source string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrNotFound, source, err)
}
