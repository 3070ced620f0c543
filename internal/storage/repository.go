// Package storage keeps an imported copy of the travel spend dataset in
// SQLite so the dashboard can run without the source workbook.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"travelspend/internal/core"
	"travelspend/internal/dataset"
)

// Import describes one ReplaceAll run.
type Import struct {
	Source     string
	Rows       int
	ImportedAt time.Time
}

type SQLiteRepository struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ dataset.Source = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *slog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("SQLite store ready", "db_path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db, path: dbPath, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Name() string { return "sqlite:" + r.path }

// ReadTable returns the imported rows in import order. Stored values
// go through the same parsing as a workbook, so a hand-edited database with
// bad spend values surfaces as a schema error.
func (r *SQLiteRepository) ReadTable(ctx context.Context) (core.Table, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT organisation, month, spend, status, org_type FROM travel_spend ORDER BY position`)
	if err != nil {
		return core.Table{}, dataset.Unavailable(r.Name(), err)
	}
	defer rows.Close()

	var cells [][]string
	for rows.Next() {
		var org, month, spend, status, orgType string
		if err := rows.Scan(&org, &month, &spend, &status, &orgType); err != nil {
			return core.Table{}, dataset.Unavailable(r.Name(), err)
		}
		cells = append(cells, []string{org, month, spend, status, orgType})
	}
	if err := rows.Err(); err != nil {
		return core.Table{}, dataset.Unavailable(r.Name(), err)
	}
	if len(cells) == 0 {
		return core.Table{}, dataset.NotFound(r.Name(), errors.New("no dataset imported"))
	}
	return core.ParseTable(core.Columns, cells)
}

// ReplaceAll swaps the stored dataset for tbl in a single transaction and
// records the import.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, tbl core.Table, source string) (Import, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Import{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM travel_spend`); err != nil {
		return Import{}, fmt.Errorf("clear travel_spend: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO travel_spend (position, organisation, month, spend, status, org_type) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Import{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range tbl.Rows() {
		if _, err := stmt.ExecContext(ctx, i+1, rec.Organisation, rec.Month, rec.Spend.String(), rec.Status, rec.OrgType); err != nil {
			return Import{}, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	imp := Import{Source: source, Rows: tbl.Len(), ImportedAt: time.Now().UTC()}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dataset_imports (source, row_count, imported_at) VALUES (?, ?, ?)`,
		imp.Source, imp.Rows, imp.ImportedAt.Format(time.RFC3339Nano)); err != nil {
		return Import{}, fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Import{}, fmt.Errorf("commit import: %w", err)
	}

	r.logger.InfoContext(ctx, "Dataset imported", "source", source, "rows", imp.Rows)
	return imp, nil
}

// LastImport returns the most recent import, if any.
func (r *SQLiteRepository) LastImport(ctx context.Context) (Import, bool, error) {
	var (
		imp Import
		at  string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT source, row_count, imported_at FROM dataset_imports ORDER BY id DESC LIMIT 1`).
		Scan(&imp.Source, &imp.Rows, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return Import{}, false, nil
	}
	if err != nil {
		return Import{}, false, fmt.Errorf("read last import: %w", err)
	}
	imp.ImportedAt, err = time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return Import{}, false, fmt.Errorf("parse import time %q: %w", at, err)
	}
	return imp, true, nil
}
