package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"travelspend/internal/amqp"
	"travelspend/internal/dataset/xlsx"
	applog "travelspend/internal/log"
	"travelspend/internal/storage"
)

var (
	flagFrom   string
	flagSheet  string
	flagDB     string
	flagNotify bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the SQLite dataset with the rows of a spreadsheet",
	Args:  cobra.NoArgs,
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&flagFrom, "from", "", "Path of the .xlsx workbook to import")
	importCmd.Flags().StringVar(&flagSheet, "sheet", "", "Sheet to read (default: first sheet)")
	importCmd.Flags().StringVar(&flagDB, "db", "", "SQLite database path (default: SQLITE_DB_PATH)")
	importCmd.Flags().BoolVar(&flagNotify, "notify", true, "Publish a refresh message when AMQP_URL is set")
	_ = importCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	src := xlsx.New(flagFrom, flagSheet)
	tbl, err := src.ReadTable(ctx)
	if err != nil {
		return fmt.Errorf("read %s: %w", flagFrom, err)
	}

	dbPath := flagDB
	if dbPath == "" {
		dbPath = cfg.SQLiteDBPath
	}
	repo, err := storage.NewSQLiteRepository(dbPath, logger.WithComponent(applog.ComponentStorage).Slog())
	if err != nil {
		return err
	}
	defer repo.Close()

	imp, err := repo.ReplaceAll(ctx, tbl, src.Name())
	if err != nil {
		return err
	}
	logger.Info("Import complete", applog.NewFields().
		WithOperation(applog.OpImport).
		WithDataset(imp.Source, imp.Rows, false).
		ToSlice()...)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows from %s into %s\n", imp.Rows, flagFrom, dbPath)

	if !flagNotify || !cfg.RefreshEnabled() {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(applog.ComponentAMQP).Slog())
	if err != nil {
		// The import itself succeeded.
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: refresh not published: %v\n", err)
		return nil
	}
	defer client.Close()
	if err := client.PublishRefresh(ctx, repo.Name(), requester()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: refresh not published: %v\n", err)
	}
	return nil
}

func requester() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "spend-report"
	}
	return "spend-report@" + host
}
