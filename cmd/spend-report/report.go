package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"travelspend/internal/cli"
	"travelspend/internal/core"
	"travelspend/internal/report"
)

var (
	flagStatus  []string
	flagOrgType []string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print metrics, spend by status, top unmanaged spend and the filtered table",
	Long: "Load the configured dataset the way the dashboard does and print the report.\n" +
		"Without --status or --org-type every observed value of that field is selected.",
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringArrayVar(&flagStatus, "status", nil, "Status value to include (repeatable)")
	reportCmd.Flags().StringArrayVar(&flagOrgType, "org-type", nil, "Org Type value to include (repeatable)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	loader, src, err := cli.OpenDataset(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	res, err := loader.Load(ctx)
	if err != nil {
		return err
	}

	sel := selectionFromFlags(cmd, res.Table)
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderReport(report.Build(res.Table, sel), res.Source, res.Fallback))
	return nil
}

// selectionFromFlags keeps every observed value of a field whose flag was not
// given.
func selectionFromFlags(cmd *cobra.Command, t core.Table) core.Selection {
	sel := core.DefaultSelection(t)
	if cmd.Flags().Changed("status") {
		sel.Status = flagStatus
	}
	if cmd.Flags().Changed("org-type") {
		sel.OrgType = flagOrgType
	}
	return sel
}
