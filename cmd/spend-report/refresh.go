package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"travelspend/internal/amqp"
	applog "travelspend/internal/log"
)

var flagSource string

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask running dashboards to reload their dataset",
	Args:  cobra.NoArgs,
	RunE:  runRefresh,
}

func init() {
	refreshCmd.Flags().StringVar(&flagSource, "source", "", "Source named in the message (default: DATA_SOURCE)")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	if !cfg.RefreshEnabled() {
		return errors.New("AMQP_URL is not set")
	}
	source := flagSource
	if source == "" {
		source = cfg.DataSource
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(applog.ComponentAMQP).Slog())
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.PublishRefresh(cmd.Context(), source, requester()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Refresh requested for %s on %s\n", source, cfg.AMQPExchange)
	return nil
}
