package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/symexlab/statoor/pkg/api"
	"github.com/symexlab/statoor/pkg/config"
	"github.com/symexlab/statoor/pkg/fsutil"
	"github.com/symexlab/statoor/pkg/stats"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve <run-dir>",
	Short: "Serve the dashboard query API for a run",
	Long: `Serve exposes a run's counter store through the dashboard query
protocol: /api/v1/search lists the queryable metrics and
/api/v1/query answers bucketed range queries.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "",
		"listen address (overrides config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	runDir := args[0]
	if !fsutil.IsRunDir(runDir) {
		return fmt.Errorf("%s is not a run directory", runDir)
	}

	// Set up context with signal handling.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	srv := api.NewServer(log, &cfg.Server, runDir, stats.DefaultLegend)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting dashboard server: %w", err)
	}

	// Wait for shutdown signal.
	sig := <-sigCh
	log.WithField("signal", sig).Info("Shutting down dashboard server")
	cancel()

	if err := srv.Stop(); err != nil {
		return fmt.Errorf("stopping dashboard server: %w", err)
	}

	return nil
}
