package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/symexlab/statoor/pkg/config"
	"github.com/symexlab/statoor/pkg/fsutil"
	"github.com/symexlab/statoor/pkg/render"
	"github.com/symexlab/statoor/pkg/report"
	"github.com/symexlab/statoor/pkg/stats"
)

var (
	reportProfile string
	reportFormat  string
)

var reportCmd = &cobra.Command{
	Use:   "report [path...]",
	Short: "Summarize one or more run directories",
	Long: `Report reads the counter store of each run directory and prints a
column-aligned comparison table. Paths may be run directories or
parents of run directories. A totals row is appended when more than
one run is reported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportProfile, "profile", "",
		"column profile ("+strings.Join(stats.Profiles(), ", ")+")")
	reportCmd.Flags().StringVar(&reportFormat, "format", "",
		"output format ("+strings.Join(render.Formats(), ", ")+")")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if reportProfile != "" {
		cfg.Report.Profile = reportProfile
	}

	if reportFormat != "" {
		cfg.Report.Format = reportFormat
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	runs, err := fsutil.DiscoverRuns(args)
	if err != nil {
		return err
	}

	table := report.Build(
		context.Background(), log, runs,
		cfg.Report.Profile, stats.DefaultLegend,
	)

	out, err := render.Render(table, cfg.Report.Format)
	if err != nil {
		return err
	}

	fmt.Print(out)

	return nil
}
