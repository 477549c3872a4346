package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/symexlab/statoor/pkg/fsutil"
	"github.com/symexlab/statoor/pkg/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs [path...]",
	Short: "List discovered run directories",
	Long: `Runs lists every run directory found under the given paths with
its counter store size, record count, and start time. Unreadable
fields are shown as "-".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	runs, err := fsutil.DiscoverRuns(args)
	if err != nil {
		return err
	}

	ctx := context.Background()

	fmt.Printf("%-50s %10s %10s %s\n", "PATH", "SIZE", "RECORDS", "STARTED")

	for _, dir := range runs {
		size := "-"

		if info, err := os.Stat(filepath.Join(dir, store.StatsFileName)); err == nil {
			size = units.HumanSize(float64(info.Size()))
		}

		records := "-"

		if st, err := store.Open(filepath.Join(dir, store.StatsFileName)); err == nil {
			if n, err := st.Count(ctx); err == nil {
				records = fmt.Sprintf("%d", n)
			}

			if err := st.Close(); err != nil {
				log.WithError(err).Warn("Failed to close counter store")
			}
		}

		started := "-"

		if meta, err := store.ReadMeta(dir); err == nil {
			started = meta.Started.Format("2006-01-02 15:04:05")
		}

		fmt.Printf("%-50s %10s %10s %s\n", dir, size, records, started)
	}

	return nil
}
