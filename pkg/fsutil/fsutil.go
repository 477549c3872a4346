// Package fsutil locates run directories on the filesystem.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/symexlab/statoor/pkg/store"
)

// IsRunDir reports whether dir holds a counter store.
func IsRunDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, store.StatsFileName))

	return err == nil && info.Mode().IsRegular()
}

// DiscoverRuns expands the given paths into run directories. A path
// that is itself a run directory is taken as-is; otherwise its
// immediate subdirectories holding a counter store are collected in
// sorted order. Finding no run directory at all is an error — the
// only non-degradable condition in report generation.
func DiscoverRuns(paths []string) ([]string, error) {
	var runs []string

	for _, p := range paths {
		if IsRunDir(p) {
			runs = append(runs, p)

			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", p, err)
		}

		var found []string

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			sub := filepath.Join(p, entry.Name())
			if IsRunDir(sub) {
				found = append(found, sub)
			}
		}

		sort.Strings(found)
		runs = append(runs, found...)
	}

	if len(runs) == 0 {
		return nil, fmt.Errorf("no run directories found")
	}

	return runs, nil
}
