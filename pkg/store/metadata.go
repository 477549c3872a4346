package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// startedLayout is the human-readable timestamp format the engine
// writes into the info file.
const startedLayout = "2006-01-02 15:04:05"

// RunMeta is the small textual metadata record the engine writes next
// to the counter store. Only the start timestamp matters here: it is
// the time origin for the dashboard's relative wall times.
type RunMeta struct {
	Started time.Time
}

// ReadMeta parses the info file of a run directory.
func ReadMeta(runDir string) (*RunMeta, error) {
	path := filepath.Join(runDir, InfoFileName)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening run info: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		rest, ok := strings.CutPrefix(line, "Started:")
		if !ok {
			continue
		}

		started, err := time.ParseInLocation(
			startedLayout, strings.TrimSpace(rest), time.UTC,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing start timestamp: %w", err)
		}

		return &RunMeta{Started: started}, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading run info: %w", err)
	}

	return nil, fmt.Errorf("run info has no start timestamp")
}
