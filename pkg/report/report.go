package report

import (
	"context"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	"github.com/symexlab/statoor/pkg/stats"
	"github.com/symexlab/statoor/pkg/store"
)

// Aggregate is the run-level view of one counter store: the most
// recent snapshot plus max/average reductions over the whole record
// sequence. Reductions are absent (not zero) when the store cannot
// answer for them.
type Aggregate struct {
	LastRecord stats.Record
	MaxMem     stats.Value
	AvgMem     stats.Value
	MaxStates  stats.Value
	AvgStates  stats.Value
}

// emptyAggregate is what an unreadable run degrades to.
func emptyAggregate() *Aggregate {
	return &Aggregate{
		LastRecord: stats.Record{},
		MaxMem:     stats.Absent(),
		AvgMem:     stats.Absent(),
		MaxStates:  stats.Absent(),
		AvgStates:  stats.Absent(),
	}
}

// AggregateRun reads one run's counter store and produces its
// aggregate. Every store failure is contained here: a missing, empty
// or schema-incompatible store yields a best-effort (possibly empty)
// aggregate so that an in-progress run still reports.
func AggregateRun(
	ctx context.Context,
	log logrus.FieldLogger,
	runDir string,
) *Aggregate {
	log = log.WithField("run", runDir)

	st, err := store.Open(filepath.Join(runDir, store.StatsFileName))
	if err != nil {
		log.WithError(err).Warn("Counter store unavailable")

		return emptyAggregate()
	}
	defer st.Close()

	agg := emptyAggregate()

	last, err := st.LastRecord(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read last record")
	} else {
		agg.LastRecord = last
	}

	if maxV, avgV, err := st.Reduce(ctx, "MallocUsage"); err != nil {
		log.WithError(err).Debug("Memory reduction unavailable")
	} else {
		agg.MaxMem = stats.Num(maxV / float64(units.MiB))
		agg.AvgMem = stats.Num(avgV / float64(units.MiB))
	}

	if maxV, avgV, err := st.Reduce(ctx, "NumStates"); err != nil {
		log.WithError(err).Debug("State-count reduction unavailable")
	} else {
		agg.MaxStates = stats.Num(maxV)
		agg.AvgStates = stats.Num(avgV)
	}

	return agg
}

// BuildRow merges an aggregate into a single report row: the derived
// last record, the run-level reductions, and the run identifier.
func BuildRow(agg *Aggregate, runPath string) stats.Row {
	rec := stats.Derive(agg.LastRecord)

	row := make(stats.Row, len(rec)+5)
	for name, v := range rec {
		row[name] = stats.Num(v)
	}

	for name, v := range map[string]stats.Value{
		"MaxMem":    agg.MaxMem,
		"AvgMem":    agg.AvgMem,
		"MaxStates": agg.MaxStates,
		"AvgStates": agg.AvgStates,
	} {
		if !v.IsAbsent() {
			row[name] = v
		}
	}

	row[stats.PathColumn] = stats.Str(runPath)

	return row
}

// Build produces the multi-run report table for the given run
// directories. Failures are contained per run; the table always has
// one row per requested run.
func Build(
	ctx context.Context,
	log logrus.FieldLogger,
	runDirs []string,
	profile string,
	legend *stats.Legend,
) *stats.Table {
	rows := make([]stats.Row, 0, len(runDirs))

	for _, dir := range runDirs {
		agg := AggregateRun(ctx, log, dir)
		row := stats.Select(BuildRow(agg, dir), profile)
		rows = append(rows, row)
	}

	return stats.BuildTable(rows, legend)
}
