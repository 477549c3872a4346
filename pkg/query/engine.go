package query

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/symexlab/statoor/pkg/stats"
	"github.com/symexlab/statoor/pkg/store"
)

// minRangeUs is the floor a degenerate request window is widened to.
const minRangeUs = 100

// defaultMaxDataPoints caps the bucket count when a request does not
// set one.
const defaultMaxDataPoints = 100

// Request is one dashboard range query.
type Request struct {
	IntervalMs    int64    `json:"intervalMs"`
	MaxDataPoints int      `json:"maxDataPoints"`
	Range         Range    `json:"range"`
	Targets       []Target `json:"targets"`
}

// Range is the absolute request window, RFC 3339 with fractional
// seconds, UTC.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Target names one requested metric.
type Target struct {
	Target string `json:"target"`
}

// Series is the response shape for one target: ordered
// [value, timestampMs] pairs.
type Series struct {
	Target     string       `json:"target"`
	Datapoints [][2]float64 `json:"datapoints"`
}

// Engine serves range+interval queries over one run's counter store.
// It is stateless per request: every query opens its own store
// connection and releases it unconditionally, so concurrent requests
// need no coordination.
type Engine struct {
	log    logrus.FieldLogger
	runDir string
	legend *stats.Legend
}

// New creates a query engine for the given run directory.
func New(log logrus.FieldLogger, runDir string, legend *stats.Legend) *Engine {
	return &Engine{
		log:    log.WithField("component", "query"),
		runDir: runDir,
		legend: legend,
	}
}

// Metrics lists the queryable counter names for the search endpoint.
// When the store cannot be read it falls back to the legend catalog
// so the dashboard still gets a usable metric list.
func (e *Engine) Metrics(ctx context.Context) []string {
	st, err := store.Open(filepath.Join(e.runDir, store.StatsFileName))
	if err == nil {
		defer st.Close()

		cols, colsErr := st.Columns(ctx)
		if colsErr == nil {
			return cols
		}

		err = colsErr
	}

	e.log.WithError(err).Warn("Falling back to legend metric names")

	var names []string

	for _, entry := range e.legend.Entries() {
		if entry.Internal != stats.PathColumn {
			names = append(names, entry.Internal)
		}
	}

	return names
}

// Query executes one bucketed range query. The run's start instant is
// the time origin; stored wall times are microseconds relative to it.
func (e *Engine) Query(ctx context.Context, req *Request) ([]Series, error) {
	meta, err := store.ReadMeta(e.runDir)
	if err != nil {
		return nil, fmt.Errorf("establishing time origin: %w", err)
	}

	fromUs := req.Range.From.Sub(meta.Started).Microseconds()
	if fromUs < 0 {
		fromUs = 0
	}

	toUs := req.Range.To.Sub(meta.Started).Microseconds()
	if toUs <= fromUs {
		toUs = fromUs + minRangeUs
	}

	intervalMs := req.IntervalMs
	if intervalMs < 1 {
		intervalMs = 1
	}

	intervalUs := intervalMs * 1000

	maxPoints := req.MaxDataPoints
	if maxPoints < 1 {
		maxPoints = defaultMaxDataPoints
	}

	// Malformed target names are dropped from the SQL projection but
	// keep their (empty) slot in the response.
	valid := make([]string, 0, len(req.Targets))
	colIndex := make(map[string]int, len(req.Targets))

	for _, t := range req.Targets {
		if !store.IsIdentifier(t.Target) {
			continue
		}

		if _, ok := colIndex[t.Target]; ok {
			continue
		}

		colIndex[t.Target] = len(valid)
		valid = append(valid, t.Target)
	}

	buckets, err := e.fetchBuckets(ctx, valid, fromUs, toUs, intervalUs, maxPoints)
	if err != nil {
		e.log.WithError(err).Warn("Bucket query degraded to empty series")

		buckets = nil
	}

	out := make([]Series, 0, len(req.Targets))

	for _, t := range req.Targets {
		series := Series{
			Target:     t.Target,
			Datapoints: make([][2]float64, 0, len(buckets)),
		}

		idx, ok := colIndex[t.Target]
		if !ok {
			out = append(out, series)

			continue
		}

		rescale := isCumulativeTime(t.Target)

		for _, b := range buckets {
			mean, ok := b.Means[idx+1].Float64()
			if !ok {
				continue
			}

			if rescale {
				// Cumulative time counters are re-expressed as a
				// percentage of the elapsed wall time at the bucket.
				wall, ok := b.Means[0].Float64()
				if !ok || wall <= 0 {
					continue
				}

				mean = 100 * mean / wall
			}

			tsMs := meta.Started.UnixMilli() + b.Index*intervalMs
			series.Datapoints = append(series.Datapoints, [2]float64{
				mean, float64(tsMs),
			})
		}

		out = append(out, series)
	}

	return out, nil
}

// fetchBuckets opens the store for the duration of one query. The
// first mean of every bucket is the wall time, used as the rescale
// denominator.
func (e *Engine) fetchBuckets(
	ctx context.Context,
	columns []string,
	fromUs, toUs, intervalUs int64,
	limit int,
) ([]store.Bucket, error) {
	st, err := store.Open(filepath.Join(e.runDir, store.StatsFileName))
	if err != nil {
		return nil, err
	}
	defer st.Close()

	cols := append([]string{"WallTime"}, columns...)

	return st.BucketedMeans(ctx, cols, fromUs, toUs, intervalUs, limit)
}

// isCumulativeTime reports whether a metric is a cumulative time
// counter (as opposed to the wall/user clock rates) and therefore
// rescaled to a percentage of elapsed wall time.
func isCumulativeTime(name string) bool {
	return strings.Contains(name, "Time") &&
		!strings.Contains(name, "Wall") &&
		!strings.Contains(name, "User")
}
