package report

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/symexlab/statoor/pkg/stats"
	"github.com/symexlab/statoor/pkg/store"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// writeRunDir creates a run directory with a counter store fixture.
func writeRunDir(
	t *testing.T, cols []string, rows [][]float64,
) string {
	t.Helper()

	dir := t.TempDir()

	db, err := gorm.Open(
		sqlite.Open(filepath.Join(dir, store.StatsFileName)),
		&gorm.Config{Logger: logger.Discard},
	)
	require.NoError(t, err)

	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = c + " REAL"
	}

	require.NoError(t, db.Exec(
		"CREATE TABLE stats ("+strings.Join(defs, ", ")+")",
	).Error)

	placeholders := strings.TrimSuffix(
		strings.Repeat("?, ", len(cols)), ", ",
	)

	for _, row := range rows {
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v
		}

		require.NoError(t, db.Exec(fmt.Sprintf(
			"INSERT INTO stats (%s) VALUES (%s)",
			strings.Join(cols, ", "), placeholders,
		), args...).Error)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	return dir
}

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

func TestAggregateRun(t *testing.T) {
	dir := writeRunDir(t,
		[]string{"WallTime", "MallocUsage", "NumStates"},
		[][]float64{
			{0, 1048576, 2},
			{1000000, 4194304, 8},
			{2000000, 2097152, 4},
		},
	)

	agg := AggregateRun(context.Background(), testLogger(), dir)

	assert.Equal(t, 2000000.0, agg.LastRecord["WallTime"])

	maxMem, ok := agg.MaxMem.Float64()
	require.True(t, ok)
	assert.Equal(t, 4.0, maxMem)

	avgMem, ok := agg.AvgMem.Float64()
	require.True(t, ok)
	assert.InDelta(t, 7.0/3, avgMem, 1e-9)

	maxStates, ok := agg.MaxStates.Float64()
	require.True(t, ok)
	assert.Equal(t, 8.0, maxStates)

	avgStates, ok := agg.AvgStates.Float64()
	require.True(t, ok)
	assert.InDelta(t, 14.0/3, avgStates, 1e-9)
}

func TestAggregateRun_MissingStoreDegrades(t *testing.T) {
	agg := AggregateRun(context.Background(), testLogger(), t.TempDir())

	assert.Empty(t, agg.LastRecord)
	assert.True(t, agg.MaxMem.IsAbsent())
	assert.True(t, agg.AvgMem.IsAbsent())
	assert.True(t, agg.MaxStates.IsAbsent())
	assert.True(t, agg.AvgStates.IsAbsent())
}

func TestAggregateRun_MissingColumnsDegrade(t *testing.T) {
	dir := writeRunDir(t,
		[]string{"WallTime"},
		[][]float64{{1000000}},
	)

	agg := AggregateRun(context.Background(), testLogger(), dir)

	// The last record is still served; the reductions are not.
	assert.Equal(t, 1000000.0, agg.LastRecord["WallTime"])
	assert.True(t, agg.MaxMem.IsAbsent())
	assert.True(t, agg.MaxStates.IsAbsent())
}

func TestBuildRow_DerivesOnceFromRawCounters(t *testing.T) {
	agg := &Aggregate{
		LastRecord: stats.Record{
			"WallTime":    2_500_000,
			"MallocUsage": 2097152,
		},
		MaxMem:    stats.Num(4),
		AvgMem:    stats.Num(2),
		MaxStates: stats.Absent(),
		AvgStates: stats.Absent(),
	}

	row := BuildRow(agg, "/runs/run1")

	wall, ok := row["WallTime"].Float64()
	require.True(t, ok)
	assert.Equal(t, 2.5, wall)

	mem, ok := row["MallocUsage"].Float64()
	require.True(t, ok)
	assert.Equal(t, 2.0, mem)

	assert.Equal(t, "/runs/run1", row[stats.PathColumn].String())

	// Absent reductions stay out of the row entirely.
	assert.NotContains(t, row, "MaxStates")
	assert.Contains(t, row, "MaxMem")
}

func TestBuild_MultiRun(t *testing.T) {
	dir1 := writeRunDir(t,
		[]string{"WallTime", "Instructions"},
		[][]float64{{1000000, 100}},
	)
	dir2 := writeRunDir(t,
		[]string{"WallTime", "Instructions"},
		[][]float64{{2000000, 300}},
	)

	tbl := Build(
		context.Background(), testLogger(),
		[]string{dir1, dir2},
		stats.ProfileAll, stats.DefaultLegend,
	)

	// Two runs plus totals.
	require.Len(t, tbl.Rows, 3)

	for _, row := range tbl.Rows {
		assert.Len(t, row, len(tbl.Columns))
	}
}

func TestBuild_UnreadableRunStillListed(t *testing.T) {
	good := writeRunDir(t,
		[]string{"WallTime", "Instructions"},
		[][]float64{{1000000, 100}},
	)
	bad := t.TempDir()

	tbl := Build(
		context.Background(), testLogger(),
		[]string{good, bad},
		"default", stats.DefaultLegend,
	)

	// The unreadable run keeps its row; a failure in one run never
	// aborts the others.
	require.Len(t, tbl.Rows, 3)
}
