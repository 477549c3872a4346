package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// writeStatsFile creates a counter store fixture with the given
// columns and rows, returning its path.
func writeStatsFile(
	t *testing.T, dir string, cols []string, rows [][]float64,
) string {
	t.Helper()

	path := filepath.Join(dir, StatsFileName)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Discard,
	})
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

	return path
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), StatsFileName))
	assert.Error(t, err)
}

func TestLastRecord(t *testing.T) {
	path := writeStatsFile(t, t.TempDir(),
		[]string{"WallTime", "Instructions"},
		[][]float64{
			{0, 10},
			{500000, 20},
			{1000000, 30},
		},
	)

	st, err := Open(path)
	require.NoError(t, err)

	defer st.Close()

	rec, err := st.LastRecord(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1000000.0, rec["WallTime"])
	assert.Equal(t, 30.0, rec["Instructions"])
}

func TestLastRecord_EmptyStore(t *testing.T) {
	path := writeStatsFile(t, t.TempDir(),
		[]string{"WallTime"}, nil,
	)

	st, err := Open(path)
	require.NoError(t, err)

	defer st.Close()

	rec, err := st.LastRecord(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rec)
}

func TestReduce(t *testing.T) {
	path := writeStatsFile(t, t.TempDir(),
		[]string{"WallTime", "NumStates"},
		[][]float64{
			{0, 2},
			{1, 4},
			{2, 6},
		},
	)

	st, err := Open(path)
	require.NoError(t, err)

	defer st.Close()

	maxV, avgV, err := st.Reduce(context.Background(), "NumStates")
	require.NoError(t, err)
	assert.Equal(t, 6.0, maxV)
	assert.Equal(t, 4.0, avgV)
}

func TestReduce_MissingColumn(t *testing.T) {
	path := writeStatsFile(t, t.TempDir(),
		[]string{"WallTime"},
		[][]float64{{0}},
	)

	st, err := Open(path)
	require.NoError(t, err)

	defer st.Close()

	_, _, err = st.Reduce(context.Background(), "MallocUsage")
	assert.Error(t, err)
}

func TestReduce_RejectsUnsafeIdentifier(t *testing.T) {
	path := writeStatsFile(t, t.TempDir(),
		[]string{"WallTime"},
		[][]float64{{0}},
	)

	st, err := Open(path)
	require.NoError(t, err)

	defer st.Close()

	_, _, err = st.Reduce(context.Background(), "WallTime; DROP TABLE stats")
	assert.Error(t, err)
}

func TestCountAndColumns(t *testing.T) {
	path := writeStatsFile(t, t.TempDir(),
		[]string{"WallTime", "NumStates"},
		[][]float64{{0, 1}, {1, 2}},
	)

	st, err := Open(path)
	require.NoError(t, err)

	defer st.Close()

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	cols, err := st.Columns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"WallTime", "NumStates"}, cols)
}

func TestBucketedMeans(t *testing.T) {
	path := writeStatsFile(t, t.TempDir(),
		[]string{"WallTime", "NumStates"},
		[][]float64{
			{0, 10},
			{500000, 20},
			{1000000, 30},
		},
	)

	st, err := Open(path)
	require.NoError(t, err)

	defer st.Close()

	// 1 s buckets: all three samples land in buckets 0 and 1.
	buckets, err := st.BucketedMeans(
		context.Background(),
		[]string{"NumStates"},
		0, 2000000, 1000000, 100,
	)
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	assert.Equal(t, int64(0), buckets[0].Index)

	mean, ok := buckets[0].Means[0].Float64()
	require.True(t, ok)
	assert.Equal(t, 15.0, mean)

	assert.Equal(t, int64(1), buckets[1].Index)

	mean, ok = buckets[1].Means[0].Float64()
	require.True(t, ok)
	assert.Equal(t, 30.0, mean)
}

func TestBucketedMeans_LimitCapsBuckets(t *testing.T) {
	path := writeStatsFile(t, t.TempDir(),
		[]string{"WallTime", "NumStates"},
		[][]float64{
			{0, 10},
			{500000, 20},
			{1000000, 30},
		},
	)

	st, err := Open(path)
	require.NoError(t, err)

	defer st.Close()

	// 1 ms buckets put every sample in its own bucket; the limit
	// caps the result.
	buckets, err := st.BucketedMeans(
		context.Background(),
		[]string{"NumStates"},
		0, 2000000, 1000, 2,
	)
	require.NoError(t, err)
	assert.Len(t, buckets, 2)
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"WallTime", true},
		{"NumStates2", true},
		{"", false},
		{"Wall Time", false},
		{"Wall-Time", false},
		{"WallTime; DROP TABLE stats", false},
		{"wall_time", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIdentifier(tt.name))
		})
	}
}
