package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/symexlab/statoor/pkg/stats"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// StatsFileName is the counter store the engine writes inside a
	// run directory.
	StatsFileName = "run.stats"

	// InfoFileName is the textual run metadata file.
	InfoFileName = "info"

	statsTable = "stats"
)

// Store is a read-only handle to one run's counter store. The engine
// owns the write path; this side only issues bounded scans and
// aggregates, so concurrent readers need no coordination beyond
// SQLite's own read isolation.
type Store struct {
	db *gorm.DB
}

// Open opens the counter store at path. A missing file is an error
// rather than an implicitly created empty database.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("locating counter store: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("opening counter store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying db: %w", err)
	}

	return sqlDB.Close()
}

// Columns returns the counter names recorded in the store.
func (s *Store) Columns(ctx context.Context) ([]string, error) {
	rows, err := s.db.WithContext(ctx).
		Raw("SELECT * FROM " + statsTable + " LIMIT 0").Rows()
	if err != nil {
		return nil, fmt.Errorf("reading stats schema: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading stats columns: %w", err)
	}

	return cols, nil
}

// Count returns the number of recorded snapshots.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM " + statsTable).Scan(&n).Error; err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}

	return n, nil
}

// LastRecord returns the most recently inserted snapshot. An empty
// store yields an empty record, not an error.
func (s *Store) LastRecord(ctx context.Context) (stats.Record, error) {
	rows, err := s.db.WithContext(ctx).
		Raw("SELECT * FROM " + statsTable + " ORDER BY rowid DESC LIMIT 1").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("querying last record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return stats.Record{}, rows.Err()
	}

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading record columns: %w", err)
	}

	vals := make([]any, len(cols))
	for i := range vals {
		vals[i] = new(sql.NullFloat64)
	}

	if err := rows.Scan(vals...); err != nil {
		return nil, fmt.Errorf("scanning last record: %w", err)
	}

	rec := make(stats.Record, len(cols))

	for i, name := range cols {
		if v := vals[i].(*sql.NullFloat64); v.Valid {
			rec[name] = v.Float64
		}
	}

	return rec, nil
}

// Reduce returns the maximum and average of one counter over the
// whole record sequence. A missing column surfaces as an error for
// the caller to treat as unavailable.
func (s *Store) Reduce(ctx context.Context, column string) (maxV, avgV float64, err error) {
	if !IsIdentifier(column) {
		return 0, 0, fmt.Errorf("invalid counter name %q", column)
	}

	var res struct {
		Max sql.NullFloat64
		Avg sql.NullFloat64
	}

	q := fmt.Sprintf(
		"SELECT MAX(%s) AS max, AVG(%s) AS avg FROM %s",
		column, column, statsTable,
	)

	if err := s.db.WithContext(ctx).Raw(q).Scan(&res).Error; err != nil {
		return 0, 0, fmt.Errorf("reducing %s: %w", column, err)
	}

	if !res.Max.Valid || !res.Avg.Valid {
		return 0, 0, fmt.Errorf("no %s samples recorded", column)
	}

	return res.Max.Float64, res.Avg.Float64, nil
}

// Bucket is one fixed-width window of averaged samples. Means holds
// one cell per requested column, absent when the bucket had no valid
// sample for it.
type Bucket struct {
	Index int64
	Means []stats.Value
}

// BucketedMeans groups the records with WallTime inside [fromUs,
// toUs] into buckets of intervalUs microseconds and returns the
// per-bucket mean of each column, capped at limit buckets. Column
// names must already be validated identifiers.
func (s *Store) BucketedMeans(
	ctx context.Context,
	columns []string,
	fromUs, toUs, intervalUs int64,
	limit int,
) ([]Bucket, error) {
	for _, c := range columns {
		if !IsIdentifier(c) {
			return nil, fmt.Errorf("invalid counter name %q", c)
		}
	}

	sel := make([]string, 0, len(columns)+1)
	sel = append(sel, fmt.Sprintf(
		"CAST(WallTime / %d AS INTEGER) AS bucket", intervalUs,
	))

	for _, c := range columns {
		sel = append(sel, fmt.Sprintf("AVG(%s)", c))
	}

	q := fmt.Sprintf(
		"SELECT %s FROM %s WHERE WallTime >= ? AND WallTime <= ? "+
			"GROUP BY bucket ORDER BY bucket LIMIT ?",
		strings.Join(sel, ", "), statsTable,
	)

	rows, err := s.db.WithContext(ctx).Raw(q, fromUs, toUs, limit).Rows()
	if err != nil {
		return nil, fmt.Errorf("querying buckets: %w", err)
	}
	defer rows.Close()

	var buckets []Bucket

	for rows.Next() {
		vals := make([]any, len(columns)+1)
		vals[0] = new(sql.NullInt64)

		for i := 1; i < len(vals); i++ {
			vals[i] = new(sql.NullFloat64)
		}

		if err := rows.Scan(vals...); err != nil {
			return nil, fmt.Errorf("scanning bucket: %w", err)
		}

		b := Bucket{
			Index: vals[0].(*sql.NullInt64).Int64,
			Means: make([]stats.Value, len(columns)),
		}

		for i := range columns {
			if v := vals[i+1].(*sql.NullFloat64); v.Valid {
				b.Means[i] = stats.Num(v.Float64)
			} else {
				b.Means[i] = stats.Absent()
			}
		}

		buckets = append(buckets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating buckets: %w", err)
	}

	return buckets, nil
}

// IsIdentifier reports whether name is a safe counter identifier:
// non-empty and strictly alphanumeric. Anything else never reaches an
// interpolated query.
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}

	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}

	return true
}
