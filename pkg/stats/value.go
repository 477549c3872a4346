package stats

import (
	"math"
	"strconv"
)

// valueKind discriminates the cell variants.
type valueKind int

const (
	kindAbsent valueKind = iota
	kindNum
	kindStr
)

// Value is a single report cell: a number, a label, or explicitly
// absent. Absent is distinct from zero so that columns missing from a
// run's store keep their slot in the table without being mistaken for
// a measured 0.
type Value struct {
	kind valueKind
	num  float64
	str  string
}

// Absent returns the explicit no-value marker.
func Absent() Value {
	return Value{kind: kindAbsent}
}

// Num wraps a numeric cell.
func Num(v float64) Value {
	return Value{kind: kindNum, num: v}
}

// Str wraps a label cell (run paths, the totals label).
func Str(s string) Value {
	return Value{kind: kindStr, str: s}
}

// IsAbsent reports whether the cell carries no value.
func (v Value) IsAbsent() bool {
	return v.kind == kindAbsent
}

// Float64 returns the numeric value and whether the cell is numeric.
func (v Value) Float64() (float64, bool) {
	return v.num, v.kind == kindNum
}

// String renders the cell for display. Absent cells render empty.
func (v Value) String() string {
	switch v.kind {
	case kindStr:
		return v.str
	case kindNum:
		return formatNumber(v.num)
	default:
		return ""
	}
}

// formatNumber prints integers without a fraction and everything else
// with two decimals, matching the report's fixed-width rendering.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}

	return strconv.FormatFloat(f, 'f', 2, 64)
}
