package stats

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// PathColumn is the internal name of the run identifier column.
const PathColumn = "Path"

// Table is the finished multi-run report: display-named columns in
// canonical order and one row per run, plus a trailing totals row
// when more than one run is present. Every column holds exactly
// len(Rows) cells; gaps are explicit absent markers.
type Table struct {
	Columns []string
	Rows    [][]Value
}

// BuildTable combines per-run report rows into one aligned table.
// Rows are expected to be derived and projected already; renaming to
// legend display names happens last, after all numeric work.
func BuildTable(rows []Row, legend *Legend) *Table {
	shortenPaths(rows)

	internal := orderColumns(rows, legend)

	t := &Table{
		Columns: make([]string, len(internal)),
		Rows:    make([][]Value, 0, len(rows)+1),
	}

	for _, row := range rows {
		line := make([]Value, len(internal))

		for i, name := range internal {
			if v, ok := row[name]; ok {
				line[i] = v
			} else {
				line[i] = Absent()
			}
		}

		t.Rows = append(t.Rows, line)
	}

	if len(rows) > 1 {
		t.Rows = append(t.Rows, totalsRow(t.Rows, internal, legend))
	}

	// Renaming is strictly the last step so that reduction lookups
	// above always see internal names.
	for i, name := range internal {
		t.Columns[i] = legend.Display(name)
	}

	return t
}

// orderColumns returns the union of row keys ordered Path first, then
// legend order, then unknown columns lexicographically.
func orderColumns(rows []Row, legend *Legend) []string {
	seen := make(map[string]bool)

	for _, row := range rows {
		for name := range row {
			seen[name] = true
		}
	}

	ordered := make([]string, 0, len(seen))
	ordered = append(ordered, PathColumn)

	for _, e := range legend.Entries() {
		if e.Internal != PathColumn && seen[e.Internal] {
			ordered = append(ordered, e.Internal)
		}
	}

	var unknown []string

	for name := range seen {
		if name == PathColumn {
			continue
		}

		if _, ok := legend.Lookup(name); !ok {
			unknown = append(unknown, name)
		}
	}

	sort.Strings(unknown)

	return append(ordered, unknown...)
}

// totalsRow folds the per-run rows into one summary line using each
// column's reduction.
func totalsRow(rows [][]Value, internal []string, legend *Legend) []Value {
	n := len(rows)
	out := make([]Value, len(internal))

	for i, name := range internal {
		switch legend.ReductionFor(name) {
		case ReduceLabel:
			out[i] = Str(fmt.Sprintf("Total (%d)", n))
		case ReduceMax:
			out[i] = reduceMax(rows, i)
		case ReduceMean:
			out[i] = Num(reduceSum(rows, i) / float64(n))
		default:
			out[i] = Num(reduceSum(rows, i))
		}
	}

	return out
}

func reduceSum(rows [][]Value, col int) float64 {
	var sum float64

	for _, row := range rows {
		if v, ok := row[col].Float64(); ok {
			sum += v
		}
	}

	return sum
}

func reduceMax(rows [][]Value, col int) Value {
	best := Absent()

	for _, row := range rows {
		v, ok := row[col].Float64()
		if !ok {
			continue
		}

		if cur, ok := best.Float64(); !ok || v > cur {
			best = Num(v)
		}
	}

	return best
}

// shortenPaths strips the longest common leading path-segment
// sequence from the run identifiers, leaving the distinguishing
// suffixes. Purely cosmetic; single-run reports keep the full path.
func shortenPaths(rows []Row) {
	if len(rows) < 2 {
		return
	}

	paths := make([][]string, 0, len(rows))

	for _, row := range rows {
		v, ok := row[PathColumn]
		if !ok {
			return
		}

		paths = append(paths, splitPath(v.String()))
	}

	common := len(paths[0])

	for _, segs := range paths[1:] {
		n := 0
		for n < common && n < len(segs) && segs[n] == paths[0][n] {
			n++
		}

		common = n
	}

	if common == 0 {
		return
	}

	for i, row := range rows {
		segs := paths[i]

		// Never strip a path down to nothing.
		keep := common
		if keep > len(segs)-1 {
			keep = len(segs) - 1
		}

		row[PathColumn] = Str(strings.Join(segs[keep:], "/"))
	}
}

func splitPath(p string) []string {
	return strings.Split(filepath.ToSlash(strings.TrimSuffix(p, "/")), "/")
}
