package stats

import "strings"

// Reduction selects how a column is folded into the totals row.
type Reduction int

const (
	// ReduceSum adds the non-absent values.
	ReduceSum Reduction = iota

	// ReduceMax takes the maximum of the non-absent values; absent
	// when every entry is absent.
	ReduceMax

	// ReduceMean sums the non-absent values and divides by the run
	// count N, not by the number of non-absent entries. Absent
	// entries therefore pull the mean towards zero. This asymmetry
	// with ReduceMax/ReduceSum is an observable contract of the
	// report format and is kept deliberately.
	ReduceMean

	// ReduceLabel marks the Path column, whose totals cell is the
	// literal "Total (N)" label.
	ReduceLabel
)

// Entry describes one report column: its display name, a human
// description, the internal counter name it renames, and the totals
// reduction for it.
type Entry struct {
	Display     string
	Description string
	Internal    string
	Reduce      Reduction
}

// Legend is the immutable catalog of known columns in canonical
// display order. It is process-wide configuration, built once and
// safe to share across concurrent dashboard requests.
type Legend struct {
	entries    []Entry
	byInternal map[string]int
}

// NewLegend builds a legend from entries in display order.
func NewLegend(entries []Entry) *Legend {
	l := &Legend{
		entries:    entries,
		byInternal: make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		l.byInternal[e.Internal] = i
	}

	return l
}

// Entries returns the catalog in canonical display order.
func (l *Legend) Entries() []Entry {
	return l.entries
}

// Lookup returns the entry for an internal column name.
func (l *Legend) Lookup(internal string) (Entry, bool) {
	i, ok := l.byInternal[internal]
	if !ok {
		return Entry{}, false
	}

	return l.entries[i], true
}

// Display returns the display name for an internal column name, or
// the internal name itself when the column is not in the catalog.
func (l *Legend) Display(internal string) string {
	if e, ok := l.Lookup(internal); ok {
		return e.Display
	}

	return internal
}

// ReductionFor returns the totals reduction for an internal column
// name. Columns outside the catalog fall back to the historical
// display-name pattern rule.
func (l *Legend) ReductionFor(internal string) Reduction {
	if e, ok := l.Lookup(internal); ok {
		return e.Reduce
	}

	return reductionFromName(l.Display(internal))
}

// reductionFromName is the legacy name-pattern dispatch, kept only
// for columns that have no legend entry.
func reductionFromName(name string) Reduction {
	switch {
	case strings.HasPrefix(name, "Avg") || strings.HasSuffix(name, "(%)"):
		return ReduceMean
	case strings.HasPrefix(name, "Max"):
		return ReduceMax
	default:
		return ReduceSum
	}
}

// DefaultLegend is the canonical column catalog for engine counter
// stores. Order here is the display order of report columns.
var DefaultLegend = NewLegend([]Entry{
	{"Path", "run directory", "Path", ReduceLabel},
	{"Instrs", "number of executed instructions", "Instructions", ReduceSum},
	{"Time(s)", "total wall time (s)", "WallTime", ReduceSum},
	{"TUser(s)", "total user time (s)", "UserTime", ReduceSum},
	{"ICov(%)", "instruction coverage in the analyzed bitcode (%)", "ICov", ReduceMean},
	{"BCov(%)", "branch coverage in the analyzed bitcode (%)", "BCov", ReduceMean},
	{"ICount", "total static instructions in the analyzed bitcode", "ICount", ReduceSum},
	{"TSolver(s)", "time spent in the constraint solver (s)", "SolverTime", ReduceSum},
	{"TSolver(%)", "relative time spent in the constraint solver", "RelSolverTime", ReduceMean},
	{"States", "number of currently active states", "NumStates", ReduceSum},
	{"MaxStates", "maximum number of active states", "MaxStates", ReduceMax},
	{"AvgStates", "average number of active states", "AvgStates", ReduceMean},
	{"Mem(MiB)", "memory in use (MiB)", "MallocUsage", ReduceSum},
	{"MaxMem(MiB)", "peak memory (MiB)", "MaxMem", ReduceMax},
	{"AvgMem(MiB)", "average memory (MiB)", "AvgMem", ReduceMean},
	{"Queries", "number of queries issued to the solver", "NumQueries", ReduceSum},
	{"AvgQC", "average number of query constructs per query", "AvgQC", ReduceMean},
	{"Tcex(s)", "time spent in the counterexample cache (s)", "CexCacheTime", ReduceSum},
	{"Tcex(%)", "relative time spent in the counterexample cache", "RelCexCacheTime", ReduceMean},
	{"Tfork(s)", "time spent forking (s)", "ForkTime", ReduceSum},
	{"Tfork(%)", "relative time spent forking", "RelForkTime", ReduceMean},
	{"TRes(s)", "time spent in object resolution (s)", "ResolveTime", ReduceSum},
	{"TRes(%)", "relative time spent in object resolution", "RelResolveTime", ReduceMean},
	{"TUser(%)", "relative user time", "RelUserTime", ReduceMean},
	{"TQuery(s)", "time spent in queries (s)", "QueryTime", ReduceSum},
	{"QCexCMisses", "counterexample cache misses", "QueryCexCacheMisses", ReduceSum},
	{"QCexCHits", "counterexample cache hits", "QueryCexCacheHits", ReduceSum},
	{"CoveredInstrs", "covered static instructions", "CoveredInstructions", ReduceSum},
	{"UncoveredInstrs", "uncovered static instructions", "UncoveredInstructions", ReduceSum},
	{"FullBranches", "fully covered branches", "FullBranches", ReduceSum},
	{"PartBranches", "partially covered branches", "PartialBranches", ReduceSum},
	{"Branches", "total branches", "NumBranches", ReduceSum},
	{"QConstructs", "total query constructs", "NumQueryConstructs", ReduceSum},
})
