package stats

import "math"

// microsPerSecond converts stored time counters to seconds.
const microsPerSecond = 1e6

// bytesPerMiB converts stored memory counters to MiB.
const bytesPerMiB = 1 << 20

// timeCounters are the counters stored in microseconds that Derive
// rewrites to seconds.
var timeCounters = []string{
	"UserTime",
	"WallTime",
	"QueryTime",
	"SolverTime",
	"CexCacheTime",
	"ForkTime",
	"ResolveTime",
}

// relTimeCounters get a Rel<name> percentage of wall time.
var relTimeCounters = []string{
	"SolverTime",
	"CexCacheTime",
	"ForkTime",
	"ResolveTime",
	"UserTime",
}

// Derive extends a raw snapshot with computed ratios, rates and unit
// conversions. Each rule only fires when its inputs are present; an
// absent input means the derived field is simply not added.
//
// Derive must only ever be applied to raw counter values: the unit
// conversions are one-directional, so feeding its own output back in
// would divide the time and memory counters twice.
func Derive(rec Record) Record {
	out := rec.Clone()

	// A module without conditional branches has nothing to cover;
	// report it as one fully covered branch so branch coverage comes
	// out at 100% instead of dividing by zero.
	if nb, ok := out["NumBranches"]; ok && nb == 0 {
		out["FullBranches"] = 1
		out["NumBranches"] = 1
	}

	for _, name := range timeCounters {
		if v, ok := out[name]; ok {
			out[name] = v / microsPerSecond
		}
	}

	if v, ok := out["MallocUsage"]; ok {
		out["MallocUsage"] = v / bytesPerMiB
	}

	if nqc, ok := out["NumQueryConstructs"]; ok {
		if nq, ok := out["NumQueries"]; ok {
			// No queries means no average; never divide by zero.
			if nq == 0 {
				out["AvgQC"] = 0
			} else {
				out["AvgQC"] = math.Floor(nqc / nq)
			}
		}
	}

	covered, hasCovered := out["CoveredInstructions"]
	uncovered, hasUncovered := out["UncoveredInstructions"]

	if hasCovered && hasUncovered {
		out["ICount"] = covered + uncovered
	}

	if icount, ok := out["ICount"]; ok && hasCovered && icount > 0 {
		out["ICov"] = 100 * covered / icount
	}

	// PartialBranches defaults to zero: the straight-line special case
	// above synthesizes FullBranches/NumBranches without it.
	full, hasFull := out["FullBranches"]
	partial := out["PartialBranches"]

	if nb, ok := out["NumBranches"]; ok && hasFull && nb > 0 {
		out["BCov"] = 100 * (2*full + partial) / (2 * nb)
	}

	if wall, ok := out["WallTime"]; ok && wall > 0 {
		for _, name := range relTimeCounters {
			if v, ok := out[name]; ok {
				out["Rel"+name] = 100 * v / wall
			}
		}
	}

	return out
}
