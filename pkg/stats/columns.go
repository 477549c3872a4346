package stats

// Column profiles project a report row onto a named subset of
// columns. Profile lists use internal column names; a requested
// column missing from the row is silently skipped.

// ProfileAll retains every column present in the row.
const ProfileAll = "all"

var profiles = map[string][]string{
	"default": {
		"Path", "Instructions", "WallTime", "ICov",
		"BCov", "ICount", "RelSolverTime",
	},
	"reltime": {
		"Path", "WallTime", "RelUserTime", "RelSolverTime",
		"RelCexCacheTime", "RelForkTime", "RelResolveTime",
	},
	"abstime": {
		"Path", "WallTime", "UserTime", "SolverTime",
		"CexCacheTime", "ForkTime", "ResolveTime",
	},
	"more": {
		"Path", "Instructions", "WallTime", "ICov",
		"BCov", "ICount", "RelSolverTime",
		"NumStates", "MaxStates", "MallocUsage", "MaxMem",
	},
}

// Profiles lists the recognized profile names.
func Profiles() []string {
	return []string{"default", "all", "reltime", "abstime", "more"}
}

// ValidProfile reports whether name is a recognized profile.
func ValidProfile(name string) bool {
	if name == ProfileAll {
		return true
	}

	_, ok := profiles[name]

	return ok
}

// Select projects a row onto a profile. The caller validates the
// profile name up front via ValidProfile; an unknown name projects to
// an empty row rather than silently keeping everything.
func Select(row Row, profile string) Row {
	if profile == ProfileAll {
		out := make(Row, len(row))
		for k, v := range row {
			out[k] = v
		}

		return out
	}

	cols := profiles[profile]
	out := make(Row, len(cols))

	for _, name := range cols {
		if v, ok := row[name]; ok {
			out[name] = v
		}
	}

	return out
}
