package stats

// Record is one sampled snapshot of the engine's counters, keyed by
// internal counter name. Time counters are microseconds at rest and
// memory counters are bytes; Derive applies the display conversions.
type Record map[string]float64

// Row is a single run's report line: internal column name to cell.
// Unlike Record it can carry labels (the Path column) and absent
// markers for unavailable reductions.
type Row map[string]Value

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}

	return out
}
