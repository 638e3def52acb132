package models

// DriftKind classifies a non-fatal change observed or applied during a run.
type DriftKind string

const (
	// DriftMove means a known identifier was found at a new path.
	DriftMove DriftKind = "move"
	// DriftAdoption means a marker on disk was not yet tracked by the mapping.
	DriftAdoption DriftKind = "adoption"
	// DriftStamp means a marker was generated and prepended to an unmarked document.
	DriftStamp DriftKind = "stamp"
)

// DriftEvent records one drift correction. OldPath is set for moves only.
type DriftEvent struct {
	Kind    DriftKind `json:"kind"`
	Token   string    `json:"token"`
	Path    string    `json:"path"`
	OldPath string    `json:"old_path,omitempty"`
}

// RunReport summarizes one full pass over the document tree.
type RunReport struct {
	RunID      string       `json:"run_id"`
	Root       string       `json:"root"`
	CheckOnly  bool         `json:"check_only,omitempty"`
	Scanned    int          `json:"scanned"`
	Tracked    int          `json:"tracked"`
	Unmarked   int          `json:"unmarked"`
	Events     []DriftEvent `json:"events,omitempty"`
	DurationMS int64        `json:"duration_ms"`
}

// Clean reports whether the pass found nothing to change: no drift events and
// no unmarked documents.
func (r *RunReport) Clean() bool {
	return len(r.Events) == 0 && r.Unmarked == 0
}

// CountKind returns how many events of the given kind the report holds.
func (r *RunReport) CountKind(kind DriftKind) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
