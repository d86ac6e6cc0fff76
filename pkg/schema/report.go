package schema

// ChangeStatus describes how one change ended.
type ChangeStatus string

const (
	// StatusApplied means the DDL executed and mutated the catalog.
	StatusApplied ChangeStatus = "APPLIED"

	// StatusAlreadyPresent means the guard (or the database's own IF NOT
	// EXISTS handling) found the object already in place.
	StatusAlreadyPresent ChangeStatus = "ALREADY_PRESENT"

	// StatusFailed means the DDL failed for a reason other than the object
	// already existing. The remaining sequence is aborted.
	StatusFailed ChangeStatus = "FAILED"
)

type ChangeResult struct {
	Change string       `json:"change"`
	Kind   Kind         `json:"kind"`
	Status ChangeStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// Report is the outcome of running one unit: which changes were applied or
// already present, and what the verification probes observed.
type Report struct {
	Unit    string         `json:"unit"`
	Dialect Dialect        `json:"dialect"`
	Changes []ChangeResult `json:"changes,omitempty"`
	Probes  []ProbeResult  `json:"probes,omitempty"`
	Fatal   string         `json:"fatal,omitempty"`
}

// ProbesPassed reports whether every probe passed.
func (r Report) ProbesPassed() bool {
	for _, p := range r.Probes {
		if !p.Passed {
			return false
		}
	}
	return true
}
