// Package scanner implements the two periodic jobs: the inactivity scan and
// the followup scan. Scans are stateless between invocations, idempotent per
// invocation, and report a result summary instead of side-effecting a global.
package scanner

// Summary is the outcome of one scan invocation.
type Summary struct {
	// Processed counts records examined.
	Processed int `json:"processed"`
	// Created counts notifications inserted.
	Created int `json:"created"`
	// Retired counts superseded notifications removed.
	Retired int `json:"retired"`
	// Skipped counts records examined but deliberately left alone.
	Skipped int `json:"skipped"`
	// Failed counts per-record errors; they never abort the scan.
	Failed int `json:"failed"`
}

func (s Summary) add(other Summary) Summary {
	return Summary{
		Processed: s.Processed + other.Processed,
		Created:   s.Created + other.Created,
		Retired:   s.Retired + other.Retired,
		Skipped:   s.Skipped + other.Skipped,
		Failed:    s.Failed + other.Failed,
	}
}
