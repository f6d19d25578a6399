package models

import "time"

// ReportStatus is the summary outcome of a validation run.
type ReportStatus string

const (
	ReportPass    ReportStatus = "pass"
	ReportFail    ReportStatus = "fail"
	ReportUnknown ReportStatus = "unknown"
)

// CheckOutcome is one entry in a validation report's per-check breakdown.
// The gate only ever reads the summary status and timestamp; the breakdown
// shape is informational.
type CheckOutcome struct {
	Name   string       `yaml:"name"`
	Status ReportStatus `yaml:"status"`
	Detail string       `yaml:"detail,omitempty"`
}

// ValidationReport is the persisted outcome of an external validation run,
// consumed read-only by the commit gate.
type ValidationReport struct {
	GeneratedAt time.Time      `yaml:"generated_at"`
	Status      ReportStatus   `yaml:"status"`
	Checks      []CheckOutcome `yaml:"checks,omitempty"`
}

// IsStale reports whether the report is older than the freshness window at
// the given moment.
func (r *ValidationReport) IsStale(window time.Duration, now time.Time) bool {
	return now.Sub(r.GeneratedAt) > window
}
