// Package gate decides whether a guarded, irreversible action (commit,
// deploy) may proceed, based on the persisted validation report. The gate
// is advisory-overridable: a user may force Allow after a Block, but only
// through an explicit, recorded override.
package gate

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/steward/internal/filelock"
	"github.com/harrison/steward/internal/models"
)

// Verdict is the gate's answer for a guarded action.
type Verdict string

const (
	Allow Verdict = "allow"
	Block Verdict = "block"
	Warn  Verdict = "warn"
)

// Decision carries the verdict and the specific reason behind it. Block
// and Warn always name why and, where applicable, what to do about it.
type Decision struct {
	Verdict     Verdict
	Reason      string
	Remediation string
}

// Check applies the decision table to a report:
//
//	no report          -> Warn  (run validation first)
//	status fail        -> Block
//	status pass, fresh -> Allow
//	status pass, stale -> Warn
//	anything else      -> Warn  (status unknown)
//
// report may be nil, meaning no validation has been recorded.
func Check(report *models.ValidationReport, window time.Duration, now time.Time) Decision {
	if report == nil {
		return Decision{
			Verdict:     Warn,
			Reason:      "no validation report found",
			Remediation: "run validation first",
		}
	}

	switch report.Status {
	case models.ReportFail:
		return Decision{
			Verdict:     Block,
			Reason:      fmt.Sprintf("validation failed at %s", report.GeneratedAt.Format(time.RFC3339)),
			Remediation: "fix the failing checks and re-run validation",
		}
	case models.ReportPass:
		if report.IsStale(window, now) {
			age := now.Sub(report.GeneratedAt).Round(time.Minute)
			return Decision{
				Verdict:     Warn,
				Reason:      fmt.Sprintf("validation passed but the report is %v old (window %v)", age, window),
				Remediation: "re-run validation for a fresh result",
			}
		}
		return Decision{Verdict: Allow, Reason: "validation passed"}
	default:
		return Decision{
			Verdict:     Warn,
			Reason:      fmt.Sprintf("validation report has status %q", report.Status),
			Remediation: "re-run validation",
		}
	}
}

// OverrideRecord captures an explicit user override of a Block decision.
// Overrides are never silent; callers persist this record before
// proceeding.
type OverrideRecord struct {
	At         time.Time
	Actor      string
	Reason     string
	Overridden Decision
}

// Override produces the record that lets a guarded action proceed past a
// Block. It refuses to manufacture one without an explicit reason.
func Override(d Decision, actor, reason string, now time.Time) (OverrideRecord, error) {
	if reason == "" {
		return OverrideRecord{}, fmt.Errorf("an override requires an explicit reason")
	}
	if actor == "" {
		actor = "user"
	}
	return OverrideRecord{At: now, Actor: actor, Reason: reason, Overridden: d}, nil
}

// LoadReport reads the persisted validation report. A missing file is not
// an error: it returns (nil, nil) and the gate warns accordingly.
func LoadReport(path string) (*models.ValidationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read validation report: %w", err)
	}

	var report models.ValidationReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse validation report: %w", err)
	}
	if report.Status == "" {
		report.Status = models.ReportUnknown
	}
	return &report, nil
}

// SaveReport persists a validation report under the file lock.
func SaveReport(path string, report *models.ValidationReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode validation report: %w", err)
	}
	return filelock.LockAndWrite(path, data)
}
