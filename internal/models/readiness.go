package models

// CheckSeverity is the outcome of one readiness probe.
type CheckSeverity string

const (
	SeverityPass CheckSeverity = "pass"
	SeverityFail CheckSeverity = "fail"
	SeverityWarn CheckSeverity = "warn"
	SeverityInfo CheckSeverity = "info"
)

// ReadinessResult is the outcome of a single environment probe.
type ReadinessResult struct {
	Name        string
	Severity    CheckSeverity
	Detail      string
	Remediation string
	Critical    bool
}

// ReadinessClass is the aggregate classification of a full readiness run.
type ReadinessClass string

const (
	ClassReady              ReadinessClass = "ready"
	ClassCriticalFailure    ReadinessClass = "critical_failure"
	ClassPassedWithWarnings ReadinessClass = "passed_with_warnings"
)

// ExitCode maps the classification to the process exit code contract:
// 0 ready, 1 critical failure (fatal to dependent steps), 2 warnings
// (non-fatal).
func (c ReadinessClass) ExitCode() int {
	switch c {
	case ClassCriticalFailure:
		return 1
	case ClassPassedWithWarnings:
		return 2
	default:
		return 0
	}
}

// ReadinessSummary aggregates one full run of the readiness battery.
type ReadinessSummary struct {
	Results []ReadinessResult
	Passed  int
	Failed  int
	Warned  int
	Class   ReadinessClass
}

// Classify computes counts and the aggregate class from the results.
// Any failed critical check forces CriticalFailure regardless of how many
// optional checks pass.
func Classify(results []ReadinessResult) ReadinessSummary {
	s := ReadinessSummary{Results: results}
	critical := false
	for _, r := range results {
		switch r.Severity {
		case SeverityPass, SeverityInfo:
			s.Passed++
		case SeverityFail:
			s.Failed++
			if r.Critical {
				critical = true
			}
		case SeverityWarn:
			s.Warned++
		}
	}
	switch {
	case critical:
		s.Class = ClassCriticalFailure
	case s.Failed == 0 && s.Warned == 0:
		s.Class = ClassReady
	default:
		s.Class = ClassPassedWithWarnings
	}
	return s
}
