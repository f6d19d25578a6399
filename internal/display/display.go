// Package display renders governor findings for the console: readiness
// results, conflicts, gate decisions, and warnings.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/steward/internal/gate"
	"github.com/harrison/steward/internal/models"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// Warning is a user-facing warning block.
type Warning struct {
	Title      string
	Message    string
	Suggestion string
}

// Display writes the formatted warning.
func (w Warning) Display(out io.Writer) {
	fmt.Fprintf(out, "%s %s\n", yellow("⚠ Warning:"), w.Title)
	if w.Message != "" {
		fmt.Fprintf(out, "    %s\n", w.Message)
	}
	if w.Suggestion != "" {
		fmt.Fprintf(out, "    Suggestion: %s\n", w.Suggestion)
	}
}

// ReadinessSummary renders the readiness battery outcome, one line per
// check plus the aggregate classification.
func ReadinessSummary(out io.Writer, summary models.ReadinessSummary) {
	for _, r := range summary.Results {
		var mark string
		switch r.Severity {
		case models.SeverityPass, models.SeverityInfo:
			mark = green("✓")
		case models.SeverityWarn:
			mark = yellow("!")
		case models.SeverityFail:
			mark = red("✗")
		}
		fmt.Fprintf(out, "%s %s", mark, r.Name)
		if r.Detail != "" {
			fmt.Fprintf(out, ": %s", r.Detail)
		}
		fmt.Fprintln(out)
		if r.Severity == models.SeverityFail || r.Severity == models.SeverityWarn {
			if r.Remediation != "" {
				fmt.Fprintf(out, "    %s\n", r.Remediation)
			}
		}
	}

	fmt.Fprintln(out)
	switch summary.Class {
	case models.ClassReady:
		fmt.Fprintf(out, "%s Environment ready (%d checks passed)\n", green("✓"), summary.Passed)
	case models.ClassCriticalFailure:
		fmt.Fprintf(out, "%s Critical readiness failure: %d failed, %d warned, %d passed\n",
			red("✗"), summary.Failed, summary.Warned, summary.Passed)
	case models.ClassPassedWithWarnings:
		fmt.Fprintf(out, "%s Passed with warnings: %d warned, %d failed (optional), %d passed\n",
			yellow("!"), summary.Warned, summary.Failed, summary.Passed)
	}
}

// Conflicts renders surfaced conflict records. Conflicts are escalations:
// the governor reports them and the user decides.
func Conflicts(out io.Writer, records []models.ConflictRecord) {
	if len(records) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s %d conflict(s) need a decision:\n", red("✗"), len(records))
	for _, rec := range records {
		fmt.Fprintf(out, "  %s %s\n", red("✗"), rec.String())
		if rec.Escalation != "" {
			fmt.Fprintf(out, "      → %s\n", rec.Escalation)
		}
	}
}

// Sequence renders the phased consultation order.
func Sequence(out io.Writer, groups []models.PhaseGroup) {
	fmt.Fprintf(out, "Consultation order:\n")
	for i, group := range groups {
		fmt.Fprintf(out, "  %d. %s: %s\n", i+1, cyan(string(group.Phase)), strings.Join(group.Roles, ", "))
	}
}

// GateDecision renders a commit gate decision with its reason.
func GateDecision(out io.Writer, d gate.Decision) {
	switch d.Verdict {
	case gate.Allow:
		fmt.Fprintf(out, "%s %s\n", green("✓"), d.Reason)
	case gate.Block:
		fmt.Fprintf(out, "%s Blocked: %s\n", red("✗"), d.Reason)
	case gate.Warn:
		fmt.Fprintf(out, "%s %s\n", yellow("!"), d.Reason)
	}
	if d.Verdict != gate.Allow && d.Remediation != "" {
		fmt.Fprintf(out, "    %s\n", d.Remediation)
	}
}
