package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/steward/internal/display"
	"github.com/harrison/steward/internal/gate"
	"github.com/harrison/steward/internal/workflow"
)

// NewCommitCommand creates and returns the commit subcommand
func NewCommitCommand() *cobra.Command {
	var (
		overrideReason string
		actor          string
	)

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Evaluate the commit gate against the validation report",
		Long: `Decide whether the commit may proceed based on the last validation
report: a failing report blocks, a missing or stale one warns, a fresh
pass allows. Steward never runs the commit itself; it tells you whether
you may.

A block can be overridden with --override <reason>; the override is
recorded in the audit history, never applied silently.

Exit code: 0 if the commit may proceed, 1 if blocked`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(cmd, overrideReason, actor)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&overrideReason, "override", "", "override a blocking decision, stating why")
	cmd.Flags().StringVar(&actor, "by", "user", "who is asking")

	return cmd
}

func runCommit(cmd *cobra.Command, overrideReason, actor string) error {
	out := cmd.OutOrStdout()

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	report, err := gate.LoadReport(ws.path(ws.cfg.ReportFile))
	if err != nil {
		return err
	}
	decision := gate.Check(report, ws.cfg.FreshnessWindow, time.Now())

	planID := ""
	if plan, err := ws.planStore().Load(); err == nil {
		planID = plan.ID
	} else if !errors.Is(err, workflow.ErrNoPlan) {
		return err
	}

	hist, err := ws.openHistory()
	if err != nil {
		return err
	}
	defer hist.Close()
	if err := hist.RecordGateDecision(planID, decision); err != nil {
		return err
	}

	display.GateDecision(out, decision)

	if decision.Verdict != gate.Block {
		fmt.Fprintln(out, "The commit may proceed.")
		return nil
	}

	if overrideReason == "" {
		fmt.Fprintln(out, "The commit is blocked. Fix validation, or override with --override <reason>.")
		return &ExitError{Code: 1}
	}

	record, err := gate.Override(decision, actor, overrideReason, time.Now())
	if err != nil {
		return err
	}
	if err := hist.RecordOverride(planID, record); err != nil {
		return err
	}
	fmt.Fprintf(out, "Block overridden by %s: %s\nThe override is recorded; the commit may proceed.\n", record.Actor, record.Reason)
	return nil
}
