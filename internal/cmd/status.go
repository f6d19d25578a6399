package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/steward/internal/display"
	"github.com/harrison/steward/internal/gate"
	"github.com/harrison/steward/internal/readiness"
	"github.com/harrison/steward/internal/workflow"
)

// NewStatusCommand creates and returns the status subcommand
func NewStatusCommand() *cobra.Command {
	var historyLimit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current plan, gate state, and recent history",
		Long: `Report the live plan's lifecycle state and task progress, what the
commit gate would currently decide, and, with --history, the most
recent audit events. Read-only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, historyLimit)
		},
		SilenceUsage: true,
	}

	cmd.Flags().IntVar(&historyLimit, "history", 0, "also show the N most recent audit events")

	return cmd
}

func runStatus(cmd *cobra.Command, historyLimit int) error {
	out := cmd.OutOrStdout()

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	plan, err := ws.planStore().Load()
	switch {
	case errors.Is(err, workflow.ErrNoPlan):
		fmt.Fprintln(out, "No plan exists. Run 'steward plan <request>' to create one.")
	case err != nil:
		return err
	default:
		fmt.Fprintf(out, "Plan %s: %s\n", plan.ID, plan.Status)
		fmt.Fprintf(out, "Request: %s\n", plan.Request)
		printTasks(out, plan)
	}

	report, err := gate.LoadReport(ws.path(ws.cfg.ReportFile))
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	display.GateDecision(out, gate.Check(report, ws.cfg.FreshnessWindow, time.Now()))

	tools, files := ws.readinessInputs()
	summary := readiness.NewChecker().Run(cmd.Context(), tools, files)
	fmt.Fprintln(out)
	display.ReadinessSummary(out, summary)

	if historyLimit > 0 {
		hist, err := ws.openHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		events, err := hist.Recent(historyLimit)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nRecent events:\n")
		if len(events) == 0 {
			fmt.Fprintln(out, "  (none)")
		}
		for _, ev := range events {
			fmt.Fprintf(out, "  %s  %-10s %s\n", ev.Timestamp.Local().Format("2006-01-02 15:04:05"), ev.Kind, ev.Summary)
		}
	}

	return nil
}
