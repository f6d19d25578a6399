package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/steward/internal/gate"
	"github.com/harrison/steward/internal/models"
)

// NewCheckCommand creates and returns the check subcommand
func NewCheckCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the configured validation commands and record the report",
		Long: `Run each configured check command in the workspace directory and
write the aggregate outcome to the validation report the commit gate
reads. The report fails if any command fails.

Exit code: 0 if all checks pass, 1 otherwise`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, timeout)
		},
		SilenceUsage: true,
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "per-command timeout")

	return cmd
}

func runCheck(cmd *cobra.Command, timeout time.Duration) error {
	out := cmd.OutOrStdout()

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	if len(ws.cfg.CheckCommands) == 0 {
		return fmt.Errorf("no check_commands configured in %s/config.yaml", ws.stateDir())
	}

	report := &models.ValidationReport{
		GeneratedAt: time.Now().UTC(),
		Status:      models.ReportPass,
	}

	for _, command := range ws.cfg.CheckCommands {
		outcome := runOneCheck(cmd.Context(), ws.dir, command, timeout)
		report.Checks = append(report.Checks, outcome)
		if outcome.Status == models.ReportFail {
			report.Status = models.ReportFail
			fmt.Fprintf(out, "  ✗ %s\n", command)
			ws.log.Error("check failed: %s", outcome.Detail)
		} else {
			fmt.Fprintf(out, "  ✓ %s\n", command)
		}
	}

	if err := gate.SaveReport(ws.path(ws.cfg.ReportFile), report); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nValidation %s; report written to %s\n", report.Status, ws.path(ws.cfg.ReportFile))

	if report.Status == models.ReportFail {
		return &ExitError{Code: 1}
	}
	return nil
}

func runOneCheck(ctx context.Context, dir, command string, timeout time.Duration) models.CheckOutcome {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	probe := exec.CommandContext(ctx, "sh", "-c", command)
	probe.Dir = dir
	output, err := probe.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = err.Error()
		}
		return models.CheckOutcome{Name: command, Status: models.ReportFail, Detail: detail}
	}
	return models.CheckOutcome{Name: command, Status: models.ReportPass}
}
