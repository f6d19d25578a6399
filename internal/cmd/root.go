// Package cmd wires the steward CLI surface: workspace initialization,
// plan generation, approval, execution, validation, and the commit gate.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for steward
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steward",
		Short: "Workflow governor for human-approved software changes",
		Long: `Steward governs a software-change workflow: it classifies a change
request into domains, resolves which roles must participate, sequences
them into phases, and walks the resulting plan through an explicit
approve/execute/commit lifecycle.

Every plan transition requires an explicit command; nothing advances on
its own. Validation results gate the commit step, and every gate
decision and override is recorded in the workspace audit history.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("dir", "C", ".", "workspace directory")

	// Add subcommands
	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewPlanCommand())
	cmd.AddCommand(NewApproveCommand())
	cmd.AddCommand(NewExecuteCommand())
	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewCommitCommand())
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewResetCommand())

	return cmd
}
