package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/steward/internal/models"
)

// NewApproveCommand creates and returns the approve subcommand
func NewApproveCommand() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve the pending plan",
		Long: `Move the current plan from pending approval to approved. Only an
approved plan can be executed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApprove(cmd, actor)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&actor, "by", "user", "who is approving the plan")

	return cmd
}

func runApprove(cmd *cobra.Command, actor string) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	plan, err := ws.planStore().Approve()
	if err != nil {
		return err
	}

	hist, err := ws.openHistory()
	if err != nil {
		return err
	}
	defer hist.Close()
	if err := hist.RecordTransition(plan.ID, models.StatusPendingApproval, plan.Status, actor); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Plan %s approved. Run 'steward execute' to start it.\n", plan.ID)
	return nil
}
