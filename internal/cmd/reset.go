package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/steward/internal/models"
	"github.com/harrison/steward/internal/workflow"
)

// NewResetCommand creates and returns the reset subcommand
func NewResetCommand() *cobra.Command {
	var (
		force bool
		actor string
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the live plan",
		Long: `Move the live plan out of the way so a new one can be generated.
The discarded plan is kept under .steward/plans/ and the discard is
recorded in the audit history; nothing is deleted.

A plan that is already in progress needs --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd, force, actor)
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolVar(&force, "force", false, "discard even a plan that is in progress")
	cmd.Flags().StringVar(&actor, "by", "user", "who is discarding the plan")

	return cmd
}

func runReset(cmd *cobra.Command, force bool, actor string) error {
	out := cmd.OutOrStdout()

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	store := ws.planStore()
	plan, err := store.Load()
	if err != nil {
		return err
	}

	dest, err := store.Discard(force)
	if err != nil {
		if errors.Is(err, workflow.ErrPlanActive) {
			return fmt.Errorf("plan %s is in progress; pass --force to discard it", plan.ID)
		}
		return err
	}

	hist, err := ws.openHistory()
	if err != nil {
		return err
	}
	defer hist.Close()
	if err := hist.RecordTransition(plan.ID, plan.Status, models.StatusArchived, actor); err != nil {
		return err
	}

	fmt.Fprintf(out, "Plan %s discarded; kept at %s\n", plan.ID, dest)
	return nil
}
