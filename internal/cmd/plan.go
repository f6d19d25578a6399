package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/steward/internal/conflict"
	"github.com/harrison/steward/internal/display"
	"github.com/harrison/steward/internal/models"
	"github.com/harrison/steward/internal/resolver"
)

// NewPlanCommand creates and returns the plan subcommand
func NewPlanCommand() *cobra.Command {
	var confirmed []string

	cmd := &cobra.Command{
		Use:   "plan <request>...",
		Short: "Generate a change plan for a request",
		Long: `Classify the change request into domains, resolve the required
roles, sequence them into phases, and write a new plan awaiting
approval.

Roles that require confirmation are left out of the plan and reported
as pending obligations; re-run with --confirm <role> to include them.

A plan already in flight blocks generation; a completed plan is
archived first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, strings.Join(args, " "), confirmed)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringArrayVar(&confirmed, "confirm", nil, "confirm a role that requires explicit confirmation (repeatable)")

	return cmd
}

func runPlan(cmd *cobra.Command, request string, confirmedRoles []string) error {
	out := cmd.OutOrStdout()

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	reg, err := ws.loadRegistry()
	if err != nil {
		return err
	}
	table, err := ws.loadTable()
	if err != nil {
		return err
	}

	tags := table.Classify(request)
	overrides := table.MatchOverrides(request)

	if len(tags) == 0 && len(overrides) == 0 {
		ws.log.Warn("request matched no domain; only always-required roles apply")
	} else {
		labels := make([]string, 0, len(tags))
		for _, t := range tags {
			labels = append(labels, t.Tag)
		}
		ws.log.Debug("classified domains: %s", strings.Join(labels, ", "))
	}

	confirmed := make(map[string]bool, len(confirmedRoles))
	for _, name := range confirmedRoles {
		if !reg.Exists(name) {
			return fmt.Errorf("cannot confirm unknown role %q", name)
		}
		confirmed[name] = true
	}

	set, err := resolver.Resolve(reg, table, tags, overrides, confirmed)
	if err != nil {
		return err
	}
	groups := resolver.Sequence(set)

	conflicts := conflict.DetectStructural(catalogRoles(reg))
	if len(conflicts) > 0 {
		display.Conflicts(out, conflicts)
	}

	tasks := make([]models.PlanTask, 0, len(groups))
	for i, group := range groups {
		tasks = append(tasks, models.PlanTask{
			Number:      i + 1,
			Description: fmt.Sprintf("%s phase", group.Phase),
			Roles:       group.Roles,
		})
	}

	store := ws.planStore()
	plan, err := store.Generate(request, tasks)
	if err != nil {
		return err
	}

	hist, err := ws.openHistory()
	if err != nil {
		return err
	}
	defer hist.Close()
	if err := hist.RecordResolution(plan.ID, request, set); err != nil {
		return err
	}
	if len(conflicts) > 0 {
		if err := hist.RecordConflicts(plan.ID, conflicts); err != nil {
			return err
		}
	}

	display.Sequence(out, groups)

	for _, role := range set.PendingConfirmation {
		warning := display.Warning{
			Title:      fmt.Sprintf("Role %q requires confirmation", role),
			Message:    "It was left out of the plan and recorded as a pending obligation",
			Suggestion: fmt.Sprintf("Re-run with --confirm %s to include it", role),
		}
		warning.Display(out)
	}

	fmt.Fprintf(out, "\nPlan %s written to %s (status: %s)\n", plan.ID, store.PlanPath(), plan.Status)
	fmt.Fprintln(out, "Run 'steward approve' to approve it.")
	return nil
}
