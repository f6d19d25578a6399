package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harrison/steward/internal/conflict"
	"github.com/harrison/steward/internal/display"
	"github.com/harrison/steward/internal/models"
)

// NewExecuteCommand creates and returns the execute subcommand
func NewExecuteCommand() *cobra.Command {
	var (
		done        int
		actor       string
		outputsFile string
	)

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Start the approved plan or confirm a task as done",
		Long: `With no flags, move the approved plan into progress and list its
tasks. With --done N, mark task N complete; completion always requires
an explicit confirmer via --by. When the last task is confirmed the
plan completes.

--outputs takes a YAML file of per-role consultation constraints
gathered during the finished phase; contradictions between them are
reported for escalation and recorded, never resolved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("done") {
				return runConfirmTask(cmd, done, actor, outputsFile)
			}
			return runStart(cmd, actor)
		},
		SilenceUsage: true,
	}

	cmd.Flags().IntVar(&done, "done", 0, "task number to confirm as complete")
	cmd.Flags().StringVar(&actor, "by", "", "who is confirming (required with --done)")
	cmd.Flags().StringVar(&outputsFile, "outputs", "", "YAML file of consultation outputs to scan for contradictions")

	return cmd
}

func runStart(cmd *cobra.Command, actor string) error {
	out := cmd.OutOrStdout()

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	plan, started, err := ws.planStore().Start()
	if err != nil {
		return err
	}

	if started {
		if actor == "" {
			actor = "user"
		}
		hist, err := ws.openHistory()
		if err != nil {
			return err
		}
		defer hist.Close()
		if err := hist.RecordTransition(plan.ID, models.StatusApproved, plan.Status, actor); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Plan %s is in progress.\n\n", plan.ID)
	printTasks(out, plan)
	fmt.Fprintln(out, "\nConfirm each task with 'steward execute --done N --by <who>'.")
	return nil
}

func runConfirmTask(cmd *cobra.Command, number int, actor, outputsFile string) error {
	out := cmd.OutOrStdout()

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	plan, err := ws.planStore().ConfirmTask(number, actor)
	if err != nil {
		return err
	}

	hist, err := ws.openHistory()
	if err != nil {
		return err
	}
	defer hist.Close()

	if outputsFile != "" {
		outputs, err := loadConsultationOutputs(outputsFile)
		if err != nil {
			return err
		}
		if conflicts := conflict.DetectFromOutputs(outputs); len(conflicts) > 0 {
			display.Conflicts(out, conflicts)
			if err := hist.RecordConflicts(plan.ID, conflicts); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(out, "Task %d confirmed by %s (%d/%d done).\n", number, actor, plan.DoneCount(), len(plan.Tasks))

	if plan.Status == models.StatusCompleted {
		if err := hist.RecordTransition(plan.ID, models.StatusInProgress, plan.Status, actor); err != nil {
			return err
		}
		fmt.Fprintln(out, "All tasks done; the plan is completed.")
		fmt.Fprintln(out, "Run 'steward check' then 'steward commit' to pass the gate.")
	}
	return nil
}

func loadConsultationOutputs(path string) ([]models.ConsultationOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read consultation outputs: %w", err)
	}
	var file struct {
		Outputs []models.ConsultationOutput `yaml:"outputs"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse consultation outputs: %w", err)
	}
	return file.Outputs, nil
}

func printTasks(out io.Writer, plan *models.Plan) {
	for _, task := range plan.Tasks {
		mark := " "
		if task.Done {
			mark = "x"
		}
		fmt.Fprintf(out, "  [%s] %d. %s (roles: %s)\n", mark, task.Number, task.Description, strings.Join(task.Roles, ", "))
	}
}
