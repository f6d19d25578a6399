package cmd

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/steward/internal/config"
	"github.com/harrison/steward/internal/display"
	"github.com/harrison/steward/internal/readiness"
)

//go:embed seed/config.yaml
var seedConfig []byte

//go:embed seed/roles.yaml
var seedRoles []byte

//go:embed seed/domains.yaml
var seedDomains []byte

// NewInitCommand creates and returns the init subcommand
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the workspace and check environment readiness",
		Long: `Create the .steward state directory with a starter configuration,
role catalog, and domain table, then run the readiness battery against
the configured tools and files.

Existing files are never overwritten.

Exit code: 0 if ready, 1 on critical failure, 2 if passed with warnings`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cmd.Flags().GetString("dir")
			if err != nil {
				return err
			}
			return runInit(cmd, dir)
		},
		SilenceUsage: true,
	}

	return cmd
}

func runInit(cmd *cobra.Command, dir string) error {
	out := cmd.OutOrStdout()
	stateDir := filepath.Join(dir, config.StateDir)

	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	seeds := []struct {
		name string
		data []byte
	}{
		{"config.yaml", seedConfig},
		{"roles.yaml", seedRoles},
		{"domains.yaml", seedDomains},
	}
	for _, seed := range seeds {
		path := filepath.Join(stateDir, seed.name)
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(out, "  %s already exists, left unchanged\n", filepath.Join(config.StateDir, seed.name))
			continue
		}
		if err := os.WriteFile(path, seed.data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", seed.name, err)
		}
		fmt.Fprintf(out, "  created %s\n", filepath.Join(config.StateDir, seed.name))
	}

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}

	tools, files := ws.readinessInputs()
	summary := readiness.NewChecker().Run(cmd.Context(), tools, files)

	fmt.Fprintln(out)
	display.ReadinessSummary(out, summary)

	if code := summary.Class.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
