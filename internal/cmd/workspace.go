package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/steward/internal/classifier"
	"github.com/harrison/steward/internal/config"
	"github.com/harrison/steward/internal/history"
	"github.com/harrison/steward/internal/logger"
	"github.com/harrison/steward/internal/models"
	"github.com/harrison/steward/internal/readiness"
	"github.com/harrison/steward/internal/registry"
	"github.com/harrison/steward/internal/workflow"
)

// workspace bundles everything a subcommand needs: the resolved working
// directory, its configuration, and a console logger writing to stderr.
type workspace struct {
	dir string
	cfg *config.Config
	log *logger.Console
}

// openWorkspace resolves the --dir flag, loads configuration, and builds
// the logger. Configuration paths are workspace-relative.
func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &workspace{
		dir: dir,
		cfg: cfg,
		log: logger.New(cmd.ErrOrStderr(), cfg.LogLevel),
	}, nil
}

// path resolves a configured path against the workspace directory.
func (w *workspace) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(w.dir, p)
}

func (w *workspace) stateDir() string {
	return filepath.Join(w.dir, config.StateDir)
}

func (w *workspace) planStore() *workflow.Store {
	return workflow.NewStore(w.stateDir())
}

func (w *workspace) loadRegistry() (*registry.Registry, error) {
	return registry.LoadFile(w.path(w.cfg.RolesFile))
}

func (w *workspace) loadTable() (*classifier.Table, error) {
	return classifier.LoadFile(w.path(w.cfg.DomainsFile))
}

func (w *workspace) openHistory() (*history.Store, error) {
	return history.Open(w.path(w.cfg.HistoryDB))
}

// readinessInputs resolves configured file-check paths against the
// workspace directory.
func (w *workspace) readinessInputs() ([]readiness.ToolCheck, []readiness.FileCheck) {
	files := make([]readiness.FileCheck, 0, len(w.cfg.Files))
	for _, f := range w.cfg.Files {
		f.Path = w.path(f.Path)
		files = append(files, f)
	}
	return w.cfg.Tools, files
}

// catalogRoles flattens the registry for the structural conflict checks,
// which operate on plain role values.
func catalogRoles(reg *registry.Registry) []models.Role {
	ptrs := reg.Roles()
	roles := make([]models.Role, 0, len(ptrs))
	for _, r := range ptrs {
		roles = append(roles, *r)
	}
	return roles
}
