// Package readiness runs the stateless environment battery: pass/fail/
// warn probes over local tooling and configuration. Checks never mutate
// project files, and every external probe runs under a hard timeout so a
// hung tool degrades one check instead of stalling the run.
package readiness

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/harrison/steward/internal/models"
)

// DefaultProbeTimeout bounds each external probe.
const DefaultProbeTimeout = 10 * time.Second

// ToolCheck probes for an executable on PATH, optionally running it with
// the given args to confirm it answers (e.g. an authentication probe).
type ToolCheck struct {
	Name        string   `yaml:"name"`
	Args        []string `yaml:"args,omitempty"`
	Critical    bool     `yaml:"critical"`
	Remediation string   `yaml:"remediation,omitempty"`
}

// FileCheck probes for a configuration file the workflow depends on.
type FileCheck struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path"`
	Critical    bool   `yaml:"critical"`
	Remediation string `yaml:"remediation,omitempty"`
}

// Checker runs the battery. The lookup and exec seams exist for tests;
// zero values use the real PATH and process execution.
type Checker struct {
	Timeout time.Duration

	lookPath func(string) (string, error)
	runProbe func(ctx context.Context, name string, args ...string) error
	statFile func(string) (os.FileInfo, error)
}

// NewChecker creates a checker with the default probe timeout.
func NewChecker() *Checker {
	return &Checker{Timeout: DefaultProbeTimeout}
}

// Run executes every tool and file check independently and returns the
// aggregate summary. Given an unchanged environment, repeated runs yield
// identical results.
func (c *Checker) Run(ctx context.Context, tools []ToolCheck, files []FileCheck) models.ReadinessSummary {
	results := make([]models.ReadinessResult, 0, len(tools)+len(files))
	for _, tool := range tools {
		results = append(results, c.checkTool(ctx, tool))
	}
	for _, file := range files {
		results = append(results, c.checkFile(file))
	}
	return models.Classify(results)
}

func (c *Checker) checkTool(ctx context.Context, tool ToolCheck) models.ReadinessResult {
	result := models.ReadinessResult{
		Name:        tool.Name,
		Critical:    tool.Critical,
		Remediation: tool.Remediation,
	}

	lookPath := c.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(tool.Name)
	if err != nil {
		result.Detail = fmt.Sprintf("%s not found on PATH", tool.Name)
		if result.Remediation == "" {
			result.Remediation = fmt.Sprintf("install %s and ensure it is on PATH", tool.Name)
		}
		if tool.Critical {
			result.Severity = models.SeverityFail
		} else {
			result.Severity = models.SeverityWarn
		}
		return result
	}

	if len(tool.Args) == 0 {
		result.Severity = models.SeverityPass
		result.Detail = path
		return result
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	runProbe := c.runProbe
	if runProbe == nil {
		runProbe = func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		}
	}

	if err := runProbe(probeCtx, tool.Name, tool.Args...); err != nil {
		// The tool exists but the probe failed or timed out: degrade this
		// one check, never the whole run.
		detail := fmt.Sprintf("%s %s failed: %v", tool.Name, strings.Join(tool.Args, " "), err)
		if probeCtx.Err() == context.DeadlineExceeded {
			detail = fmt.Sprintf("%s %s timed out after %v", tool.Name, strings.Join(tool.Args, " "), timeout)
		}
		result.Detail = detail
		if tool.Critical {
			result.Severity = models.SeverityFail
		} else {
			result.Severity = models.SeverityWarn
		}
		return result
	}

	result.Severity = models.SeverityPass
	result.Detail = path
	return result
}

func (c *Checker) checkFile(file FileCheck) models.ReadinessResult {
	result := models.ReadinessResult{
		Name:        file.Name,
		Critical:    file.Critical,
		Remediation: file.Remediation,
	}

	statFile := c.statFile
	if statFile == nil {
		statFile = os.Stat
	}
	if _, err := statFile(file.Path); err != nil {
		result.Detail = fmt.Sprintf("%s missing", file.Path)
		if result.Remediation == "" {
			result.Remediation = fmt.Sprintf("create %s (steward init seeds defaults)", file.Path)
		}
		if file.Critical {
			result.Severity = models.SeverityFail
		} else {
			result.Severity = models.SeverityWarn
		}
		return result
	}

	result.Severity = models.SeverityPass
	result.Detail = file.Path
	return result
}
