package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stackaudit/stackaudit/internal/adapters/outbound/tui"
	"github.com/stackaudit/stackaudit/internal/application"
	"github.com/stackaudit/stackaudit/internal/domain"
	"github.com/stackaudit/stackaudit/internal/domain/policy"
)

// categorySpec describes one category subcommand. The positional args are
// explicit targets (container names, file paths or image refs depending on
// the category); without them targets are auto-discovered.
type categorySpec struct {
	use      string
	category string
	short    string
	argName  string
}

var categorySpecs = []categorySpec{
	{"security", policy.CategorySecurity, "Audit running containers for hardening flags and non-root users", "container"},
	{"caps", policy.CategoryCapabilities, "Audit Linux capability grants of running containers", "container"},
	{"multistage", policy.CategoryMultistage, "Audit Dockerfiles and images for multi-stage build hygiene", "dockerfile"},
	{"environment", policy.CategoryEnvironment, "Audit Dockerfiles, env files and containers for leaked secrets", "path"},
	{"orchestration", policy.CategoryOrchestration, "Audit the compose file for orchestration best practices", "composefile"},
	{"api", policy.CategoryAPI, "Probe the stack's HTTP endpoints for contract compliance", "ignored"},
}

func newCategoryCmds() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(categorySpecs))
	for _, spec := range categorySpecs {
		cmds = append(cmds, newCategoryCmd(spec))
	}
	return cmds
}

func newCategoryCmd(spec categorySpec) *cobra.Command {
	var (
		jsonOutput  bool
		projectPath string
		baseURL     string
	)

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s [%s...]", spec.use, spec.argName),
		Short: spec.short,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := buildDeps()
			defer d.cleanup()

			report, err := d.audit.RunCategory(cmd.Context(), spec.category, application.AuditRequest{
				ProjectPath: projectPath,
				Targets:     args,
				BaseURL:     baseURL,
			})
			if err != nil {
				return &exitError{code: domain.ExitHardFailure, msg: err.Error()}
			}
			report.CommitHash = d.stampCommit(projectPath)

			if err := printCategory(cmd, report, jsonOutput); err != nil {
				return err
			}
			if code := report.ExitCode(); code != domain.ExitOK {
				return &exitError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	cmd.Flags().StringVar(&projectPath, "path", ".", "Project root to audit")
	if spec.category == policy.CategoryAPI {
		cmd.Flags().StringVar(&baseURL, "base-url", "", "Override the configured API base URL")
	}
	return cmd
}

func printCategory(cmd *cobra.Command, report *domain.CategoryReport, jsonOutput bool) error {
	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	cmd.Print(tui.RenderCategory(report))
	return nil
}
