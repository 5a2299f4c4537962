package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stackaudit/stackaudit/internal/adapters/outbound/tui"
	"github.com/stackaudit/stackaudit/internal/application"
	"github.com/stackaudit/stackaudit/internal/domain"
)

func newAuditCmd() *cobra.Command {
	var (
		jsonOutput    bool
		projectPath   string
		baseURL       string
		stopOnFailure bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run every audit category and aggregate one global verdict",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := buildDeps()
			defer d.cleanup()

			suite, reports := d.suite.RunSuite(cmd.Context(), application.SuiteRequest{
				ProjectPath:   projectPath,
				BaseURL:       baseURL,
				StopOnFailure: stopOnFailure,
			})
			suite.CommitHash = d.stampCommit(projectPath)

			if jsonOutput {
				payload := struct {
					Suite   *domain.SuiteReport     `json:"suite"`
					Reports []domain.CategoryReport `json:"reports"`
				}{suite, reports}
				data, err := json.MarshalIndent(payload, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding report: %w", err)
				}
				cmd.Println(string(data))
			} else {
				for _, report := range reports {
					cmd.Print(tui.RenderCategory(&report))
				}
				cmd.Print(tui.RenderSuite(suite))
			}

			if !suite.Passed {
				failed := application.FailedCategories(suite)
				log.WithField("categories", strings.Join(failed, ",")).Debug("suite failed")
				return &exitError{code: domain.ExitCritical}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the suite report as JSON")
	cmd.Flags().StringVar(&projectPath, "path", ".", "Project root to audit")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Override the configured API base URL")
	cmd.Flags().BoolVar(&stopOnFailure, "stop-on-failure", false, "Stop after the first category that does not pass")
	return cmd
}
