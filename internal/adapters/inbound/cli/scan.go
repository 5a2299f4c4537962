package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/stackaudit/stackaudit/internal/application"
	"github.com/stackaudit/stackaudit/internal/domain"
)

func newScanCmd() *cobra.Command {
	var (
		jsonOutput   bool
		projectPath  string
		severity     string
		allowMissing bool
	)

	cmd := &cobra.Command{
		Use:   "scan [image...]",
		Short: "Scan project and base images for known vulnerabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := buildDeps()
			defer d.cleanup()

			report, err := d.scan.Run(cmd.Context(), application.ScanRequest{
				ProjectPath:  projectPath,
				Refs:         args,
				Severity:     severity,
				AllowMissing: allowMissing,
			})
			if errors.Is(err, application.ErrScanSkipped) {
				cmd.Println("Scanner unavailable, skipping vulnerability scan.")
				return nil
			}
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
	cmd.Flags().StringVar(&severity, "severity", "", "Severity filter passed to the scanner (default HIGH,CRITICAL)")
	cmd.Flags().BoolVar(&allowMissing, "allow-missing", false, "Exit successfully when the scanner binary is absent")
	return cmd
}
