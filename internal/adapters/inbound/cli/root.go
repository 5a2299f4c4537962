package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// log is shared by all outbound adapters. Debug level is enabled by the
// persistent --verbose flag; output goes to stderr so report output on stdout
// stays machine-consumable.
var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	return l
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "stackaudit",
		Short:         "Audit containers against Docker security best practices",
		Long:          "stackaudit inspects running containers, images, Dockerfiles, compose files and HTTP endpoints of a containerized stack and scores them against a fixed checklist of security and packaging best practices.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging of inspection calls")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAuditCmd())
	for _, c := range newCategoryCmds() {
		cmd.AddCommand(c)
	}
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// exitError carries a specific process exit code out of a command. The
// message may be empty when the report itself already told the story.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.msg != "" {
				fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			}
			return ee.code
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
