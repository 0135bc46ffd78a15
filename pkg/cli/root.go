package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/getmockd/mockconnector/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// app carries the streams and persistent flags shared by every command.
type app struct {
	stdout io.Writer
	stderr io.Writer

	logLevel    string
	logFormat   string
	reportLevel string
	jsonOutput  bool

	logger *slog.Logger
}

// NewRootCommand builds the mockconnector command tree writing to the given
// streams.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, logger: logging.Nop()}

	rootCmd := &cobra.Command{
		Use:   "mockconnector",
		Short: "mockconnector checks HTTP fixtures against a mock connector",
		Long: `mockconnector loads expectation fixtures (YAML or JSON), builds the same
connector tests use, and lets you validate, inspect and exercise them from
the command line.

Fixture arguments may be file paths or doublestar glob patterns such as
"fixtures/**/*.yaml".`,
		// No Run function here means 'mockconnector' with no args prints help.
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = logging.New(logging.Config{
				Level:  logging.ParseLevel(a.logLevel),
				Format: logging.ParseFormat(a.logFormat),
				Output: a.stderr,
			})
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "text", "Log format: text or json")
	flags.StringVar(&a.reportLevel, "report", "none", "Connector diagnostics to log: none, error, missing")
	flags.BoolVar(&a.jsonOutput, "json", false, "Output command results in JSON format")

	rootCmd.AddCommand(
		newValidateCmd(a),
		newListCmd(a),
		newMatchCmd(a),
		newVerifyCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand(stdout, stderr)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
