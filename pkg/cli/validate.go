package cli

import (
	"fmt"
	"strings"

	"github.com/getmockd/mockconnector/pkg/cli/internal/output"
	"github.com/spf13/cobra"
)

// ValidateOutput is the JSON form of the validate command.
type ValidateOutput struct {
	Valid  bool     `json:"valid"`
	Files  []string `json:"files"`
	Cases  int      `json:"cases"`
	Errors []string `json:"errors,omitempty"`
}

func newValidateCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate <fixture>...",
		Short: "Validate fixture files without dispatching any request",
		Long: `Validate fixture files without dispatching any request.

This command checks:
  - YAML or JSON syntax
  - Schema validation (required fields, valid values)
  - Predicate construction (patterns, expressions, schemas)
  - Conflicting predicates within a case`,
		Example: `  # Validate a single fixture
  mockconnector validate fixtures/users.yaml

  # Validate every fixture below a directory
  mockconnector validate 'fixtures/**/*.yaml'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := loadFixtures(args)
			if err != nil {
				return err
			}

			out := ValidateOutput{Valid: true}
			for _, f := range files {
				out.Files = append(out.Files, f.Path())
				out.Cases += len(f.Cases)
			}
			if _, err := a.newConnector(files); err != nil {
				out.Valid = false
				out.Errors = strings.Split(err.Error(), "\n")
			}

			if a.jsonOutput {
				if err := output.JSON(a.stdout, out); err != nil {
					return err
				}
			} else {
				printValidation(a, out, verbose)
			}

			if !out.Valid {
				return reported(fmt.Errorf("validation failed with %d error(s)", len(out.Errors)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&verbose, "verbose", false, "List every validated file")
	return cmd
}

func printValidation(a *app, out ValidateOutput, verbose bool) {
	if verbose {
		for _, f := range out.Files {
			fmt.Fprintf(a.stdout, "Loaded %s\n", f)
		}
	}
	if !out.Valid {
		fmt.Fprintln(a.stdout, "Validation failed:")
		for _, e := range out.Errors {
			fmt.Fprintf(a.stdout, "  - %s\n", e)
		}
		return
	}
	fmt.Fprintf(a.stdout, "Fixtures are valid: %d case(s) in %d file(s).\n", out.Cases, len(out.Files))
}
