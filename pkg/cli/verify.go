package cli

import (
	"errors"
	"fmt"

	"github.com/getmockd/mockconnector/pkg/cli/internal/output"
	"github.com/getmockd/mockconnector/pkg/connector"
	"github.com/spf13/cobra"
)

// VerifyOutput is the JSON form of the verify command.
type VerifyOutput struct {
	Requests   []MatchOutput   `json:"requests"`
	Satisfied  bool            `json:"satisfied"`
	Violations []CallViolation `json:"violations,omitempty"`
}

// CallViolation is a case whose call count was not met.
type CallViolation struct {
	Case     int    `json:"case"`
	Name     string `json:"name,omitempty"`
	Expected string `json:"expected"`
	Calls    int    `json:"calls"`
}

func newVerifyCmd(a *app) *cobra.Command {
	var requestsPath string

	cmd := &cobra.Command{
		Use:   "verify <fixture>... --requests <file>",
		Short: "Replay a request script and verify call counts",
		Long: `Replay every request of a script against the connector built from the
fixtures, in order, then verify that each case was called the number of
times it expects.

The request script is YAML or JSON:

  requests:
    - method: POST
      uri: https://api.example.com/users
      json: {name: ada}
    - uri: https://api.example.com/users/1
      headers:
        Accept: application/json

The command exits with status 1 if any request matched no case or any
count was not met.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := loadRequests(requestsPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			conn, _, err := a.loadConnector(args)
			if err != nil {
				return err
			}

			out := VerifyOutput{Requests: make([]MatchOutput, 0, len(script.Requests))}
			unmatched := 0
			for i, spec := range script.Requests {
				req, err := spec.Build()
				if err != nil {
					return fmt.Errorf("requests[%d]: %w", i, err)
				}
				resp, err := conn.Dispatch(req)
				res := matchOutput(conn, resp, err)
				out.Requests = append(out.Requests, res)
				if err != nil {
					unmatched++
				}
				if !a.jsonOutput {
					printReplay(a, i, req.Method, req.URIString(), res, err)
				}
			}

			checkErr := conn.Checkpoint()
			var cpErr *connector.CheckpointError
			if errors.As(checkErr, &cpErr) {
				for _, v := range cpErr.Violations {
					out.Violations = append(out.Violations, CallViolation{
						Case:     v.Index,
						Name:     v.Label,
						Expected: v.Count.Expected(),
						Calls:    v.Calls,
					})
				}
			}
			out.Satisfied = checkErr == nil && unmatched == 0

			if a.jsonOutput {
				if err := output.JSON(a.stdout, out); err != nil {
					return err
				}
			} else if checkErr != nil {
				fmt.Fprintln(a.stdout)
				fmt.Fprintln(a.stdout, checkErr.Error())
			} else if unmatched == 0 {
				fmt.Fprintf(a.stdout, "All %d request(s) matched and every expectation was met.\n", len(script.Requests))
			}

			if !out.Satisfied {
				return reported(ErrUnverified)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&requestsPath, "requests", "r", "", "Request script to replay ('-' for stdin)")
	_ = cmd.MarkFlagRequired("requests")
	return cmd
}

func printReplay(a *app, i int, method, uri string, res MatchOutput, err error) {
	switch {
	case err == nil:
		fmt.Fprintf(a.stdout, "%d. %s %s -> case %d%s: %d\n", i+1, method, uri, res.Case, labelSuffix(res.Name), res.Status)
	case res.Matched:
		fmt.Fprintf(a.stdout, "%d. %s %s -> case %d%s failed: %s\n", i+1, method, uri, res.Case, labelSuffix(res.Name), err)
	default:
		fmt.Fprintf(a.stdout, "%d. %s %s -> no match\n", i+1, method, uri)
		fmt.Fprintln(a.stdout, err.Error())
	}
}
