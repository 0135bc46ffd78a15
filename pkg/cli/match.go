package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/getmockd/mockconnector/pkg/cli/internal/output"
	"github.com/getmockd/mockconnector/pkg/cli/internal/parse"
	"github.com/getmockd/mockconnector/pkg/connector"
	"github.com/getmockd/mockconnector/pkg/mock"
	"github.com/getmockd/mockconnector/pkg/requestlog"
	"github.com/spf13/cobra"
)

// MatchOutput is the JSON form of the match command.
type MatchOutput struct {
	Matched    bool                      `json:"matched"`
	Case       int                       `json:"case"`
	Name       string                    `json:"name,omitempty"`
	Status     int                       `json:"status,omitempty"`
	Headers    []requestlog.Header       `json:"headers,omitempty"`
	Body       string                    `json:"body,omitempty"`
	Error      string                    `json:"error,omitempty"`
	NearMisses []requestlog.NearMissInfo `json:"nearMisses,omitempty"`
}

func newMatchCmd(a *app) *cobra.Command {
	var (
		method   string
		uri      string
		headers  []string
		data     string
		dataFile string
	)

	cmd := &cobra.Command{
		Use:   "match <fixture>... --uri <uri>",
		Short: "Dispatch one request against fixtures and show the result",
		Long: `Dispatch one request against the connector built from the fixtures.

On a match the selected case's response is printed. Otherwise the command
prints the mismatch report for every case and exits with status 1.`,
		Example: `  # Which case answers a GET?
  mockconnector match fixtures/users.yaml --uri https://api.example.com/users/7

  # POST a JSON body with a header
  mockconnector match fixtures/users.yaml -X POST --uri https://api.example.com/users \
    -H 'Content-Type: application/json' -d '{"name":"ada"}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hdr, err := parse.Headers(headers)
			if err != nil {
				return err
			}
			body := []byte(data)
			if dataFile != "" {
				if data != "" {
					return errors.New("--data and --data-file are mutually exclusive")
				}
				if dataFile == "-" {
					body, err = io.ReadAll(cmd.InOrStdin())
				} else {
					body, err = os.ReadFile(dataFile)
				}
				if err != nil {
					return fmt.Errorf("reading request body: %w", err)
				}
			}
			req, err := mock.NewRequest(method, uri, body, hdr...)
			if err != nil {
				return err
			}

			conn, _, err := a.loadConnector(args)
			if err != nil {
				return err
			}
			resp, err := conn.Dispatch(req)
			out := matchOutput(conn, resp, err)

			if a.jsonOutput {
				if jerr := output.JSON(a.stdout, out); jerr != nil {
					return jerr
				}
			} else {
				printMatch(a, out, resp, err)
			}

			switch {
			case errors.Is(err, connector.ErrNoMatch):
				return reported(ErrNoMatch)
			case err != nil:
				return reported(err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&method, "method", "X", http.MethodGet, "Request method")
	f.StringVar(&uri, "uri", "", "Absolute request URI")
	f.StringArrayVarP(&headers, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	f.StringVarP(&data, "data", "d", "", "Request body")
	f.StringVar(&dataFile, "data-file", "", "Read the request body from a file ('-' for stdin)")
	_ = cmd.MarkFlagRequired("uri")
	return cmd
}

func matchOutput(conn *connector.Connector, resp *mock.Response, err error) MatchOutput {
	out := MatchOutput{Case: -1}
	if entries := conn.Requests(nil); len(entries) > 0 {
		last := entries[len(entries)-1]
		out.Case = last.MatchedCase
		out.Name = last.MatchedLabel
		out.Matched = last.Matched()
		out.NearMisses = last.NearMisses
	}
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Status = resp.StatusCode()
	for _, h := range resp.Header {
		out.Headers = append(out.Headers, requestlog.Header{Name: h.Name, Value: h.Value})
	}
	out.Body = string(resp.Body)
	return out
}

func printMatch(a *app, out MatchOutput, resp *mock.Response, err error) {
	if err != nil {
		if out.Matched {
			fmt.Fprintf(a.stdout, "Matched case %d%s but it failed:\n", out.Case, labelSuffix(out.Name))
		}
		fmt.Fprintln(a.stdout, err.Error())
		return
	}
	fmt.Fprintf(a.stdout, "Matched case %d%s\n", out.Case, labelSuffix(out.Name))
	fmt.Fprintf(a.stdout, "HTTP %d %s\n", out.Status, http.StatusText(out.Status))
	for _, h := range resp.Header {
		fmt.Fprintf(a.stdout, "%s: %s\n", h.Name, h.Value)
	}
	if len(resp.Body) > 0 {
		fmt.Fprintln(a.stdout)
		fmt.Fprintln(a.stdout, string(resp.Body))
	}
}

func labelSuffix(label string) string {
	if label == "" {
		return ""
	}
	return " (" + label + ")"
}
