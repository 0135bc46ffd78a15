package cli

import (
	"fmt"
	"strings"

	"github.com/getmockd/mockconnector/pkg/cli/internal/output"
	"github.com/getmockd/mockconnector/pkg/connector"
	"github.com/spf13/cobra"
)

// CaseSummary is the JSON form of one listed case.
type CaseSummary struct {
	Index      int      `json:"index"`
	Name       string   `json:"name,omitempty"`
	Count      string   `json:"count"`
	Predicates []string `json:"predicates"`
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <fixture>...",
		Short: "List the cases a set of fixtures registers",
		Example: `  # List cases as a table
  mockconnector list fixtures/users.yaml

  # List as JSON
  mockconnector list --json fixtures/users.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, _, err := a.loadConnector(args)
			if err != nil {
				return err
			}
			cases := conn.Cases()

			if a.jsonOutput {
				summaries := make([]CaseSummary, 0, len(cases))
				for _, c := range cases {
					summaries = append(summaries, CaseSummary{
						Index:      c.Index,
						Name:       c.Label,
						Count:      c.Count.String(),
						Predicates: c.Predicates,
					})
				}
				return output.JSON(a.stdout, summaries)
			}
			return outputCasesTable(a, cases)
		},
	}
}

func outputCasesTable(a *app, cases []connector.CaseState) error {
	w := output.Table(a.stdout)
	fmt.Fprintln(w, "INDEX\tNAME\tCOUNT\tPREDICATES")
	for _, c := range cases {
		name := c.Label
		if name == "" {
			name = "-"
		}
		preds := strings.Join(c.Predicates, "; ")
		if preds == "" {
			preds = "(any request)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.Index, name, c.Count, preds)
	}
	return w.Flush()
}
