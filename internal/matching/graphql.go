package matching

import (
	"encoding/json"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// GraphQLDocument summarizes a GraphQL-over-HTTP request body.
type GraphQLDocument struct {
	// Operations lists operation names in document order. Anonymous
	// operations appear as "".
	Operations []string
	// Selected is the operation the request asks to execute: the
	// operationName field, or the only operation in the document.
	Selected string
}

type graphQLBody struct {
	Query         string `json:"query"`
	OperationName string `json:"operationName"`
}

// ParseGraphQL decodes a JSON GraphQL request and parses its query.
func ParseGraphQL(body []byte) (*GraphQLDocument, error) {
	var req graphQLBody
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("invalid GraphQL request: %w", err)
	}
	if req.Query == "" {
		return nil, fmt.Errorf("invalid GraphQL request: missing query")
	}
	doc, err := parser.ParseQuery(&ast.Source{Input: req.Query})
	if err != nil {
		return nil, fmt.Errorf("invalid GraphQL query: %w", err)
	}

	out := &GraphQLDocument{Selected: req.OperationName}
	for _, op := range doc.Operations {
		out.Operations = append(out.Operations, op.Name)
	}
	if out.Selected == "" && len(out.Operations) == 1 {
		out.Selected = out.Operations[0]
	}
	return out, nil
}
