package matching

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// LoadOpenAPI parses and validates an OpenAPI 3 document (JSON or YAML).
func LoadOpenAPI(data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return doc, nil
}

// OpenAPIOperation checks that a request routes to one operation of a
// document and satisfies its parameter and body definitions.
type OpenAPIOperation struct {
	operationID string
	router      routers.Router
}

// NewOpenAPIOperation binds an operation ID of doc.
func NewOpenAPIOperation(doc *openapi3.T, operationID string) (*OpenAPIOperation, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil OpenAPI document")
	}
	if !slices.Contains(OperationIDs(doc), operationID) {
		return nil, fmt.Errorf("operation %q not found in OpenAPI document", operationID)
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}
	return &OpenAPIOperation{operationID: operationID, router: router}, nil
}

// OperationID returns the bound operation ID.
func (o *OpenAPIOperation) OperationID() string {
	return o.operationID
}

// Check routes r and validates it against the operation. Security
// requirements are accepted as met.
func (o *OpenAPIOperation) Check(r *http.Request) error {
	route, pathParams, err := o.router.FindRoute(r)
	if err != nil {
		return fmt.Errorf("no matching route found: %w", err)
	}
	if route.Operation == nil || route.Operation.OperationID != o.operationID {
		got := ""
		if route.Operation != nil {
			got = route.Operation.OperationID
		}
		return fmt.Errorf("request routes to operation %q", got)
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	return openapi3filter.ValidateRequest(r.Context(), input)
}

// OperationIDs lists every operation ID in doc, sorted.
func OperationIDs(doc *openapi3.T) []string {
	var ids []string
	if doc == nil || doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		for _, op := range item.Operations() {
			if op.OperationID != "" {
				ids = append(ids, op.OperationID)
			}
		}
	}
	slices.Sort(ids)
	return ids
}
