package matching

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON Schema (draft 2020-12 unless the document
// declares otherwise).
type Schema struct {
	source any
	schema *jsonschema.Schema
}

// CompileSchema compiles a schema given as a Go value or raw JSON.
func CompileSchema(schema any) (*Schema, error) {
	source, err := Canonical(schema)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	schemaBytes, err := json.Marshal(source)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", strings.NewReader(string(schemaBytes))); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Schema{source: source, schema: compiled}, nil
}

// Source returns the canonical schema document.
func (s *Schema) Source() any {
	return s.source
}

// Validate checks a decoded document and returns one message per leaf
// violation, each prefixed with the offending instance location.
func (s *Schema) Validate(doc any) []string {
	err := s.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}
	var out []string
	collectSchemaErrors(verr, &out)
	return out
}

func collectSchemaErrors(err *jsonschema.ValidationError, out *[]string) {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, loc+": "+err.Message)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, out)
	}
}
