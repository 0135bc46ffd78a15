package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/mockconnector/pkg/mock"
)

// RequestSpec describes one request replayed by the verify command.
type RequestSpec struct {
	Method  string            `yaml:"method" json:"method,omitempty"`
	URI     string            `yaml:"uri" json:"uri" validate:"required"`
	Headers map[string]string `yaml:"headers" json:"headers,omitempty"`
	Body    string            `yaml:"body" json:"body,omitempty" validate:"excluded_with=JSON"`
	JSON    any               `yaml:"json" json:"json,omitempty"`
}

// RequestsFile is a replay script: requests dispatched in order.
type RequestsFile struct {
	Requests []*RequestSpec `yaml:"requests" json:"requests" validate:"required,min=1,dive,required"`
}

var requestsValidator = validator.New(validator.WithRequiredStructEnabled())

// loadRequests reads a replay script. YAML is a superset of JSON, so one
// decoder serves both.
func loadRequests(path string, stdin io.Reader) (*RequestsFile, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading requests: %w", err)
	}

	var rf RequestsFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("%s: invalid requests file: %w", path, err)
	}
	if err := requestsValidator.Struct(&rf); err != nil {
		return nil, fmt.Errorf("%s: invalid requests file: %w", path, err)
	}
	return &rf, nil
}

// Build converts the spec into a connector request. Headers are added in
// name order; a JSON body sets Content-Type unless a header already does.
func (s *RequestSpec) Build() (*mock.Request, error) {
	var fields []mock.HeaderField
	for _, name := range slices.Sorted(maps.Keys(s.Headers)) {
		fields = append(fields, mock.HeaderField{Name: name, Value: s.Headers[name]})
	}

	body := []byte(s.Body)
	if s.JSON != nil {
		b, err := json.Marshal(s.JSON)
		if err != nil {
			return nil, fmt.Errorf("encoding JSON body: %w", err)
		}
		body = b
		if !mock.Headers(fields).Has("Content-Type") {
			fields = append(fields, mock.HeaderField{Name: "Content-Type", Value: "application/json"})
		}
	}
	return mock.NewRequest(s.Method, s.URI, body, fields...)
}
