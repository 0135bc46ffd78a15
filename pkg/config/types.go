package config

// File is a parsed fixture file.
type File struct {
	// Version is informational.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Cases are registered in order.
	Cases []*Case `json:"cases" yaml:"cases" validate:"required,min=1,dive,required"`

	// path is where the file was loaded from; relative references such as
	// OpenAPI documents are resolved against its directory.
	path string
}

// Path returns the file the fixture was loaded from, or "" when it was
// parsed from memory.
func (f *File) Path() string {
	return f.path
}

// Case is one expectation.
type Case struct {
	// Name is the label shown in reports.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Times requires exactly this many calls. Mutually exclusive with
	// AtLeast. Both unset means any number of calls.
	Times *int `json:"times,omitempty" yaml:"times,omitempty" validate:"omitempty,min=0"`

	// AtLeast requires this many calls or more.
	AtLeast *int `json:"atLeast,omitempty" yaml:"atLeast,omitempty" validate:"omitempty,min=0"`

	Match    Match     `json:"match" yaml:"match"`
	Response *Response `json:"response" yaml:"response" validate:"required"`
}

// Match holds the match criteria of a case. Every criterion that is set
// must hold.
type Match struct {
	Method   string `json:"method,omitempty" yaml:"method,omitempty"`
	URI      string `json:"uri,omitempty" yaml:"uri,omitempty"`
	URIGlob  string `json:"uriGlob,omitempty" yaml:"uriGlob,omitempty"`
	URIRegex string `json:"uriRegex,omitempty" yaml:"uriRegex,omitempty"`

	Query          map[string]string   `json:"query,omitempty" yaml:"query,omitempty"`
	Headers        map[string]string   `json:"headers,omitempty" yaml:"headers,omitempty"`
	HeadersOnce    map[string]string   `json:"headersOnce,omitempty" yaml:"headersOnce,omitempty"`
	HeadersAll     map[string][]string `json:"headersAll,omitempty" yaml:"headersAll,omitempty" validate:"omitempty,dive,min=1"`
	HeadersPresent []string            `json:"headersPresent,omitempty" yaml:"headersPresent,omitempty"`

	// Body matches the raw body exactly.
	Body *string `json:"body,omitempty" yaml:"body,omitempty"`

	// JSON and JSONPartial compare the body as JSON.
	JSON        any `json:"json,omitempty" yaml:"json,omitempty"`
	JSONPartial any `json:"jsonPartial,omitempty" yaml:"jsonPartial,omitempty"`

	// JSONPath maps JSONPath expressions to expected values. A null value
	// only checks that the path exists.
	JSONPath   map[string]any `json:"jsonPath,omitempty" yaml:"jsonPath,omitempty"`
	JSONSchema any            `json:"jsonSchema,omitempty" yaml:"jsonSchema,omitempty"`

	// XPath maps XPath expressions to expected text.
	XPath map[string]string `json:"xpath,omitempty" yaml:"xpath,omitempty"`

	GraphQLOperation string         `json:"graphqlOperation,omitempty" yaml:"graphqlOperation,omitempty"`
	BearerClaims     map[string]any `json:"bearerClaims,omitempty" yaml:"bearerClaims,omitempty"`
	Expr             string         `json:"expr,omitempty" yaml:"expr,omitempty"`
	OpenAPI          *OpenAPIMatch  `json:"openapi,omitempty" yaml:"openapi,omitempty"`
	Proto            *ProtoMatch    `json:"proto,omitempty" yaml:"proto,omitempty"`
}

// OpenAPIMatch requires the request to be a valid call of an operation.
type OpenAPIMatch struct {
	// Spec is the path of the OpenAPI document, relative to the fixture.
	Spec      string `json:"spec" yaml:"spec" validate:"required"`
	Operation string `json:"operation" yaml:"operation" validate:"required"`
}

// ProtoMatch compares a binary protobuf body with a message of a type
// declared in a .proto source file.
type ProtoMatch struct {
	// File is the .proto path, relative to the fixture. Imports resolve
	// against the same directory.
	File    string `json:"file" yaml:"file" validate:"required"`
	Message string `json:"message" yaml:"message" validate:"required"`

	// Value is the expected message in its protojson form.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`
}

// Response is the response returned by a case.
type Response struct {
	// Status defaults to 200.
	Status  int               `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,min=100,max=599"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Body is sent as is; JSON is encoded and sets Content-Type.
	Body string `json:"body,omitempty" yaml:"body,omitempty" validate:"excluded_with=JSON"`
	JSON any    `json:"json,omitempty" yaml:"json,omitempty"`
}
