package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"github.com/getkin/kin-openapi/openapi3"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/getmockd/mockconnector/internal/matching"
	"github.com/getmockd/mockconnector/pkg/connector"
	"github.com/getmockd/mockconnector/pkg/mock"
)

// Apply registers every case of the file on b, in file order. It returns
// the errors of all cases that could not be registered, joined.
func (f *File) Apply(b *connector.Builder) error {
	res := &resources{
		docs:   map[string]*openapi3.T{},
		protos: map[string]protoreflect.MessageDescriptor{},
	}
	var errs []error
	for i, c := range f.Cases {
		if err := f.applyCase(b, c, res); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", caseName(i, c), err))
		}
	}
	return errors.Join(errs...)
}

// Apply registers the cases of every file, in order.
func Apply(b *connector.Builder, files ...*File) error {
	var errs []error
	for _, f := range files {
		if err := f.Apply(b); err != nil {
			if f.path != "" {
				err = fmt.Errorf("%s: %w", f.path, err)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// resources caches documents referenced by a file's cases for one Apply.
type resources struct {
	docs   map[string]*openapi3.T
	protos map[string]protoreflect.MessageDescriptor
}

func caseName(i int, c *Case) string {
	if c != nil && c.Name != "" {
		return fmt.Sprintf("cases[%d] (%s)", i, c.Name)
	}
	return fmt.Sprintf("cases[%d]", i)
}

func (f *File) applyCase(b *connector.Builder, c *Case, res *resources) error {
	if c == nil || c.Response == nil {
		return ErrInvalidCase
	}
	preds, err := f.predicates(&c.Match, res)
	if err != nil {
		return err
	}
	resp, err := c.Response.build()
	if err != nil {
		return err
	}

	cb := b.Expect().Named(c.Name).With(preds...)
	switch {
	case c.Times != nil:
		cb.Times(*c.Times)
	case c.AtLeast != nil:
		cb.AtLeast(*c.AtLeast)
	}
	_, err = cb.Returning(resp).Register()
	return err
}

func (f *File) predicates(m *Match, res *resources) ([]mock.Predicate, error) {
	var preds []mock.Predicate

	if m.Method != "" {
		preds = append(preds, mock.MethodEquals(m.Method))
	}
	if m.URI != "" {
		preds = append(preds, mock.URIEquals(m.URI))
	}
	if m.URIGlob != "" {
		preds = append(preds, mock.URIMatches(m.URIGlob))
	}
	if m.URIRegex != "" {
		preds = append(preds, mock.URIRegex(m.URIRegex))
	}
	for _, k := range slices.Sorted(maps.Keys(m.Query)) {
		preds = append(preds, mock.QueryEquals(k, m.Query[k]))
	}
	for _, k := range slices.Sorted(maps.Keys(m.Headers)) {
		preds = append(preds, mock.HeaderEquals(k, m.Headers[k]))
	}
	for _, k := range slices.Sorted(maps.Keys(m.HeadersOnce)) {
		preds = append(preds, mock.HeaderOnce(k, m.HeadersOnce[k]))
	}
	for _, k := range slices.Sorted(maps.Keys(m.HeadersAll)) {
		preds = append(preds, mock.HeaderAll(k, m.HeadersAll[k]...))
	}
	for _, name := range m.HeadersPresent {
		preds = append(preds, mock.HeaderPresent(name))
	}
	if m.Body != nil {
		preds = append(preds, mock.BodyString(*m.Body))
	}
	if m.JSON != nil {
		preds = append(preds, mock.JSONEquals(m.JSON))
	}
	if m.JSONPartial != nil {
		preds = append(preds, mock.JSONPartial(m.JSONPartial))
	}
	for _, k := range slices.Sorted(maps.Keys(m.JSONPath)) {
		preds = append(preds, mock.JSONPath(k, m.JSONPath[k]))
	}
	if m.JSONSchema != nil {
		preds = append(preds, mock.JSONSchema(m.JSONSchema))
	}
	for _, k := range slices.Sorted(maps.Keys(m.XPath)) {
		preds = append(preds, mock.XPath(k, m.XPath[k]))
	}
	if m.GraphQLOperation != "" {
		preds = append(preds, mock.GraphQLOperation(m.GraphQLOperation))
	}
	if len(m.BearerClaims) > 0 {
		preds = append(preds, mock.BearerClaims(m.BearerClaims))
	}
	if m.Expr != "" {
		preds = append(preds, mock.Expr(m.Expr))
	}
	if m.OpenAPI != nil {
		doc, err := f.openAPIDoc(m.OpenAPI.Spec, res.docs)
		if err != nil {
			return nil, err
		}
		preds = append(preds, mock.OpenAPIOperation(doc, m.OpenAPI.Operation))
	}
	if m.Proto != nil {
		msg, err := f.protoMessage(m.Proto, res.protos)
		if err != nil {
			return nil, err
		}
		preds = append(preds, mock.ProtoEquals(msg))
	}
	return preds, nil
}

// resolve makes a relative path relative to the fixture's directory.
func (f *File) resolve(path string) string {
	if !filepath.IsAbs(path) && f.path != "" {
		return filepath.Join(filepath.Dir(f.path), path)
	}
	return path
}

// protoMessage compiles the referenced .proto file once per Apply call and
// builds the expected message from its JSON value.
func (f *File) protoMessage(pm *ProtoMatch, protos map[string]protoreflect.MessageDescriptor) (proto.Message, error) {
	path := f.resolve(pm.File)
	key := path + "#" + pm.Message
	md, ok := protos[key]
	if !ok {
		dir, name := filepath.Split(path)
		if dir == "" {
			dir = "."
		}
		var err error
		md, err = matching.CompileProtoMessage(context.Background(), name, []string{dir}, pm.Message)
		if err != nil {
			return nil, fmt.Errorf("proto: %w", err)
		}
		protos[key] = md
	}

	var value []byte
	if pm.Value != nil {
		b, err := json.Marshal(pm.Value)
		if err != nil {
			return nil, fmt.Errorf("proto value: %w", err)
		}
		value = b
	}
	msg, err := matching.NewProtoMessage(md, value)
	if err != nil {
		return nil, fmt.Errorf("proto: %w", err)
	}
	return msg, nil
}

// openAPIDoc loads an OpenAPI document once per Apply call. Relative paths
// are resolved against the fixture's directory.
func (f *File) openAPIDoc(spec string, docs map[string]*openapi3.T) (*openapi3.T, error) {
	path := f.resolve(spec)
	if doc, ok := docs[path]; ok {
		return doc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("openapi: %w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("openapi: %w", err)
	}
	doc, err := matching.LoadOpenAPI(data)
	if err != nil {
		return nil, fmt.Errorf("openapi %s: %w", path, err)
	}
	docs[path] = doc
	return doc, nil
}

func (r *Response) build() (*mock.Response, error) {
	resp := &mock.Response{Status: r.Status}
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	for _, k := range slices.Sorted(maps.Keys(r.Headers)) {
		resp.Header.Add(k, r.Headers[k])
	}

	if r.JSON != nil {
		body, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, fmt.Errorf("response json: %w", err)
		}
		resp.Body = body
		if !resp.Header.Has("Content-Type") {
			resp.Header.Add("Content-Type", "application/json")
		}
		return resp, nil
	}
	if r.Body != "" {
		resp.Body = []byte(r.Body)
	}
	return resp, nil
}
