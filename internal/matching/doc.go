// Package matching provides the comparison primitives behind connector
// predicates.
//
// Each helper answers one question about a request attribute and, where a
// report needs it, explains the disagreement:
//
//   - URI matching: exact URIs, doublestar globs and RE2 regular expressions
//   - Header matching: case-folded names with once, at-least-once and all modes
//   - Body matching: byte equality with line and character diff spans
//   - JSON matching: full equality, partial containment, JSONPath and JSON Schema
//   - Structured bodies: XPath over XML, GraphQL operation names, protobuf messages
//   - Auth and contracts: bearer token claims and OpenAPI operations
//   - Expressions: boolean expr-lang programs over a request environment
//
// Helpers in this package are pure. They never retain the values they are
// given and are safe for concurrent use.
package matching
