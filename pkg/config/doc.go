// Package config loads expectation fixtures for mockconnector.
//
// A fixture file lists cases in the order they are registered. Each case
// has match criteria, an optional call count and a response:
//
//	cases:
//	  - name: get-test
//	    times: 1
//	    match:
//	      method: GET
//	      uri: https://example.com/test
//	    response:
//	      status: 200
//	      body: OK
//
// Files ending in .yaml or .yml are parsed as YAML, everything else as JSON:
//
//	file, err := config.LoadFile("fixtures/users.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	b := connector.NewBuilder()
//	if err := file.Apply(b); err != nil {
//	    log.Fatal(err)
//	}
//	conn, err := b.Build()
//
// Match criteria map one to one onto the connector's predicates. Map-valued
// criteria (headers, query, jsonPath, xpath) are applied in key order so a
// fixture always produces the same case. OpenAPI documents and .proto
// sources named by a case are resolved against the fixture's directory.
package config
