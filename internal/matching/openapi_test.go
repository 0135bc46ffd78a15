package matching

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petsOpenAPI = `
openapi: 3.0.3
info:
  title: Pets
  version: "1.0"
servers:
  - url: https://api.example.com
paths:
  /pets:
    post:
      operationId: createPet
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
      responses:
        "201":
          description: created
  /pets/{id}:
    get:
      operationId: getPet
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: ok
`

func newPetRequest(t *testing.T, method, uri, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, uri, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestOpenAPIOperation_Check(t *testing.T) {
	doc, err := LoadOpenAPI([]byte(petsOpenAPI))
	require.NoError(t, err)
	assert.Equal(t, []string{"createPet", "getPet"}, OperationIDs(doc))

	create, err := NewOpenAPIOperation(doc, "createPet")
	require.NoError(t, err)
	assert.Equal(t, "createPet", create.OperationID())

	assert.NoError(t, create.Check(newPetRequest(t, http.MethodPost, "https://api.example.com/pets", `{"name":"rex"}`)))

	err = create.Check(newPetRequest(t, http.MethodPost, "https://api.example.com/pets", `{"age":3}`))
	assert.Error(t, err)

	err = create.Check(newPetRequest(t, http.MethodGet, "https://api.example.com/pets/7", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"getPet"`)

	get, err := NewOpenAPIOperation(doc, "getPet")
	require.NoError(t, err)
	assert.NoError(t, get.Check(newPetRequest(t, http.MethodGet, "https://api.example.com/pets/7", "")))
	assert.Error(t, get.Check(newPetRequest(t, http.MethodGet, "https://api.example.com/pets/abc", "")))
}

func TestOpenAPIOperation_Errors(t *testing.T) {
	doc, err := LoadOpenAPI([]byte(petsOpenAPI))
	require.NoError(t, err)

	_, err = NewOpenAPIOperation(doc, "deletePet")
	assert.Error(t, err)

	_, err = LoadOpenAPI([]byte("openapi: [broken"))
	assert.Error(t, err)
}
