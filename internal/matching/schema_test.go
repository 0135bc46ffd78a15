package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_Validate(t *testing.T) {
	s, err := CompileSchema(map[string]any{
		"type":     "object",
		"required": []string{"name"},
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"age":  map[string]any{"type": "integer", "minimum": 0},
		},
	})
	require.NoError(t, err)

	assert.Empty(t, s.Validate(map[string]any{"name": "ada", "age": float64(36)}))

	msgs := s.Validate(map[string]any{"age": float64(-1)})
	require.NotEmpty(t, msgs)
	joined := ""
	for _, m := range msgs {
		joined += m + "\n"
	}
	assert.Contains(t, joined, "name")
	assert.Contains(t, joined, "/age")
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema(map[string]any{"type": 12})
	assert.Error(t, err)
}
