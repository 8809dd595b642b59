package schema

import (
	"errors"
	"testing"

	"github.com/eino-contrib/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func textSchema() *jsonschema.Schema {
	props := orderedmap.New[string, *jsonschema.Schema]()
	props.Set("text", &jsonschema.Schema{Type: "string"})
	props.Set("count", &jsonschema.Schema{Type: "integer"})
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   []string{"text"},
	}
}

func TestValidateArgs(t *testing.T) {
	t.Run("nil schema", func(t *testing.T) {
		assert.NoError(t, ValidateArgs(nil, map[string]any{"x": 1}))
	})

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, ValidateArgs(textSchema(), map[string]any{"text": "hi", "count": 2}))
	})

	t.Run("missing required", func(t *testing.T) {
		err := ValidateArgs(textSchema(), map[string]any{})
		require.Error(t, err)

		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		require.NotEmpty(t, ve.Issues)
		assert.Contains(t, ve.Error(), "text")
	})

	t.Run("nil args validated as empty object", func(t *testing.T) {
		var ve *ValidationError
		assert.True(t, errors.As(ValidateArgs(textSchema(), nil), &ve))
	})

	t.Run("wrong type", func(t *testing.T) {
		err := ValidateArgs(textSchema(), map[string]any{"text": 1})
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
	})
}
