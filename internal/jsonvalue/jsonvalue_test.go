package jsonvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	type user struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	v, err := Normalize(map[string]any{"u": user{Name: "Ann", Age: 3}, "tags": []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"u":    map[string]any{"name": "Ann", "age": float64(3)},
		"tags": []any{"a"},
	}, v)

	m, err := NormalizeMap(nil)
	require.NoError(t, err)
	assert.Empty(t, m)

	_, err = NormalizeMap([]int{1})
	assert.Error(t, err)
}

func TestCopy(t *testing.T) {
	src := map[string]any{"a": map[string]any{"b": []any{"x"}}}
	dst := Copy(src)
	dst["a"].(map[string]any)["b"] = "changed"
	assert.Equal(t, []any{"x"}, src["a"].(map[string]any)["b"])
}

func TestGetSet(t *testing.T) {
	m := map[string]any{}
	require.NoError(t, Set(m, "a.b.c", 1))
	v, ok := Get(m, "a.b.c")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = Get(m, "a.x")
	assert.False(t, ok)

	whole, ok := Get(m, "")
	assert.True(t, ok)
	assert.Equal(t, m, whole)

	err := Set(m, "a.b.c.d", 2)
	assert.Error(t, err)
}
