package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/compose"
)

const greetYAML = `
name: greet
nodes:
  - {id: req, type: request}
  - id: hello
    type: mapper
    mapper:
      fields:
        greeting: '"hi " + input.name'
  - id: upper
    type: function
    function: shout
    modelKey: gpt
  - {id: out, type: output}
edges:
  - {source: req, target: hello}
  - {source: hello, target: upper}
  - {source: upper, target: out}
`

func TestLoad(t *testing.T) {
	spec, err := Load(strings.NewReader(greetYAML))
	require.NoError(t, err)
	assert.Equal(t, "greet", spec.Name)
	require.Len(t, spec.Nodes, 4)
	assert.Equal(t, compose.NodeMapper, spec.Nodes[1].Type)
	assert.Equal(t, `"hi " + input.name`, spec.Nodes[1].Mapper.Fields["greeting"])
	assert.Equal(t, "gpt", spec.Nodes[2].ModelKey)
	assert.Equal(t, compose.Edge{Source: "req", Target: "hello"}, spec.Edges[0])

	_, err = Load(strings.NewReader("name: x\nnodes: []\nunknown: 1\n"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("name: a\n---\nname: b\n"))
	assert.ErrorContains(t, err, "multiple YAML documents")

	_, err = Load(strings.NewReader(""))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("nodes: []\n"))
	assert.ErrorContains(t, err, "name")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "greet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(greetYAML), 0o600))

	spec, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "greet", spec.Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuild(t *testing.T) {
	spec, err := Load(strings.NewReader(greetYAML))
	require.NoError(t, err)

	t.Run("registered function", func(t *testing.T) {
		shout := function.Lambda("shout", func(_ context.Context, req *function.Request) (*function.Response, error) {
			return &function.Response{Value: map[string]any{"text": strings.ToUpper(req.Args["greeting"].(string)), "key": req.ModelKey}}, nil
		})
		c, err := spec.Build(&Registry{Functions: map[string]function.Function{"shout": shout}})
		require.NoError(t, err)
		require.NoError(t, c.Validate())

		order, err := c.ResolutionOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"req", "hello", "upper", "out"}, order)

		out := c.Execute(context.Background(), map[string]any{"name": "Ann"})
		assert.Empty(t, out.Errors)
		assert.Equal(t, map[string]any{"text": "HI ANN", "key": "gpt"}, out.Response)
	})

	t.Run("missing function", func(t *testing.T) {
		_, err := spec.Build(nil)
		assert.ErrorIs(t, err, ErrNotRegistered)
	})

	t.Run("stubs fail at call time", func(t *testing.T) {
		c, err := spec.Build(&Registry{Stub: true})
		require.NoError(t, err)
		require.NoError(t, c.Validate())

		_, err = c.Call(context.Background(), &function.Request{Args: map[string]any{"name": "Ann"}})
		assert.True(t, errors.Is(err, ErrNotRegistered))
	})

	t.Run("bad mapper expression", func(t *testing.T) {
		bad, err := Load(strings.NewReader("name: bad\nnodes:\n  - id: m\n    type: mapper\n    mapper: {root: 'input.'}\n"))
		require.NoError(t, err)
		_, err = bad.Build(nil)
		assert.ErrorContains(t, err, "node m")
	})
}

func TestBuildSubComposition(t *testing.T) {
	inner, err := Load(strings.NewReader(`
name: inner
nodes:
  - {id: req, type: request}
  - id: m
    type: mapper
    mapper: {fields: {doubled: 'input.item * 2.0'}}
  - {id: out, type: output}
edges:
  - {source: req, target: m}
  - {source: m, target: out}
`))
	require.NoError(t, err)

	outer, err := Load(strings.NewReader(`
name: outer
nodes:
  - {id: req, type: request}
  - id: each
    type: loop
    loop: {iterable: items, aggregate: results}
  - {id: sub, type: composition, composition: inner}
  - {id: out, type: output}
edges:
  - {source: req, target: each}
  - {source: each, target: sub}
  - {source: sub, target: out}
`))
	require.NoError(t, err)

	reg := &Registry{}
	c, err := inner.Build(reg)
	require.NoError(t, err)
	reg.Register(c)

	oc, err := outer.Build(reg)
	require.NoError(t, err)

	out := oc.Execute(context.Background(), map[string]any{"items": []any{1, 2}})
	assert.Empty(t, out.Errors)
	assert.Equal(t, map[string]any{"results": []any{
		map[string]any{"doubled": float64(2)},
		map[string]any{"doubled": float64(4)},
	}}, out.Response)
}
