package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/favbox/promptflow/schema"
)

func echoTool(name string) *LocalTool {
	return &LocalTool{
		Key:  "key-" + name,
		Info: &schema.ToolInfo{Name: name, Desc: name + " tool"},
		Run: func(ctx context.Context, args map[string]any) (any, error) {
			return args["q"], nil
		},
	}
}

func TestLocalService(t *testing.T) {
	ctx := context.Background()
	svc, err := NewLocalService(echoTool("search"), echoTool("calc"))
	require.NoError(t, err)

	t.Run("call", func(t *testing.T) {
		out, err := svc.Call(ctx, "search", map[string]any{"q": "go"})
		require.NoError(t, err)
		assert.Equal(t, "go", out)

		_, err = svc.Call(ctx, "missing", nil)
		assert.Error(t, err)
	})

	t.Run("discovery keeps registration order", func(t *testing.T) {
		names, err := svc.ToolNames(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"search", "calc"}, names)

		infos, err := svc.ToolsList(ctx, []string{"key-calc"})
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Equal(t, "calc", infos[0].Name)

		metas, err := svc.AllMetadata(ctx, []string{"key-search"})
		require.NoError(t, err)
		assert.Equal(t, &Metadata{Key: "key-search", Name: "search", Description: "search tool"}, metas[0])

		_, err = svc.ToolNames(ctx, []string{"nope"})
		assert.Error(t, err)
	})

	t.Run("duplicates rejected", func(t *testing.T) {
		_, err := NewLocalService(echoTool("a"), echoTool("a"))
		assert.Error(t, err)

		_, err = NewLocalService(&LocalTool{Info: &schema.ToolInfo{Name: "x"}})
		assert.Error(t, err)
	})
}
