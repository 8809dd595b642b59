package indexing_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components/document"
	"github.com/favbox/promptflow/components/embedding"
	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/vectorstore"
	"github.com/favbox/promptflow/compose"
	"github.com/favbox/promptflow/flow/indexing"
	mockstore "github.com/favbox/promptflow/internal/mock/components/vectorstore"
)

type lengthEmbedder struct {
	model string
	err   error
}

func (e *lengthEmbedder) EmbedStrings(_ context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	if m := embedding.GetCommonOptions(nil, opts...).Model; m != nil {
		e.model = *m
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = []float64{float64(len(t))}
	}
	return out, nil
}

func writeDocs(t *testing.T) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha beta\n\ngamma delta epsilon"), 0o600))
	return path
}

func TestBuildIndexThroughComposition(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mockstore.NewMockService(ctrl)
	path := writeDocs(t)

	store.EXPECT().IndexChunks(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *vectorstore.IndexRequest) ([]string, error) {
			assert.Equal(t, "memory", req.Provider)
			assert.Equal(t, "guides", req.IndexName)
			require.Len(t, req.Chunks, 2)
			assert.Equal(t, "alpha beta", req.Chunks[0].Content)
			assert.Equal(t, []float64{10}, req.Chunks[0].DenseVector())
			assert.Equal(t, path, req.Chunks[1].Source())
			return []string{"c0", "c1"}, nil
		})

	emb := &lengthEmbedder{}
	b, err := indexing.NewBuilder(indexing.Config{
		Embedder:       emb,
		Store:          store,
		Splitter:       &document.TextSplitter{ChunkSize: 3},
		Provider:       "memory",
		EmbeddingModel: "small",
	})
	require.NoError(t, err)

	c, err := compose.New("ingest", []*compose.Node{
		{ID: "req", Type: compose.NodeRequest},
		{ID: "src", Type: compose.NodeSource, Config: map[string]any{"uri": path}},
		{ID: "idx", Type: compose.NodeIndex, Config: map[string]any{"name": "guides"}},
		{ID: "emb", Type: compose.NodeEmbedding, Config: map[string]any{"model": "large"}},
		{ID: "out", Type: compose.NodeOutput},
	}, []compose.Edge{
		{Source: "req", Target: "out"},
		{Source: "src", Target: "idx"},
		{Source: "emb", Target: "idx"},
		{Source: "idx", Target: "out"},
	}, compose.WithIndexBuilder(b))
	require.NoError(t, err)

	var started []string
	handler := callbacks.NewHandlerBuilder().OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
		started = append(started, string(info.Component))
		return ctx
	}).Build()
	ctx := callbacks.InitCallbacks(context.Background(), nil, handler)

	resp, err := c.Call(ctx, &function.Request{Args: map[string]any{"q": "x"}})
	require.NoError(t, err)

	res := resp.Metadata["index"].(*compose.IndexResult)
	assert.Equal(t, "guides", res.IndexName)
	assert.Equal(t, []string{"c0", "c1"}, res.ChunkIDs)
	assert.Equal(t, 2, res.Extra["chunks"])
	assert.Equal(t, "large", emb.model)
	assert.Contains(t, started, "IndexBuild")
	assert.Contains(t, started, "Loader")
	assert.Contains(t, started, "Transformer")
	assert.Contains(t, started, "Embedding")
}

func TestBuildIndexErrors(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := mockstore.NewMockService(ctrl)
	path := writeDocs(t)

	_, err := indexing.NewBuilder(indexing.Config{Store: store})
	assert.Error(t, err)
	_, err = indexing.NewBuilder(indexing.Config{Embedder: &lengthEmbedder{}})
	assert.Error(t, err)

	b, err := indexing.NewBuilder(indexing.Config{Embedder: &lengthEmbedder{}, Store: store})
	require.NoError(t, err)

	_, err = b.BuildIndex(ctx, &compose.IndexRequest{})
	assert.ErrorIs(t, err, indexing.ErrNoSource)

	_, err = b.BuildIndex(ctx, &compose.IndexRequest{
		Loaders: []compose.IndexNodeConfig{{ID: "l", Config: map[string]any{"uri": path}}},
	})
	assert.ErrorIs(t, err, indexing.ErrNoIndexName)

	_, err = b.BuildIndex(ctx, &compose.IndexRequest{
		Loaders:      []compose.IndexNodeConfig{{ID: "l", Config: map[string]any{"uri": filepath.Join(t.TempDir(), "none.txt")}}},
		VectorStores: []compose.IndexNodeConfig{{ID: "v", Config: map[string]any{"indexName": "n"}}},
	})
	assert.ErrorIs(t, err, os.ErrNotExist)

	boom := errors.New("embedder down")
	b, err = indexing.NewBuilder(indexing.Config{Embedder: &lengthEmbedder{err: boom}, Store: store})
	require.NoError(t, err)

	var errs []string
	handler := callbacks.NewHandlerBuilder().OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
		errs = append(errs, string(info.Component))
		return ctx
	}).Build()
	_, err = b.BuildIndex(callbacks.InitCallbacks(ctx, nil, handler), &compose.IndexRequest{
		Composition:  "ingest",
		Loaders:      []compose.IndexNodeConfig{{ID: "l", Config: map[string]any{"uri": path}}},
		VectorStores: []compose.IndexNodeConfig{{ID: "v", Config: map[string]any{"indexName": "n"}}},
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"Embedding", "IndexBuild"}, errs)
}

func TestBuildIndexSeveralSources(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mockstore.NewMockService(ctrl)

	dir := t.TempDir()
	first, second := filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(first, []byte("one two"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("three four"), 0o600))

	store.EXPECT().IndexChunks(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *vectorstore.IndexRequest) ([]string, error) {
			ids := make([]string, 0, len(req.Chunks))
			for _, c := range req.Chunks {
				ids = append(ids, c.ID)
			}
			return ids, nil
		}).Times(1)

	b, err := indexing.NewBuilder(indexing.Config{Embedder: &lengthEmbedder{}, Store: store})
	require.NoError(t, err)

	res, err := b.BuildIndex(context.Background(), &compose.IndexRequest{
		Sources: []compose.IndexNodeConfig{
			{ID: "s1", Config: map[string]any{"uri": first}},
			{ID: "s2", Config: map[string]any{"uri": "file://" + second}},
		},
		Indexes: []compose.IndexNodeConfig{{ID: "i", Config: map[string]any{"name": "docs"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{first + "#0", second + "#0"}, res.ChunkIDs)
}
