package enrichment_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/components/embedding"
	"github.com/favbox/promptflow/components/featurestore"
	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/vectorstore"
	"github.com/favbox/promptflow/enrichment"
	mockvectorstore "github.com/favbox/promptflow/internal/mock/components/vectorstore"
	"github.com/favbox/promptflow/prompt"
	"github.com/favbox/promptflow/schema"
)

type fakeEmbedder struct {
	mu    sync.Mutex
	calls [][]string
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, texts)
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2}
	}
	return out, nil
}

type sqlStub struct{}

func (sqlStub) Sample(_ context.Context, _ string, limit int) (any, error) {
	return []map[string]any{{"id": 1, "limit": limit}}, nil
}

func (sqlStub) Schema(_ context.Context, source string) (any, error) {
	return map[string]any{"table": source}, nil
}

func (sqlStub) DDL(_ context.Context, source string) (string, error) {
	return "CREATE TABLE " + source + " (id INT)", nil
}

func contextTemplate() *prompt.Template {
	return prompt.New([]schema.MessagesTemplate{
		schema.SystemMessage("{context}"),
		schema.UserMessage("{input}"),
	})
}

func TestSemanticSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mockvectorstore.NewMockService(ctrl)
	emb := &fakeEmbedder{}

	store.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *vectorstore.SearchRequest) ([]*schema.Document, error) {
			assert.Equal(t, "docs", req.IndexName)
			assert.Equal(t, "what is go", req.Query)
			assert.Equal(t, []float64{0.1, 0.2}, req.Vector)
			return []*schema.Document{
				(&schema.Document{ID: "low", Content: "low"}).WithScore(0.1),
				(&schema.Document{ID: "mid", Content: "mid"}).WithScore(0.6),
				(&schema.Document{ID: "top", Content: "top"}).WithScore(0.9),
				(&schema.Document{ID: "hi", Content: "hi"}).WithScore(0.7),
			}, nil
		})

	threshold := 0.5
	step := &enrichment.SemanticSearchStep{
		Store:          store,
		Embedder:       emb,
		IndexName:      "docs",
		TopK:           2,
		ScoreThreshold: &threshold,
		MetricType:     vectorstore.MetricSimilarity,
	}

	p := enrichment.NewPipeline(contextTemplate(), step)
	args := map[string]any{"input": "what is go"}
	out, err := p.Run(context.Background(), &enrichment.Input{Args: args})
	require.NoError(t, err)

	want := "*** top *** \nCitation: {\"id\":\"top\"}\n\n*** hi *** \nCitation: {\"id\":\"hi\"}"
	assert.Equal(t, want, out.Messages[0].Content)
	assert.Equal(t, "what is go", out.Messages[1].Content)
	assert.Equal(t, []map[string]any{{"id": "top", "score": 0.9}, {"id": "hi", "score": 0.7}},
		out.Metadata["SemanticSearch"].(map[string]any)["hits"])
	assert.Len(t, emb.calls, 1)

	// 调用方的参数不被修改
	_, ok := args["context"]
	assert.False(t, ok)
}

func TestSemanticSearchDistanceAndServerSide(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mockvectorstore.NewMockService(ctrl)

	store.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *vectorstore.SearchRequest) ([]*schema.Document, error) {
			assert.Nil(t, req.Vector)
			return []*schema.Document{
				(&schema.Document{ID: "far", Content: "far"}).WithScore(0.8),
				(&schema.Document{ID: "near", Content: "near"}).WithScore(0.2).
					WithCitation(map[string]any{"url": "https://example.com/near"}),
			}, nil
		})

	step := &enrichment.SemanticSearchStep{
		Store:               store,
		ServerSideEmbedding: true,
		MetricType:          vectorstore.MetricDistance,
		TopK:                1,
	}

	out, err := enrichment.NewPipeline(contextTemplate(), step).Run(context.Background(), &enrichment.Input{
		Args: map[string]any{"input": "q", "context": "earlier"},
	})
	require.NoError(t, err)
	assert.Equal(t, "earlier\n\n*** near *** \nCitation: {\"url\":\"https://example.com/near\"}", out.Messages[0].Content)
}

func TestIncompatibleContext(t *testing.T) {
	p := enrichment.NewPipeline(contextTemplate(), &enrichment.SQLStep{Service: sqlStub{}, Source: "orders", Mode: enrichment.SQLDDL})

	args := map[string]any{"input": "q", "context": 42}
	_, err := p.Run(context.Background(), &enrichment.Input{Args: args})
	require.Error(t, err)
	assert.True(t, errors.Is(err, function.ErrIncompatibleContext))

	var se *enrichment.StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "SQL", se.Step)
	assert.Len(t, se.IssueList(), 1)
	assert.Equal(t, 42, args["context"])
}

func TestSQLAndGraphSteps(t *testing.T) {
	graph := graphFunc(func(_ context.Context, store string) (any, error) {
		return map[string]any{"nodes": []string{"Person"}, "store": store}, nil
	})

	p := enrichment.NewPipeline(contextTemplate(),
		&enrichment.SQLStep{Service: sqlStub{}, Source: "orders", Mode: enrichment.SQLSchema},
		&enrichment.SQLStep{StepName: "ddl", Service: sqlStub{}, Source: "orders", Mode: enrichment.SQLDDL},
		&enrichment.GraphSchemaStep{Service: graph, Store: "kg"},
	)

	out, err := p.Run(context.Background(), &enrichment.Input{Args: map[string]any{"input": "q"}})
	require.NoError(t, err)
	assert.Equal(t,
		"{\"table\":\"orders\"}\n\nCREATE TABLE orders (id INT)\n\n{\"nodes\":[\"Person\"],\"store\":\"kg\"}",
		out.Messages[0].Content)
}

type graphFunc func(ctx context.Context, store string) (any, error)

func (f graphFunc) Schema(ctx context.Context, store string) (any, error) { return f(ctx, store) }

func TestFeatureAndFunctionSteps(t *testing.T) {
	features := &enrichment.FeatureStoreStep{
		Service:   featureStub{"name": "Ann", "tier": "gold"},
		EntityKey: "customer_id",
	}
	summarize := function.Lambda("summarize", func(_ context.Context, req *function.Request) (*function.Response, error) {
		return &function.Response{Value: req.Args["name"].(string) + " is " + req.Args["tier"].(string)}, nil
	})

	p := enrichment.NewPipeline(contextTemplate(), features, &enrichment.FunctionStep{Function: summarize})
	out, err := p.Run(context.Background(), &enrichment.Input{Args: map[string]any{"input": "q", "customer_id": 7}})
	require.NoError(t, err)
	assert.Equal(t, "Ann is gold", out.Messages[0].Content)
	assert.Equal(t, "gold", out.Args["tier"])
}

func TestPipelineErrors(t *testing.T) {
	t.Run("missing prompt", func(t *testing.T) {
		_, err := enrichment.NewPipeline(nil).Run(context.Background(), &enrichment.Input{})
		assert.True(t, errors.Is(err, function.ErrMissingPrompt))
	})

	t.Run("empty messages", func(t *testing.T) {
		_, err := enrichment.NewPipeline(prompt.New(nil)).Run(context.Background(), &enrichment.Input{})
		assert.True(t, errors.Is(err, function.ErrEmptyEnrichment))
	})

	t.Run("missing entity", func(t *testing.T) {
		p := enrichment.NewPipeline(contextTemplate(), &enrichment.FeatureStoreStep{Service: featureStub{}, EntityKey: "id"})
		_, err := p.Run(context.Background(), &enrichment.Input{Args: map[string]any{"input": "q"}})
		var se *enrichment.StepError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "FeatureStore", se.Step)
	})
}

func TestPipelineCallbacks(t *testing.T) {
	var (
		mu     sync.Mutex
		starts []components.Component
		errs   []string
	)
	handler := callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
			mu.Lock()
			defer mu.Unlock()
			starts = append(starts, info.Component)
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, _ error) context.Context {
			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, info.Name)
			return ctx
		}).Build()
	ctx := callbacks.InitCallbacks(context.Background(), nil, handler)

	p := enrichment.NewPipeline(contextTemplate(), &enrichment.SQLStep{Service: sqlStub{}, Source: "s"})
	_, err := p.Run(ctx, &enrichment.Input{Args: map[string]any{"input": "q"}})
	require.NoError(t, err)
	assert.Equal(t, []components.Component{
		components.ComponentOfPromptEnrichment,
		components.ComponentOfEnrichmentStep,
		components.ComponentOfPromptTemplate,
	}, starts)

	starts = nil
	_, err = p.Run(ctx, &enrichment.Input{Args: map[string]any{"input": "q", "context": []int{1}}})
	require.Error(t, err)
	assert.Equal(t, []string{"SQL", "PromptEnrichment"}, errs)
}

type featureStub map[string]any

func (f featureStub) OnlineFeatures(_ context.Context, req *featurestore.Request) (map[string]any, error) {
	if req.EntityID == nil {
		return nil, errors.New("no entity")
	}
	return f, nil
}
