package enrichment

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/favbox/promptflow/components/embedding"
	"github.com/favbox/promptflow/components/reranker"
	"github.com/favbox/promptflow/components/vectorstore"
	"github.com/favbox/promptflow/internal/jsonvalue"
	"github.com/favbox/promptflow/schema"
)

// DefaultQueryPath 语义检索默认读取的查询参数。
const DefaultQueryPath = "input"

// SemanticSearchStep 语义检索：向量化查询、检索、过滤、排序、可选重排，
// 把命中的文本连同引用追加到上下文。
type SemanticSearchStep struct {
	StepName string

	Store    vectorstore.Service
	Embedder embedding.Embedder
	// EmbeddingModel 查询向量化使用的模型
	EmbeddingModel string
	// ServerSideEmbedding 由向量库提供商自行向量化，跳过本地向量化
	ServerSideEmbedding bool

	Provider    string
	IndexName   string
	Attrs       []string
	LogicalType string
	Params      map[string]any

	// QueryPath 查询文本所在的参数路径，默认 "input"
	QueryPath string
	// ContextPath 结果写入的参数路径，默认 "context"
	ContextPath string
	// TopK 最多保留的命中数，0 表示不限
	TopK int
	// ScoreThreshold 得分阈值，nil 表示不过滤
	ScoreThreshold *float64
	MetricType     vectorstore.MetricType

	Reranker   reranker.Reranker
	RerankTopN int
}

func (s *SemanticSearchStep) Name() string {
	if s.StepName != "" {
		return s.StepName
	}
	return s.Kind()
}

func (s *SemanticSearchStep) Kind() string {
	return "SemanticSearch"
}

func (s *SemanticSearchStep) Enrich(ctx context.Context, args map[string]any) (*StepOutput, error) {
	query, err := s.query(args)
	if err != nil {
		return nil, err
	}

	req := &vectorstore.SearchRequest{
		Provider:    s.Provider,
		IndexName:   s.IndexName,
		Query:       query,
		Attrs:       s.Attrs,
		LogicalType: s.LogicalType,
		Params:      s.Params,
	}
	if !s.ServerSideEmbedding {
		if s.Embedder == nil {
			return nil, fmt.Errorf("embedder is required unless server side embedding is enabled")
		}
		var opts []embedding.Option
		if s.EmbeddingModel != "" {
			opts = append(opts, embedding.WithModel(s.EmbeddingModel))
		}
		vectors, err := s.Embedder.EmbedStrings(ctx, []string{query}, opts...)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		if len(vectors) != 1 {
			return nil, fmt.Errorf("embed query: expected 1 vector, got %d", len(vectors))
		}
		req.Vector = vectors[0]
	}

	hits, err := s.Store.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.IndexName, err)
	}

	hits = s.rank(hits)

	if s.Reranker != nil && len(hits) > 0 {
		topN := s.RerankTopN
		if topN <= 0 {
			topN = len(hits)
		}
		hits, err = s.Reranker.Rerank(ctx, query, hits, topN)
		if err != nil {
			return nil, fmt.Errorf("rerank: %w", err)
		}
	}

	metadata := map[string]any{"hits": hitList(hits)}
	if len(hits) == 0 {
		return &StepOutput{Args: args, Metadata: metadata}, nil
	}

	text, err := formatHits(hits)
	if err != nil {
		return nil, err
	}
	if err = appendContext(s.Name(), args, s.ContextPath, text); err != nil {
		return nil, err
	}

	return &StepOutput{Args: args, Metadata: metadata}, nil
}

func (s *SemanticSearchStep) query(args map[string]any) (string, error) {
	path := s.QueryPath
	if path == "" {
		path = DefaultQueryPath
	}
	v, ok := jsonvalue.Get(args, path)
	if !ok || v == nil {
		return "", fmt.Errorf("missing query argument %q", path)
	}
	q, err := describe(v)
	if err != nil {
		return "", err
	}
	return q, nil
}

// rank 过滤阈值，按度量方向排序并截取 TopK。
func (s *SemanticSearchStep) rank(hits []*schema.Document) []*schema.Document {
	distance := s.MetricType == vectorstore.MetricDistance

	out := make([]*schema.Document, 0, len(hits))
	for _, h := range hits {
		if h == nil {
			continue
		}
		if s.ScoreThreshold != nil {
			if distance && h.Score() > *s.ScoreThreshold {
				continue
			}
			if !distance && h.Score() < *s.ScoreThreshold {
				continue
			}
		}
		out = append(out, h)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if distance {
			return out[i].Score() < out[j].Score()
		}
		return out[i].Score() > out[j].Score()
	})

	if s.TopK > 0 && len(out) > s.TopK {
		out = out[:s.TopK]
	}
	return out
}

// formatHits 每个命中格式化为 "*** 文本 *** \nCitation: {json}"，空行分隔。
func formatHits(hits []*schema.Document) (string, error) {
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		citation := h.Citation()
		if citation == nil {
			citation = map[string]any{"id": h.ID}
			if src := h.Source(); src != "" {
				citation["source"] = src
			}
		}
		c, err := sonic.ConfigStd.MarshalToString(citation)
		if err != nil {
			return "", fmt.Errorf("marshal citation of %s: %w", h.ID, err)
		}
		parts = append(parts, "*** "+h.Content+" *** \nCitation: "+c)
	}
	return strings.Join(parts, "\n\n"), nil
}

func hitList(hits []*schema.Document) []map[string]any {
	out := make([]map[string]any, 0, len(hits))
	for _, h := range hits {
		out = append(out, map[string]any{"id": h.ID, "score": h.Score()})
	}
	return out
}
