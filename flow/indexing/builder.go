// Package indexing 实现组合图触发的索引构建：加载、切分、向量化后写入向量库。
package indexing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/components/document"
	"github.com/favbox/promptflow/components/embedding"
	"github.com/favbox/promptflow/components/vectorstore"
	"github.com/favbox/promptflow/compose"
	"github.com/favbox/promptflow/logs"
	"github.com/favbox/promptflow/schema"
)

// 索引类节点配置中读取的键。
const (
	ConfigURI       = "uri"
	ConfigName      = "name"
	ConfigIndexName = "indexName"
	ConfigProvider  = "provider"
	ConfigModel     = "model"
)

var (
	// ErrNoSource 请求中的数据源与加载器节点都没有配置 uri
	ErrNoSource = errors.New("no source uri configured")
	// ErrNoIndexName 索引与向量库节点都没有配置索引名
	ErrNoIndexName = errors.New("no index name configured")
)

// Config 索引构建器的协作方。
type Config struct {
	Loader   document.Loader
	Splitter document.Transformer
	Embedder embedding.Embedder
	Store    vectorstore.Service
	// Provider 向量库提供商，节点配置中的 provider 优先
	Provider string
	// EmbeddingModel 向量模型，embedding 节点配置中的 model 优先
	EmbeddingModel string
}

// Builder 索引构建器，实现 compose.IndexBuilder。
type Builder struct {
	conf Config
}

var _ compose.IndexBuilder = (*Builder)(nil)

// NewBuilder 创建索引构建器，Loader 默认为本地文件加载器，Splitter 默认为段落切分器。
func NewBuilder(conf Config) (*Builder, error) {
	if conf.Embedder == nil {
		return nil, errors.New("index builder requires an embedder")
	}
	if conf.Store == nil {
		return nil, errors.New("index builder requires a vector store")
	}
	if conf.Loader == nil {
		conf.Loader = document.NewFileLoader(nil)
	}
	if conf.Splitter == nil {
		conf.Splitter = &document.TextSplitter{}
	}
	return &Builder{conf: conf}, nil
}

func (b *Builder) GetType() string {
	return "Indexing"
}

// BuildIndex 按请求加载全部来源，切分后整批向量化并写入向量库。
func (b *Builder) BuildIndex(ctx context.Context, req *compose.IndexRequest) (result *compose.IndexResult, err error) {
	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      req.Composition,
		Type:      b.GetType(),
		Component: components.ComponentOfIndexBuild,
	}, req)
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	uris := collect(ConfigURI, req.Sources, req.Loaders)
	if len(uris) == 0 {
		return nil, ErrNoSource
	}
	indexName := first(ConfigName, req.Indexes)
	if indexName == "" {
		indexName = first(ConfigIndexName, req.VectorStores)
	}
	if indexName == "" {
		return nil, ErrNoIndexName
	}
	provider := first(ConfigProvider, req.VectorStores, req.Indexes)
	if provider == "" {
		provider = b.conf.Provider
	}
	embedModel := first(ConfigModel, req.Embeddings)
	if embedModel == "" {
		embedModel = b.conf.EmbeddingModel
	}

	var docs []*schema.Document
	for _, uri := range uris {
		loaded, err := b.conf.Loader.Load(ctx, document.Source{URI: uri})
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", uri, err)
		}
		docs = append(docs, loaded...)
	}

	chunks, err := b.conf.Splitter.Transform(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("split documents: %w", err)
	}

	result = &compose.IndexResult{IndexName: indexName, Extra: map[string]any{
		"sources": len(uris),
		"chunks":  len(chunks),
	}}
	if len(chunks) == 0 {
		_ = callbacks.OnEnd(ctx, result)
		return result, nil
	}

	if err = b.embed(ctx, chunks, embedModel); err != nil {
		return nil, err
	}

	ids, err := b.conf.Store.IndexChunks(ctx, &vectorstore.IndexRequest{
		Provider:  provider,
		IndexName: indexName,
		Chunks:    chunks,
	})
	if err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}
	result.ChunkIDs = ids

	logs.L().Debug("index built",
		zap.String("composition", req.Composition),
		zap.String("index", indexName),
		zap.Int("chunks", len(chunks)))

	_ = callbacks.OnEnd(ctx, result)
	return result, nil
}

func (b *Builder) embed(ctx context.Context, chunks []*schema.Document, model string) (err error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      model,
		Type:      b.GetType(),
		Component: components.ComponentOfEmbedding,
	}, &embedding.CallbackInput{Texts: texts, Model: model})
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	var opts []embedding.Option
	if model != "" {
		opts = append(opts, embedding.WithModel(model))
	}
	vectors, err := b.conf.Embedder.EmbedStrings(ctx, texts, opts...)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i, c := range chunks {
		c.WithDenseVector(vectors[i])
	}

	_ = callbacks.OnEnd(ctx, &embedding.CallbackOutput{Embeddings: vectors, Model: model})
	return nil
}

func collect(key string, groups ...[]compose.IndexNodeConfig) []string {
	var out []string
	seen := map[string]bool{}
	for _, g := range groups {
		for _, n := range g {
			if v, _ := n.Config[key].(string); v != "" && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func first(key string, groups ...[]compose.IndexNodeConfig) string {
	for _, g := range groups {
		for _, n := range g {
			if v, _ := n.Config[key].(string); v != "" {
				return v
			}
		}
	}
	return ""
}
