package compose

import "context"

// IndexNodeConfig 索引类节点登记的配置。
type IndexNodeConfig struct {
	ID     string
	Type   NodeType
	Config map[string]any
}

// IndexRequest 一次索引构建或刷新，按节点类型分组。
type IndexRequest struct {
	Composition string
	// Args 本次组合调用的参数
	Args         map[string]any
	Sources      []IndexNodeConfig
	Indexes      []IndexNodeConfig
	Loaders      []IndexNodeConfig
	Extractors   []IndexNodeConfig
	Embeddings   []IndexNodeConfig
	VectorStores []IndexNodeConfig
	GraphStores  []IndexNodeConfig
}

// Triggered 数据源与索引成对出现，或加载、抽取、向量化、向量库四类节点齐全时需要构建索引。
func (r *IndexRequest) Triggered() bool {
	if len(r.Sources) > 0 && len(r.Indexes) > 0 {
		return true
	}
	return len(r.Loaders) > 0 && len(r.Extractors) > 0 && len(r.Embeddings) > 0 && len(r.VectorStores) > 0
}

func (r *IndexRequest) add(n *Node) {
	cfg := IndexNodeConfig{ID: n.ID, Type: n.Type, Config: n.Config}
	switch n.Type {
	case NodeSource:
		r.Sources = append(r.Sources, cfg)
	case NodeIndex:
		r.Indexes = append(r.Indexes, cfg)
	case NodeLoader:
		r.Loaders = append(r.Loaders, cfg)
	case NodeExtractor:
		r.Extractors = append(r.Extractors, cfg)
	case NodeEmbedding:
		r.Embeddings = append(r.Embeddings, cfg)
	case NodeVectorStore:
		r.VectorStores = append(r.VectorStores, cfg)
	case NodeGraphStore:
		r.GraphStores = append(r.GraphStores, cfg)
	}
}

// IndexResult 索引构建的结果。
type IndexResult struct {
	IndexName string         `json:"indexName,omitempty"`
	ChunkIDs  []string       `json:"chunkIds,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// IndexBuilder 构建或刷新索引。
type IndexBuilder interface {
	BuildIndex(ctx context.Context, req *IndexRequest) (*IndexResult, error)
}
