package embedding

import (
	"context"
)

// Embedder 文本向量化服务。
//
// 语义检索在查询前用它生成查询向量，索引构建用它生成分块向量。
type Embedder interface {
	// EmbedStrings 返回与 texts 一一对应的向量
	EmbedStrings(ctx context.Context, texts []string, opts ...Option) ([][]float64, error)
}
