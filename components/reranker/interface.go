// Package reranker 定义重排序模型的契约。
package reranker

import (
	"context"

	"github.com/favbox/promptflow/schema"
)

// Reranker 按与 query 的相关性重新排序文档，返回前 topN 个，得分写在 Document.Score。
type Reranker interface {
	Rerank(ctx context.Context, query string, docs []*schema.Document, topN int) ([]*schema.Document, error)
}
