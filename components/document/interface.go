// Package document 定义索引构建使用的文档加载与转换契约，并提供本地文件加载器和段落切分器。
package document

import (
	"context"

	"github.com/favbox/promptflow/schema"
)

// Source 文档来源，URI 可以是本地路径或 file:// 地址。
type Source struct {
	URI string
}

// Loader 从来源加载文档。
type Loader interface {
	Load(ctx context.Context, src Source, opts ...LoaderOption) ([]*schema.Document, error)
}

// Transformer 转换文档，例如切分为分块、过滤、清洗。
type Transformer interface {
	Transform(ctx context.Context, docs []*schema.Document, opts ...TransformerOption) ([]*schema.Document, error)
}
