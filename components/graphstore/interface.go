// Package graphstore 定义知识图谱存储的契约。
package graphstore

import "context"

// Service 知识图谱服务。
type Service interface {
	// Schema 返回图的节点类型、关系类型及其属性
	Schema(ctx context.Context, store string) (any, error)
}
