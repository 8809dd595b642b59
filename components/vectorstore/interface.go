// Package vectorstore 定义向量库服务的契约。
package vectorstore

import (
	"context"

	"github.com/favbox/promptflow/schema"
)

// MetricType 检索得分的含义，决定命中结果的排序方向。
type MetricType string

const (
	// MetricDistance 距离类度量，越小越相近，升序排列
	MetricDistance MetricType = "distance"
	// MetricSimilarity 相似度类度量，越大越相近，降序排列
	MetricSimilarity MetricType = "similarity"
)

// SearchRequest 一次向量检索。
type SearchRequest struct {
	Provider  string
	IndexName string
	// Query 原始查询文本，服务端向量化的提供商只使用它
	Query string
	// Vector 查询向量，服务端向量化时为空
	Vector []float64
	// Attrs 需要返回的属性
	Attrs []string
	// LogicalType 索引中数据的逻辑类型，例如 "text"、"image"
	LogicalType string
	// Params 提供商相关的检索参数，例如 top_k、filter
	Params map[string]any
}

// IndexRequest 写入一批分块。
type IndexRequest struct {
	Provider  string
	IndexName string
	Chunks    []*schema.Document
}

// Service 向量库服务。
//
//go:generate  mockgen -destination ../../internal/mock/components/vectorstore/Service_mock.go --package vectorstore -source interface.go
type Service interface {
	// Search 检索，命中得分写在 Document.Score
	Search(ctx context.Context, req *SearchRequest) ([]*schema.Document, error)
	// IndexChunks 写入分块，返回分块 ID
	IndexChunks(ctx context.Context, req *IndexRequest) ([]string, error)
	// DeleteChunks 删除分块
	DeleteChunks(ctx context.Context, provider, indexName string, ids []string) error
}
