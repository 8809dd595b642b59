package tool

import (
	"context"

	"github.com/favbox/promptflow/schema"
)

// Metadata 工具的注册信息。
type Metadata struct {
	// Key 工具在注册表中的标识
	Key string `json:"key"`
	// Name 暴露给模型的名称
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Service 工具服务。
//
// 组合的工具节点通过 Call 执行工具；智能体通过 ToolsList、ToolNames、AllMetadata 发现可用工具。
// keys 为空表示不过滤。
//
//go:generate  mockgen -destination ../../internal/mock/components/tool/Service_mock.go --package tool -source interface.go
type Service interface {
	// Call 按名称调用工具
	Call(ctx context.Context, name string, args map[string]any) (any, error)
	// ToolsList 返回可以提供给模型函数调用的工具描述
	ToolsList(ctx context.Context, keys []string) ([]*schema.ToolInfo, error)
	// ToolNames 返回工具名称
	ToolNames(ctx context.Context, keys []string) ([]string, error)
	// AllMetadata 返回工具的注册信息
	AllMetadata(ctx context.Context, keys []string) ([]*Metadata, error)
}
