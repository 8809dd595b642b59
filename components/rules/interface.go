// Package rules 定义规则引擎的契约，并提供基于 CEL 的参考实现。
package rules

import "context"

// Engine 规则引擎。
//
//go:generate  mockgen -destination ../../internal/mock/components/rules/Engine_mock.go --package rules -source interface.go
type Engine interface {
	// Run 用给定事实运行全部规则集，返回匹配的规则集 ID
	Run(ctx context.Context, facts map[string]any) ([]string, error)
}
