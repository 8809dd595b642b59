// Package parser 定义结构化输出解析服务的契约。
package parser

import (
	"context"
	"fmt"
)

// Result 一次解析的结果。
type Result struct {
	// JSON 解析得到的结构化值
	JSON any `json:"json,omitempty"`
	// Error 非空表示解析失败
	Error string `json:"error,omitempty"`
}

// Service 解析服务。
//
//go:generate  mockgen -destination ../../internal/mock/components/parser/Service_mock.go --package parser -source interface.go
type Service interface {
	// Parse 用 key 指定的解析器把文本解析为结构化值
	Parse(ctx context.Context, key, text string) (*Result, error)
}

// ParseError 解析失败。
type ParseError struct {
	Key    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parser %s failed: %s", e.Key, e.Reason)
}
