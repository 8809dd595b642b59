// Package guardrail 定义内容安全扫描服务的契约。
package guardrail

import (
	"context"
	"fmt"
)

// ScanResult 一次扫描的结果。
type ScanResult struct {
	// Error 非空表示内容违规
	Error string `json:"error,omitempty"`
	// Text 扫描后改写的文本，为空表示保持原文
	Text string `json:"text,omitempty"`
}

// Service 内容安全扫描服务。
//
//go:generate  mockgen -destination ../../internal/mock/components/guardrail/Service_mock.go --package guardrail -source interface.go
type Service interface {
	// Scan 用 key 指定的护栏扫描文本
	Scan(ctx context.Context, key, text string) (*ScanResult, error)
}

// ViolationError 护栏判定违规。
type ViolationError struct {
	// Key 判定违规的护栏或规则集
	Key    string
	Reason string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("guardrail %s rejected content: %s", e.Key, e.Reason)
}
