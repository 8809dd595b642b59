// Package function 定义语义函数的调用契约。
//
// 语义函数实现、组合的函数节点、提示词增强中的子函数调用、输出处理的规则集抽取、
// 以及智能体都通过 Function 接口互相调用。
package function

import (
	"context"

	"github.com/eino-contrib/jsonschema"

	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/schema"
)

// Request 一次语义函数调用。
type Request struct {
	// Args 调用参数
	Args map[string]any
	// Batch 批量调用的参数，非空时忽略 Args
	Batch []map[string]any
	// History 对话历史
	History []*schema.Message
	// ModelKey 非空时精确选择该 key 的实现
	ModelKey string
	// ModelParams 覆盖实现上的默认模型参数
	ModelParams model.Params
	// ReturnTypeSchema 非空时强制模型按该结构输出
	ReturnTypeSchema *jsonschema.Schema
	// Tools 提供给模型调用的工具
	Tools []*schema.ToolInfo
}

// IsBatch 是否为批量调用。
func (r *Request) IsBatch() bool {
	return len(r.Batch) > 0
}

// Response 语义函数的返回。
type Response struct {
	// Value 函数结果；批量调用时为 []any，与 Batch 一一对应
	Value any
	// Message 模型返回的原始消息，智能体从中读取工具调用；批量调用时为最后一个
	Message *schema.Message
	// Metadata 响应元信息，例如检索命中、所选实现、实验名
	Metadata map[string]any
	// Usage 本次调用累计的 token 用量
	Usage *schema.TokenUsage
}

// Function 可调用的语义函数。
//
// 实现必须可以被并发调用：调用级的状态，包括回调处理器，都只能存在于 ctx 和参数中。
type Function interface {
	// Name 函数名称，用于追踪和错误信息
	Name() string
	// Call 调用函数
	Call(ctx context.Context, req *Request) (*Response, error)
}

// Lambda 把普通函数包装为 Function。
//
//	echo := function.Lambda("echo", func(ctx context.Context, req *function.Request) (*function.Response, error) {
//		return &function.Response{Value: req.Args}, nil
//	})
func Lambda(name string, fn func(ctx context.Context, req *Request) (*Response, error)) Function {
	return &lambda{name: name, fn: fn}
}

type lambda struct {
	name string
	fn   func(ctx context.Context, req *Request) (*Response, error)
}

func (l *lambda) Name() string { return l.name }

func (l *lambda) Call(ctx context.Context, req *Request) (*Response, error) {
	return l.fn(ctx, req)
}

// AddUsage 累加 token 用量，两者都为空时返回 nil。
func AddUsage(a, b *schema.TokenUsage) *schema.TokenUsage {
	if a == nil && b == nil {
		return nil
	}
	out := &schema.TokenUsage{}
	for _, u := range []*schema.TokenUsage{a, b} {
		if u == nil {
			continue
		}
		out.PromptTokens += u.PromptTokens
		out.CompletionTokens += u.CompletionTokens
		out.TotalTokens += u.TotalTokens
	}
	return out
}
