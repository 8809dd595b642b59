package model

import (
	"context"

	"github.com/favbox/promptflow/schema"
)

// ChatModel 模型服务。
//
// 实现必须可以被并发调用，调用级的状态只能通过参数和 ctx 传递。
//
//go:generate  mockgen -destination ../../internal/mock/components/model/ChatModel_mock.go --package model -source interface.go
type ChatModel interface {
	// CreateChatCompletion 发起一次对话补全
	CreateChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// Type 模型类型。
type Type string

const (
	// TypeChat 对话模型
	TypeChat Type = "chat"
	// TypeCompletion 补全模型
	TypeCompletion Type = "completion"
	// TypeEmbedding 向量模型，不能用于语义函数
	TypeEmbedding Type = "embedding"
)

// Info 模型的静态描述。
type Info struct {
	// Key 模型在实现列表中的标识，调用方通过 ModelKey 精确选择
	Key string `json:"key" yaml:"key"`
	// Provider 模型提供商
	Provider string `json:"provider" yaml:"provider"`
	// Name 提供商侧的模型名
	Name string `json:"name" yaml:"name"`
	Type Type   `json:"type" yaml:"type"`
	// ContextWindow 上下文窗口的 token 数
	ContextWindow int `json:"context_window" yaml:"context_window"`
	// MaxOutputTokens 模型允许的最大输出 token 数，0 表示未声明
	MaxOutputTokens int `json:"max_output_tokens" yaml:"max_output_tokens"`
}

// Prompt 请求中的提示词部分。
type Prompt struct {
	// Context 系统上下文，由全部 system 消息拼接而成
	Context string `json:"context,omitempty"`
	// History 对话历史，不含 system 消息
	History []*schema.Message `json:"history,omitempty"`
	// Messages 本轮消息，不含 system 消息
	Messages []*schema.Message `json:"messages"`
}

// ChatRequest 提供商无关的对话请求。
type ChatRequest struct {
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	ModelParams Params `json:"model_params,omitempty"`
	Prompt      Prompt `json:"prompt"`
	// Functions 可供模型调用的函数
	Functions []*schema.ToolInfo `json:"functions,omitempty"`
	// ToolChoice 为 nil 时由模型自行决定
	ToolChoice *schema.ToolChoice `json:"tool_choice,omitempty"`
}

// Choice 一个候选回复。
type Choice struct {
	Message      *schema.Message `json:"message"`
	FinishReason string          `json:"finish_reason,omitempty"`
}

// ChatResponse 对话响应。
type ChatResponse struct {
	Choices []Choice           `json:"choices"`
	Model   string             `json:"model,omitempty"`
	Usage   *schema.TokenUsage `json:"usage,omitempty"`

	// Structured 输出处理中解析器产出的结构化值，仅在进程内传递
	Structured any `json:"-"`
}

// Message 返回第一个候选消息，没有候选时返回 nil。
func (r *ChatResponse) Message() *schema.Message {
	if r == nil || len(r.Choices) == 0 {
		return nil
	}
	return r.Choices[0].Message
}

// Content 返回第一个候选消息的文本。
func (r *ChatResponse) Content() string {
	if m := r.Message(); m != nil {
		return m.Content
	}
	return ""
}

// SetContent 改写第一个候选消息的文本，没有候选时创建一个助手消息。
func (r *ChatResponse) SetContent(content string) {
	if m := r.Message(); m != nil {
		m.Content = content
		return
	}
	r.Choices = append(r.Choices, Choice{Message: schema.AssistantMessage(content, nil)})
}
