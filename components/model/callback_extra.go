package model

import (
	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/schema"
)

// CallbackInput 模型调用的回调输入。
type CallbackInput struct {
	// Request 发给模型服务的完整请求
	Request *ChatRequest
	// Info 被调用模型的描述
	Info  *Info
	Extra map[string]any
}

// CallbackOutput 模型调用的回调输出。
type CallbackOutput struct {
	Response *ChatResponse
	// TokenUsage 便于成本统计，等同于 Response.Usage
	TokenUsage *schema.TokenUsage
	Extra      map[string]any
}

// ConvCallbackInput 把通用回调输入转换为模型回调输入，类型不符时返回 nil。
func ConvCallbackInput(src callbacks.CallbackInput) *CallbackInput {
	switch t := src.(type) {
	case *CallbackInput:
		return t
	case *ChatRequest:
		return &CallbackInput{Request: t}
	default:
		return nil
	}
}

// ConvCallbackOutput 把通用回调输出转换为模型回调输出，类型不符时返回 nil。
func ConvCallbackOutput(src callbacks.CallbackOutput) *CallbackOutput {
	switch t := src.(type) {
	case *CallbackOutput:
		return t
	case *ChatResponse:
		return &CallbackOutput{Response: t, TokenUsage: t.Usage}
	default:
		return nil
	}
}
