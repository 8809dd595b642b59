package prompt

import (
	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/schema"
)

// CallbackInput 提示词模板的回调输入。
type CallbackInput struct {
	// Args 渲染参数
	Args map[string]any
	// Templates 待渲染的消息模板
	Templates []schema.MessagesTemplate
	Extra     map[string]any
}

// CallbackOutput 提示词模板的回调输出。
type CallbackOutput struct {
	// Result 渲染后的消息
	Result []*schema.Message
	// Truncated 上下文是否被截断
	Truncated bool
	// ContextTokens 最终上下文的 token 数
	ContextTokens int
	// Available 上下文可用的 token 预算，未做检查时为 0
	Available int
	Extra     map[string]any
}

// ConvCallbackInput 转换为提示词模板回调输入，类型不符时返回 nil。
func ConvCallbackInput(src callbacks.CallbackInput) *CallbackInput {
	switch t := src.(type) {
	case *CallbackInput:
		return t
	case map[string]any:
		return &CallbackInput{Args: t}
	default:
		return nil
	}
}

// ConvCallbackOutput 转换为提示词模板回调输出，类型不符时返回 nil。
func ConvCallbackOutput(src callbacks.CallbackOutput) *CallbackOutput {
	switch t := src.(type) {
	case *CallbackOutput:
		return t
	case []*schema.Message:
		return &CallbackOutput{Result: t}
	default:
		return nil
	}
}
