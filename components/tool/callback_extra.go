package tool

import "github.com/favbox/promptflow/callbacks"

// CallbackInput 工具调用的回调输入。
type CallbackInput struct {
	// Name 被调用的工具
	Name string
	// Arguments 调用参数
	Arguments map[string]any
	Extra     map[string]any
}

// CallbackOutput 工具调用的回调输出。
type CallbackOutput struct {
	// Result 工具返回的原始结果
	Result any
	Extra  map[string]any
}

// ConvCallbackInput 转换为工具回调输入，类型不符时返回 nil。
func ConvCallbackInput(src callbacks.CallbackInput) *CallbackInput {
	switch t := src.(type) {
	case *CallbackInput:
		return t
	default:
		return nil
	}
}

// ConvCallbackOutput 转换为工具回调输出。任何非 *CallbackOutput 的值都视为工具结果本身。
func ConvCallbackOutput(src callbacks.CallbackOutput) *CallbackOutput {
	switch t := src.(type) {
	case *CallbackOutput:
		return t
	default:
		return &CallbackOutput{Result: t}
	}
}
