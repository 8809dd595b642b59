package output

import (
	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components/model"
)

// CallbackInput 输出处理流程及各步骤的回调输入。
type CallbackInput struct {
	// Step 步骤名称，流程本身为空
	Step     string
	Response *model.ChatResponse
	Extra    map[string]any
}

// CallbackOutput 输出处理流程及各步骤的回调输出。
type CallbackOutput struct {
	Step     string
	Response *model.ChatResponse
	Extra    map[string]any
}

// ConvCallbackInput 转换为输出处理回调输入，类型不符时返回 nil。
func ConvCallbackInput(src callbacks.CallbackInput) *CallbackInput {
	t, _ := src.(*CallbackInput)
	return t
}

// ConvCallbackOutput 转换为输出处理回调输出，类型不符时返回 nil。
func ConvCallbackOutput(src callbacks.CallbackOutput) *CallbackOutput {
	t, _ := src.(*CallbackOutput)
	return t
}
