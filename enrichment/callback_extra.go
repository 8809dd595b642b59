package enrichment

import (
	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/schema"
)

// CallbackInput 提示词增强流程的回调输入。
type CallbackInput struct {
	Args  map[string]any
	Info  *model.Info
	Extra map[string]any
}

// CallbackOutput 提示词增强流程的回调输出。
type CallbackOutput struct {
	Messages []*schema.Message
	Metadata map[string]any
	Extra    map[string]any
}

// StepCallbackInput 单个增强步骤的回调输入。
type StepCallbackInput struct {
	Step string
	Args map[string]any
}

// StepCallbackOutput 单个增强步骤的回调输出。
type StepCallbackOutput struct {
	Step   string
	Output *StepOutput
}

// ConvCallbackInput 转换为增强流程回调输入，类型不符时返回 nil。
func ConvCallbackInput(src callbacks.CallbackInput) *CallbackInput {
	t, _ := src.(*CallbackInput)
	return t
}

// ConvCallbackOutput 转换为增强流程回调输出，类型不符时返回 nil。
func ConvCallbackOutput(src callbacks.CallbackOutput) *CallbackOutput {
	t, _ := src.(*CallbackOutput)
	return t
}

// ConvStepCallbackInput 转换为增强步骤回调输入，类型不符时返回 nil。
func ConvStepCallbackInput(src callbacks.CallbackInput) *StepCallbackInput {
	t, _ := src.(*StepCallbackInput)
	return t
}

// ConvStepCallbackOutput 转换为增强步骤回调输出，类型不符时返回 nil。
func ConvStepCallbackOutput(src callbacks.CallbackOutput) *StepCallbackOutput {
	t, _ := src.(*StepCallbackOutput)
	return t
}
