package agent

import "github.com/favbox/promptflow/callbacks"

// CallbackInput 智能体的回调输入。
type CallbackInput struct {
	Input *Input
	Extra map[string]any
}

// CallbackOutput 智能体的回调输出。
type CallbackOutput struct {
	Output *Output
	Extra  map[string]any
}

// ActionEvent 智能体决定调用工具。
type ActionEvent struct {
	Action *Action
}

// FinishEvent 智能体结束。
type FinishEvent struct {
	Answer   string
	Finished bool
}

// PlanEvent 计划已生成。
type PlanEvent struct {
	Steps []string
}

// StepEvent 计划中的一步执行完毕。
type StepEvent struct {
	Index int
	Step  *Step
	// Retried 自评估判定不满意后重新执行过
	Retried bool
}

// ConvCallbackInput 转换为智能体回调输入。
func ConvCallbackInput(src callbacks.CallbackInput) *CallbackInput {
	switch t := src.(type) {
	case *CallbackInput:
		return t
	case *Input:
		return &CallbackInput{Input: t}
	default:
		return nil
	}
}

// ConvCallbackOutput 转换为智能体回调输出。
func ConvCallbackOutput(src callbacks.CallbackOutput) *CallbackOutput {
	switch t := src.(type) {
	case *CallbackOutput:
		return t
	case *Output:
		return &CallbackOutput{Output: t}
	default:
		return nil
	}
}
