package function

import "github.com/favbox/promptflow/callbacks"

// CallbackInput 语义函数及其实现的回调输入。
type CallbackInput struct {
	Request *Request
	Extra   map[string]any
}

// CallbackOutput 语义函数及其实现的回调输出。
type CallbackOutput struct {
	Response *Response
	Extra    map[string]any
}

// ValidateArgumentsEvent 参数校验完成，无论成功与否都会触发一次。
type ValidateArgumentsEvent struct {
	Valid  bool
	Issues []string
	// Sampled 批量调用时只校验第一个元素
	Sampled bool
}

// ExperimentEvent 通过实验抽样选中了实现。
type ExperimentEvent struct {
	Experiment     string
	Implementation string
	// Sample 抽样值，范围 [0, Σweights)
	Sample float64
}

// ConvCallbackInput 转换为语义函数回调输入，类型不符时返回 nil。
func ConvCallbackInput(src callbacks.CallbackInput) *CallbackInput {
	switch t := src.(type) {
	case *CallbackInput:
		return t
	case *Request:
		return &CallbackInput{Request: t}
	default:
		return nil
	}
}

// ConvCallbackOutput 转换为语义函数回调输出，类型不符时返回 nil。
func ConvCallbackOutput(src callbacks.CallbackOutput) *CallbackOutput {
	switch t := src.(type) {
	case *CallbackOutput:
		return t
	case *Response:
		return &CallbackOutput{Response: t}
	default:
		return nil
	}
}
