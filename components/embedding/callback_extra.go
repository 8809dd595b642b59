package embedding

import "github.com/favbox/promptflow/callbacks"

// CallbackInput 向量化的回调输入。
type CallbackInput struct {
	// Texts 待向量化的文本
	Texts []string
	// Model 使用的向量模型
	Model string
	Extra map[string]any
}

// CallbackOutput 向量化的回调输出。
type CallbackOutput struct {
	// Embeddings 与输入一一对应的向量
	Embeddings [][]float64
	Model      string
	Extra      map[string]any
}

// ConvCallbackInput 转换为向量化回调输入，类型不符时返回 nil。
func ConvCallbackInput(src callbacks.CallbackInput) *CallbackInput {
	switch t := src.(type) {
	case *CallbackInput:
		return t
	case []string:
		return &CallbackInput{
			Texts: t,
		}
	default:
		return nil
	}
}

// ConvCallbackOutput 转换为向量化回调输出，类型不符时返回 nil。
func ConvCallbackOutput(src callbacks.CallbackOutput) *CallbackOutput {
	switch t := src.(type) {
	case *CallbackOutput:
		return t
	case [][]float64:
		return &CallbackOutput{
			Embeddings: t,
		}
	default:
		return nil
	}
}
