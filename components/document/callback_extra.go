package document

import (
	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/schema"
)

// LoaderCallbackInput 加载器的回调输入。
type LoaderCallbackInput struct {
	Source Source
	Extra  map[string]any
}

// LoaderCallbackOutput 加载器的回调输出。
type LoaderCallbackOutput struct {
	Source Source
	Docs   []*schema.Document
	Extra  map[string]any
}

// TransformerCallbackInput 转换器的回调输入。
type TransformerCallbackInput struct {
	Input []*schema.Document
	Extra map[string]any
}

// TransformerCallbackOutput 转换器的回调输出。
type TransformerCallbackOutput struct {
	Output []*schema.Document
	Extra  map[string]any
}

// ConvLoaderCallbackInput 转换为加载器回调输入，Source 视为只有来源的输入。
func ConvLoaderCallbackInput(src callbacks.CallbackInput) *LoaderCallbackInput {
	switch t := src.(type) {
	case *LoaderCallbackInput:
		return t
	case Source:
		return &LoaderCallbackInput{Source: t}
	default:
		return nil
	}
}

// ConvLoaderCallbackOutput 转换为加载器回调输出，文档列表视为只有文档的输出。
func ConvLoaderCallbackOutput(src callbacks.CallbackOutput) *LoaderCallbackOutput {
	switch t := src.(type) {
	case *LoaderCallbackOutput:
		return t
	case []*schema.Document:
		return &LoaderCallbackOutput{Docs: t}
	default:
		return nil
	}
}

// ConvTransformerCallbackInput 转换为转换器回调输入。
func ConvTransformerCallbackInput(src callbacks.CallbackInput) *TransformerCallbackInput {
	switch t := src.(type) {
	case *TransformerCallbackInput:
		return t
	case []*schema.Document:
		return &TransformerCallbackInput{Input: t}
	default:
		return nil
	}
}

// ConvTransformerCallbackOutput 转换为转换器回调输出。
func ConvTransformerCallbackOutput(src callbacks.CallbackOutput) *TransformerCallbackOutput {
	switch t := src.(type) {
	case *TransformerCallbackOutput:
		return t
	case []*schema.Document:
		return &TransformerCallbackOutput{Output: t}
	default:
		return nil
	}
}
