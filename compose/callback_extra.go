package compose

import "github.com/favbox/promptflow/callbacks"

// NodeCallbackInput 节点的回调输入。
type NodeCallbackInput struct {
	NodeID string
	Type   NodeType
	// Args 合并后的上游结果
	Args any
}

// NodeCallbackOutput 节点的回调输出。
type NodeCallbackOutput struct {
	NodeID string
	Result any
}

// ConvNodeCallbackInput 转换为节点回调输入，类型不符时返回 nil。
func ConvNodeCallbackInput(src callbacks.CallbackInput) *NodeCallbackInput {
	t, _ := src.(*NodeCallbackInput)
	return t
}

// ConvNodeCallbackOutput 转换为节点回调输出，类型不符时返回 nil。
func ConvNodeCallbackOutput(src callbacks.CallbackOutput) *NodeCallbackOutput {
	t, _ := src.(*NodeCallbackOutput)
	return t
}
