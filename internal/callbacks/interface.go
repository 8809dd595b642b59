package callbacks

import (
	"context"

	"github.com/favbox/promptflow/components"
)

// RunInfo 回调运行信息，描述当前触发回调的阶段。
type RunInfo struct {
	// Name 阶段的展示名称，例如语义函数名、节点 ID、工具名，并非唯一标识
	Name string
	// Type 组件的实现类型，例如 "ReAct"、"SemanticSearch"
	Type string
	// Component 组件的分类
	Component components.Component
}

// CallbackInput 回调输入类型，具体类型由组件定义。
type CallbackInput any

// CallbackOutput 回调输出类型，具体类型由组件定义。
type CallbackOutput any

// CallbackEvent 阶段内部的离散事件，例如参数校验结果、实验抽样结果。
type CallbackEvent any

// Handler 回调处理器接口。
//
// 每个阶段先触发一次 OnStart，再触发且仅触发一次 OnEnd 或 OnError；
// OnEvent 可以在两者之间触发任意次。
type Handler interface {
	// OnStart 阶段开始执行时触发
	OnStart(ctx context.Context, info *RunInfo, input CallbackInput) context.Context
	// OnEnd 阶段正常结束时触发
	OnEnd(ctx context.Context, info *RunInfo, output CallbackOutput) context.Context
	// OnError 阶段出错时触发
	OnError(ctx context.Context, info *RunInfo, err error) context.Context
	// OnEvent 阶段内部事件触发
	OnEvent(ctx context.Context, info *RunInfo, event CallbackEvent) context.Context
}

// CallbackTiming 回调时机类型。
type CallbackTiming uint8

// TimingChecker 回调时机检查器接口。
//
// 返回 false 的处理器在该时机会被跳过。
type TimingChecker interface {
	Needed(ctx context.Context, info *RunInfo, timing CallbackTiming) bool
}
