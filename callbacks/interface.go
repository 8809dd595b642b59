package callbacks

import "github.com/favbox/promptflow/internal/callbacks"

// RunInfo 回调运行时信息，标识触发回调的阶段。
type RunInfo = callbacks.RunInfo

// CallbackInput 阶段传递给处理器的输入，具体类型由组件定义。
//
// 例如 components/function 中定义了 *function.CallbackInput，
// 并提供 function.ConvCallbackInput 完成转换：
//
//	in := function.ConvCallbackInput(input)
//	if in == nil {
//		// 不是语义函数的回调输入，忽略
//		return ctx
//	}
type CallbackInput = callbacks.CallbackInput

// CallbackOutput 阶段结束时传递给处理器的输出。
type CallbackOutput = callbacks.CallbackOutput

// CallbackEvent 阶段内部的离散事件。
type CallbackEvent = callbacks.CallbackEvent

// Handler 回调处理器接口。
type Handler = callbacks.Handler

// AppendGlobalHandlers 追加全局回调处理器。
//
// 全局处理器在所有阶段执行，位于调用级处理器之后。
// 此函数不是线程安全的，只能在进程初始化期间调用。
func AppendGlobalHandlers(handlers ...Handler) {
	callbacks.GlobalHandlers = append(callbacks.GlobalHandlers, handlers...)
}

// CallbackTiming 回调时机。
type CallbackTiming = callbacks.CallbackTiming

const (
	// TimingOnStart 阶段开始
	TimingOnStart CallbackTiming = iota
	// TimingOnEnd 阶段正常结束
	TimingOnEnd
	// TimingOnError 阶段出错
	TimingOnError
	// TimingOnEvent 阶段内部事件
	TimingOnEvent
)

// TimingChecker 回调时机检查器。
//
// 通过 HandlerBuilder 构建的处理器会自动实现此接口，未设置的回调函数对应的时机会被跳过。
type TimingChecker = callbacks.TimingChecker
