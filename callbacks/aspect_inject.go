package callbacks

import (
	"context"

	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/internal/callbacks"
)

// OnStart 触发当前阶段的 OnStart 回调。
//
// 返回的上下文必须继续用于该阶段后续的 OnEnd/OnError/OnEvent 以及所有子调用。
func OnStart[T any](ctx context.Context, input T) context.Context {
	ctx, _ = callbacks.On(ctx, input, callbacks.OnStartHandle[T], TimingOnStart, true)
	return ctx
}

// OnEnd 触发当前阶段的 OnEnd 回调。
func OnEnd[T any](ctx context.Context, output T) context.Context {
	ctx, _ = callbacks.On(ctx, output, callbacks.OnEndHandle[T], TimingOnEnd, false)
	return ctx
}

// OnError 触发当前阶段的 OnError 回调。
func OnError(ctx context.Context, err error) context.Context {
	ctx, _ = callbacks.On(ctx, err, callbacks.OnErrorHandle, TimingOnError, false)
	return ctx
}

// OnEvent 触发当前阶段的离散事件回调。
func OnEvent[T any](ctx context.Context, event T) context.Context {
	ctx, _ = callbacks.On(ctx, event, callbacks.OnEventHandle[T], TimingOnEvent, false)
	return ctx
}

// InitCallbacks 用给定处理器初始化回调，覆盖上下文中已有的调用级处理器。
func InitCallbacks(ctx context.Context, info *RunInfo, handlers ...Handler) context.Context {
	return callbacks.InitCallbacks(ctx, info, handlers...)
}

// AppendHandlers 在上下文已有的调用级处理器之后追加处理器。
func AppendHandlers(ctx context.Context, handlers ...Handler) context.Context {
	if len(handlers) == 0 {
		return ctx
	}
	return callbacks.AppendHandlers(ctx, nil, handlers...)
}

// ReuseHandlers 复用上下文中的处理器，为下一个阶段设置运行信息。
func ReuseHandlers(ctx context.Context, info *RunInfo) context.Context {
	return callbacks.ReuseHandlers(ctx, info)
}

// EnsureRunInfo 上下文中没有待用的运行信息时，按类型和组件补充一个。
func EnsureRunInfo(ctx context.Context, typ string, comp components.Component) context.Context {
	return callbacks.EnsureRunInfo(ctx, typ, comp)
}

// StartStage 是各组件进入一个阶段时的常用写法：设置运行信息并触发 OnStart。
func StartStage[T any](ctx context.Context, info *RunInfo, input T) context.Context {
	ctx = callbacks.ReuseHandlers(ctx, info)
	return OnStart(ctx, input)
}
